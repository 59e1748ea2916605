package store

import "context"

// EventSummary is an event with its categories and tickets sold.
type EventSummary struct {
	*Event
	Categories []*Category
	Sold       int
}

// Remaining returns the tickets still available, never negative.
func (s EventSummary) Remaining() int {
	return max(s.Capacity-s.Sold, 0)
}

func (s EventSummary) SoldOut() bool {
	return s.Remaining() == 0
}

// Catalog joins events with their categories and sales. Every listing
// surface reads events through it.
type Catalog struct {
	events *EventStore
	cats   *CategoryStore
	orders *OrderStore
}

func NewCatalog(events *EventStore, cats *CategoryStore, orders *OrderStore) *Catalog {
	return &Catalog{events: events, cats: cats, orders: orders}
}

// List runs q and summarizes the resulting page. The int is the total
// number of matching events across all pages.
func (c *Catalog) List(ctx context.Context, q EventQuery) ([]EventSummary, int, error) {
	list, total, err := c.events.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out, err := c.Summarize(ctx, list)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Summarize loads categories and sales for events, keeping their order.
func (c *Catalog) Summarize(ctx context.Context, events []*Event) ([]EventSummary, error) {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	byEvent, err := c.cats.ListForEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	sold, err := c.orders.Sold(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]EventSummary, len(events))
	for i, e := range events {
		out[i] = EventSummary{Event: e, Categories: byEvent[e.ID], Sold: sold[e.ID]}
	}
	return out, nil
}

// Get summarizes a single event.
func (c *Catalog) Get(ctx context.Context, ev *Event) (EventSummary, error) {
	out, err := c.Summarize(ctx, []*Event{ev})
	if err != nil {
		return EventSummary{}, err
	}
	return out[0], nil
}
