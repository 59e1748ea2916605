package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/joe-events/internal/metrics"
	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/slug"
	"github.com/joestump/joe-events/internal/store"
)

// siteSchema lists the filter keys visitors can set on /events.
var siteSchema = query.Schema{query.KeyCategories}

// EventsPage is the template data for the public event listing.
type EventsPage struct {
	BasePage
	Events     []EventCard
	Search     string
	Categories FacetGroup
	Pager      query.Pager
	Filters    string // encoded filters, kept by the search form
}

// EventPage is the template data for an event detail page.
type EventPage struct {
	BasePage
	Event EventCard
	Form  CheckoutForm
	Error string
}

// CheckoutForm holds the checkout form inputs.
type CheckoutForm struct {
	Name     string
	Email    string
	Quantity int
}

// OrderPage is the template data for an order confirmation.
type OrderPage struct {
	BasePage
	Order *store.OrderLine
}

// EventsHandler serves the public event pages and checkout.
type EventsHandler struct {
	events     *store.EventStore
	cats       *store.CategoryStore
	orders     *store.OrderStore
	catalog    *store.Catalog
	viewCh     chan<- store.ViewEvent
	pagination query.Pagination
	log        *zap.Logger
	now        func() time.Time
}

func NewEventsHandler(es *store.EventStore, cs *store.CategoryStore, os *store.OrderStore, viewCh chan<- store.ViewEvent, p query.Pagination, log *zap.Logger) *EventsHandler {
	return &EventsHandler{events: es, cats: cs, orders: os, catalog: store.NewCatalog(es, cs, os), viewCh: viewCh, pagination: p, log: log, now: time.Now}
}

// Index serves GET /events: upcoming published events narrowed by q and the
// categories filter, one page at a time. HTMX requests get only the
// event_list fragment.
func (h *EventsHandler) Index(w http.ResponseWriter, r *http.Request) {
	l := parseListing(r, siteSchema, h.pagination, "site", h.log)
	q := l.eventQuery()
	q.Statuses = []string{store.StatusPublished}
	q.From = startOfDay(h.now())

	cards, total, err := loadCards(r.Context(), h.catalog, q)
	if err != nil {
		h.log.Error("list events", zap.Error(err))
		http.Error(w, "could not load events", http.StatusInternalServerError)
		return
	}
	counts, err := h.cats.PublishedCounts(r.Context())
	if err != nil {
		h.log.Warn("load category counts", zap.Error(err))
	}

	data := EventsPage{
		BasePage:   newBasePage(r, "Events"),
		Events:     cards,
		Search:     l.Search,
		Categories: l.facet(r.URL.Path, query.KeyCategories, categoryChips(counts)),
		Pager:      query.NewPager(r.URL.Path, l.Params, l.Window, total),
	}
	if len(l.Filters) > 0 {
		data.Filters = l.Filters.Encode()
	}

	if isHTMX(r) {
		renderFragment(w, "event_list", data)
		return
	}
	render(w, "events.html", data)
}

// Show serves GET /events/{slug} and queues a view for the event.
func (h *EventsHandler) Show(w http.ResponseWriter, r *http.Request) {
	card, ok := h.publishedCard(w, r)
	if !ok {
		return
	}
	h.recordView(card.ID)
	render(w, "event.html", EventPage{
		BasePage: newBasePage(r, card.Title),
		Event:    card,
		Form:     CheckoutForm{Quantity: 1},
	})
}

// Checkout serves POST /events/{slug}/checkout.
func (h *EventsHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	card, ok := h.publishedCard(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	qty, _ := strconv.Atoi(r.FormValue("quantity"))
	form := CheckoutForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Quantity: qty,
	}

	reject := func(status int, reason, msg string) {
		metrics.CheckoutRejectedTotal.WithLabelValues(reason).Inc()
		renderStatus(w, status, "event.html", EventPage{
			BasePage: newBasePage(r, card.Title),
			Event:    card,
			Form:     form,
			Error:    msg,
		})
	}

	if err := store.ValidateCheckout(form.Name, form.Email, form.Quantity); err != nil {
		reject(http.StatusUnprocessableEntity, "invalid", err.Error())
		return
	}

	order, err := h.orders.Create(r.Context(), card.ID, form.Name, form.Email, form.Quantity)
	switch {
	case errors.Is(err, store.ErrSoldOut):
		reject(http.StatusConflict, "sold_out", "Sorry, there are not enough tickets left.")
		return
	case errors.Is(err, store.ErrNotPublished), errors.Is(err, store.ErrNotFound):
		notFound(w, r)
		return
	case err != nil:
		h.log.Error("create order", zap.String("event_id", card.ID), zap.Error(err))
		http.Error(w, "could not place order", http.StatusInternalServerError)
		return
	}

	metrics.OrdersCreatedTotal.Inc()
	h.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("event_id", card.ID),
		zap.Int("quantity", order.Quantity))
	http.Redirect(w, r, "/orders/"+order.ID, http.StatusSeeOther)
}

// Order serves GET /orders/{id}.
func (h *EventsHandler) Order(w http.ResponseWriter, r *http.Request) {
	line, err := h.orders.GetLine(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("get order", zap.Error(err))
		http.Error(w, "could not load order", http.StatusInternalServerError)
		return
	}
	render(w, "order.html", OrderPage{BasePage: newBasePage(r, "Your tickets"), Order: line})
}

// Ticket serves GET /orders/{id}/ticket.pdf.
func (h *EventsHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	line, err := h.orders.GetLine(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("get order", zap.Error(err))
		http.Error(w, "could not load order", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="ticket-`+line.ID[:8]+`.pdf"`)
	if err := WriteTicket(w, line); err != nil {
		h.log.Error("render ticket", zap.String("order_id", line.ID), zap.Error(err))
	}
}

// publishedCard loads the published event named by the slug URL param, or
// writes a 404.
func (h *EventsHandler) publishedCard(w http.ResponseWriter, r *http.Request) (EventCard, bool) {
	eventSlug := chi.URLParam(r, "slug")
	if slug.Validate(eventSlug) != nil {
		notFound(w, r)
		return EventCard{}, false
	}
	ev, err := h.events.GetBySlug(r.Context(), eventSlug)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !ev.IsPublished()) {
		notFound(w, r)
		return EventCard{}, false
	}
	if err != nil {
		h.log.Error("get event", zap.Error(err))
		http.Error(w, "could not load event", http.StatusInternalServerError)
		return EventCard{}, false
	}
	summary, err := h.catalog.Get(r.Context(), ev)
	if err != nil {
		h.log.Error("summarize event", zap.String("event_id", ev.ID), zap.Error(err))
		http.Error(w, "could not load event", http.StatusInternalServerError)
		return EventCard{}, false
	}
	return EventCard{EventSummary: summary}, true
}

// recordView queues a view without blocking the response. Views are dropped
// when the writer falls behind.
func (h *EventsHandler) recordView(eventID string) {
	if h.viewCh == nil {
		return
	}
	select {
	case h.viewCh <- store.ViewEvent{EventID: eventID, ViewedAt: h.now()}:
	default:
		metrics.ViewsDroppedTotal.Inc()
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
