package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joestump/joe-events/internal/store"
)

func TestOrderStore_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "alice")
	ev := env.event(t, org.ID, "Jazz Night", 0, store.StatusPublished)

	o, err := env.orders.Create(ctx, ev.ID, " Ada ", "ada@example.com", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.TotalCents != 3*ev.PriceCents {
		t.Errorf("total = %d, want %d", o.TotalCents, 3*ev.PriceCents)
	}
	if o.BuyerName != "Ada" {
		t.Errorf("buyer = %q, want trimmed", o.BuyerName)
	}

	line, err := env.orders.GetLine(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetLine: %v", err)
	}
	if line.EventSlug != ev.Slug || line.EventTitle != ev.Title || line.Quantity != 3 {
		t.Errorf("unexpected line: %+v", line)
	}
}

func TestOrderStore_Create_Capacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "alice")
	ev := env.event(t, org.ID, "Jazz Night", 0, store.StatusPublished) // capacity 10

	if _, err := env.orders.Create(ctx, ev.ID, "Ada", "ada@example.com", 8); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if _, err := env.orders.Create(ctx, ev.ID, "Bob", "bob@example.com", 3); !errors.Is(err, store.ErrSoldOut) {
		t.Fatalf("over capacity error = %v, want ErrSoldOut", err)
	}
	if _, err := env.orders.Create(ctx, ev.ID, "Bob", "bob@example.com", 2); err != nil {
		t.Fatalf("exactly filling capacity: %v", err)
	}

	sold, err := env.orders.Sold(ctx, []string{ev.ID})
	if err != nil {
		t.Fatalf("Sold: %v", err)
	}
	if sold[ev.ID] != 10 {
		t.Errorf("sold = %d, want 10", sold[ev.ID])
	}
}

func TestOrderStore_Create_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "alice")
	draft := env.event(t, org.ID, "Secret Gig", 0, store.StatusDraft)

	if _, err := env.orders.Create(ctx, draft.ID, "Ada", "ada@example.com", 1); !errors.Is(err, store.ErrNotPublished) {
		t.Errorf("draft error = %v, want ErrNotPublished", err)
	}
	if _, err := env.orders.Create(ctx, "missing", "Ada", "ada@example.com", 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing event error = %v, want ErrNotFound", err)
	}
	if _, err := env.orders.GetLine(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetLine(missing) error = %v, want ErrNotFound", err)
	}
}

func TestOrderStore_ListLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.organizer(t, "alice")
	bob := env.organizer(t, "bob")
	a := env.event(t, alice.ID, "Jazz Night", 0, store.StatusPublished)
	b := env.event(t, bob.ID, "Go Meetup", 1, store.StatusPublished)

	for _, buyer := range []string{"one", "two", "three"} {
		if _, err := env.orders.Create(ctx, a.ID, buyer, buyer+"@example.com", 1); err != nil {
			t.Fatalf("order %s: %v", buyer, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	if _, err := env.orders.Create(ctx, b.ID, "four", "four@example.com", 1); err != nil {
		t.Fatalf("order four: %v", err)
	}

	lines, total, err := env.orders.ListLines(ctx, alice.ID, 0, 2)
	if err != nil {
		t.Fatalf("ListLines: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	var buyers []string
	for _, l := range lines {
		buyers = append(buyers, l.BuyerName)
	}
	if diff := cmp.Diff([]string{"three", "two"}, buyers); diff != "" {
		t.Errorf("buyers mismatch (-want +got):\n%s", diff)
	}

	_, total, err = env.orders.ListLines(ctx, "", 0, 10)
	if err != nil {
		t.Fatalf("ListLines(all): %v", err)
	}
	if total != 4 {
		t.Errorf("total for all organizers = %d, want 4", total)
	}
}

func TestViewStore_CountsFor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "alice")
	a := env.event(t, org.ID, "Jazz Night", 0, store.StatusPublished)
	b := env.event(t, org.ID, "Go Meetup", 1, store.StatusPublished)

	for i := 0; i < 3; i++ {
		if err := env.views.Record(ctx, store.ViewEvent{EventID: a.ID}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	counts, err := env.views.CountsFor(ctx, []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("CountsFor: %v", err)
	}
	if diff := cmp.Diff(map[string]int{a.ID: 3}, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}
