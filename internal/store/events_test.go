package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/joe-events/internal/store"
	"github.com/joestump/joe-events/internal/testutil"
)

type testEnv struct {
	db     *sqlx.DB
	users  *store.UserStore
	cats   *store.CategoryStore
	events *store.EventStore
	orders *store.OrderStore
	views  *store.ViewStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	cats := store.NewCategoryStore(db, nil, 0)
	return &testEnv{
		db:     db,
		users:  store.NewUserStore(db),
		cats:   cats,
		events: store.NewEventStore(db, cats),
		orders: store.NewOrderStore(db),
		views:  store.NewViewStore(db),
	}
}

func (e *testEnv) organizer(t *testing.T, subject string) *store.User {
	t.Helper()
	u, err := e.users.Upsert(context.Background(), "test", subject, subject+"@example.com", subject, "")
	if err != nil {
		t.Fatalf("upsert organizer: %v", err)
	}
	return u
}

var baseTime = time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC)

func (e *testEnv) event(t *testing.T, organizerID, title string, day int, status string, categories ...string) *store.Event {
	t.Helper()
	ev, err := e.events.Create(context.Background(), organizerID, store.EventInput{
		Title:       title,
		Description: "About " + title,
		Venue:       "Town Hall",
		StartsAt:    baseTime.AddDate(0, 0, day),
		PriceCents:  1500,
		Capacity:    10,
		Status:      status,
		Categories:  categories,
	})
	if err != nil {
		t.Fatalf("create event %q: %v", title, err)
	}
	return ev
}

func titles(events []*store.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestEventStore_Create(t *testing.T) {
	env := newTestEnv(t)
	org := env.organizer(t, "alice")

	ev := env.event(t, org.ID, "Jazz Night", 0, store.StatusPublished, "Music", "Nightlife")
	if ev.Slug != "jazz-night" {
		t.Errorf("slug = %q, want %q", ev.Slug, "jazz-night")
	}
	if !ev.StartsAt.Equal(baseTime) {
		t.Errorf("starts_at = %v, want %v", ev.StartsAt, baseTime)
	}

	cats, err := env.cats.ListForEvent(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("ListForEvent: %v", err)
	}
	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Music", "Nightlife"}, names); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestEventStore_Create_DuplicateTitleGetsSuffix(t *testing.T) {
	env := newTestEnv(t)
	org := env.organizer(t, "alice")

	a := env.event(t, org.ID, "Jazz Night", 0, store.StatusPublished)
	b := env.event(t, org.ID, "Jazz Night", 7, store.StatusPublished)
	if a.Slug == b.Slug {
		t.Fatalf("expected distinct slugs, both %q", a.Slug)
	}
	if want := "jazz-night-" + b.ID[:8]; b.Slug != want {
		t.Errorf("second slug = %q, want %q", b.Slug, want)
	}
}

func TestEventStore_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "alice")
	ev := env.event(t, org.ID, "Jazz Night", 0, store.StatusDraft, "Music")

	updated, err := env.events.Update(ctx, ev.ID, store.EventInput{
		Title:      "Late Jazz Night",
		StartsAt:   baseTime.Add(2 * time.Hour),
		Capacity:   20,
		Status:     store.StatusPublished,
		Categories: []string{"Nightlife"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != ev.Slug {
		t.Errorf("slug changed from %q to %q", ev.Slug, updated.Slug)
	}
	if updated.Title != "Late Jazz Night" || updated.Capacity != 20 || !updated.IsPublished() {
		t.Errorf("fields not updated: %+v", updated)
	}

	cats, err := env.cats.ListForEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("ListForEvent: %v", err)
	}
	if len(cats) != 1 || cats[0].Slug != "nightlife" {
		t.Errorf("categories = %+v, want only nightlife", cats)
	}

	_, err = env.events.Update(ctx, "missing", store.EventInput{Title: "x", Status: store.StatusDraft})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestEventStore_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "alice")

	empty := env.event(t, org.ID, "Quiet Night", 0, store.StatusPublished, "Music")
	if err := env.views.Record(ctx, store.ViewEvent{EventID: empty.ID}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := env.events.Delete(ctx, empty.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := env.events.GetByID(ctx, empty.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrNotFound", err)
	}

	sold := env.event(t, org.ID, "Busy Night", 1, store.StatusPublished)
	if _, err := env.orders.Create(ctx, sold.ID, "Ada", "ada@example.com", 1); err != nil {
		t.Fatalf("order: %v", err)
	}
	if err := env.events.Delete(ctx, sold.ID); !errors.Is(err, store.ErrHasOrders) {
		t.Errorf("Delete(with orders) error = %v, want ErrHasOrders", err)
	}
}

func TestEventStore_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.organizer(t, "alice")
	bob := env.organizer(t, "bob")

	env.event(t, alice.ID, "Jazz Night", 0, store.StatusPublished, "Music")
	env.event(t, alice.ID, "Go Meetup", 1, store.StatusPublished, "Tech")
	env.event(t, bob.ID, "Synth Workshop", 2, store.StatusPublished, "Music", "Tech")
	env.event(t, bob.ID, "Secret Gig", 3, store.StatusDraft, "Music")
	env.event(t, bob.ID, "Food Fair", 4, store.StatusPublished, "Food and Drink")

	published := []string{store.StatusPublished}

	tests := []struct {
		name      string
		query     store.EventQuery
		want      []string
		wantTotal int
	}{
		{
			name:      "all published in start order",
			query:     store.EventQuery{Statuses: published},
			want:      []string{"Jazz Night", "Go Meetup", "Synth Workshop", "Food Fair"},
			wantTotal: 4,
		},
		{
			name:      "no filters includes drafts",
			query:     store.EventQuery{},
			want:      []string{"Jazz Night", "Go Meetup", "Synth Workshop", "Secret Gig", "Food Fair"},
			wantTotal: 5,
		},
		{
			name:      "one category",
			query:     store.EventQuery{Statuses: published, Categories: []string{"Music"}},
			want:      []string{"Jazz Night", "Synth Workshop"},
			wantTotal: 2,
		},
		{
			name:      "categories are ORed",
			query:     store.EventQuery{Statuses: published, Categories: []string{"Music", "Tech"}},
			want:      []string{"Jazz Night", "Go Meetup", "Synth Workshop"},
			wantTotal: 3,
		},
		{
			name:      "category by label matches slug",
			query:     store.EventQuery{Statuses: published, Categories: []string{"food-and-drink"}},
			want:      []string{"Food Fair"},
			wantTotal: 1,
		},
		{
			name:      "unknown category",
			query:     store.EventQuery{Statuses: published, Categories: []string{"Sports"}},
			want:      []string{},
			wantTotal: 0,
		},
		{
			name:      "search is case insensitive",
			query:     store.EventQuery{Statuses: published, Search: "  JAZZ "},
			want:      []string{"Jazz Night"},
			wantTotal: 1,
		},
		{
			name:      "search matches description",
			query:     store.EventQuery{Search: "about synth"},
			want:      []string{"Synth Workshop"},
			wantTotal: 1,
		},
		{
			name:      "search and category",
			query:     store.EventQuery{Statuses: published, Search: "night", Categories: []string{"Tech"}},
			want:      []string{},
			wantTotal: 0,
		},
		{
			name:      "organizer",
			query:     store.EventQuery{OrganizerID: bob.ID},
			want:      []string{"Synth Workshop", "Secret Gig", "Food Fair"},
			wantTotal: 3,
		},
		{
			name:      "drafts only",
			query:     store.EventQuery{Statuses: []string{store.StatusDraft}},
			want:      []string{"Secret Gig"},
			wantTotal: 1,
		},
		{
			name:      "from excludes past",
			query:     store.EventQuery{Statuses: published, From: baseTime.AddDate(0, 0, 2)},
			want:      []string{"Synth Workshop", "Food Fair"},
			wantTotal: 2,
		},
		{
			name:      "page window keeps full total",
			query:     store.EventQuery{Statuses: published, Offset: 1, Limit: 2},
			want:      []string{"Go Meetup", "Synth Workshop"},
			wantTotal: 4,
		},
		{
			name:      "offset past end",
			query:     store.EventQuery{Statuses: published, Offset: 10, Limit: 2},
			want:      []string{},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := env.events.List(ctx, tt.query)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if diff := cmp.Diff(tt.want, titles(got)); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}
