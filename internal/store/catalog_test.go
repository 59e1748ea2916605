package store_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joestump/joe-events/internal/store"
)

func TestCatalog_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "alice")
	jazz := env.event(t, org.ID, "Jazz Night", 1, store.StatusPublished, "Music")
	env.event(t, org.ID, "Go Meetup", 2, store.StatusPublished, "Tech", "Music")
	env.event(t, org.ID, "Quiet Walk", 3, store.StatusPublished)
	if _, err := env.orders.Create(ctx, jazz.ID, "Ada", "ada@example.com", 4); err != nil {
		t.Fatalf("order: %v", err)
	}

	catalog := store.NewCatalog(env.events, env.cats, env.orders)
	got, total, err := catalog.List(ctx, store.EventQuery{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	type row struct {
		Title      string
		Categories []string
		Sold       int
		Remaining  int
	}
	rows := make([]row, len(got))
	for i, s := range got {
		names := make([]string, len(s.Categories))
		for j, c := range s.Categories {
			names[j] = c.Name
		}
		rows[i] = row{s.Title, names, s.Sold, s.Remaining()}
	}
	want := []row{
		{"Jazz Night", []string{"Music"}, 4, 6},
		{"Go Meetup", []string{"Music", "Tech"}, 0, 10},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_Get_SoldOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.organizer(t, "alice")
	ev := env.event(t, org.ID, "Jazz Night", 1, store.StatusPublished) // capacity 10
	if _, err := env.orders.Create(ctx, ev.ID, "Ada", "ada@example.com", 10); err != nil {
		t.Fatalf("order: %v", err)
	}

	s, err := store.NewCatalog(env.events, env.cats, env.orders).Get(ctx, ev)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !s.SoldOut() || s.Remaining() != 0 || len(s.Categories) != 0 {
		t.Errorf("summary = sold %d remaining %d categories %v, want sold out", s.Sold, s.Remaining(), s.Categories)
	}
}
