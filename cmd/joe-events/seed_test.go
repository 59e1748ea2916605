package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joestump/joe-events/internal/store"
	"github.com/joestump/joe-events/internal/testutil"
)

const fixture = `
organizer:
  email: org@example.com
  name: Org
events:
  - title: Jazz Night
    venue: Blue Room
    starts_at: 2026-11-06T20:00:00Z
    price_cents: 1500
    capacity: 80
    categories: [Music]
  - title: Winter Market
    venue: Park
    starts_at: 2026-12-05T10:00:00Z
    capacity: 500
    status: draft
`

func TestParseSeed(t *testing.T) {
	f, err := parseSeed(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("parseSeed: %v", err)
	}
	if len(f.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(f.Events))
	}
	got := f.Events[0].input()
	want := store.EventInput{
		Title:      "Jazz Night",
		Venue:      "Blue Room",
		StartsAt:   time.Date(2026, 11, 6, 20, 0, 0, 0, time.UTC),
		PriceCents: 1500,
		Capacity:   80,
		Status:     store.StatusPublished,
		Categories: []string{"Music"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
	if f.Events[1].input().Status != store.StatusDraft {
		t.Error("explicit status not kept")
	}
}

func TestParseSeed_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "organizer: {email: a@example.com}\nevents:\n  - title: X\n    starts_at: 2026-11-06T20:00:00Z\n    colour: red\n",
		"no organizer":  "events: []\n",
		"missing title": "organizer: {email: a@example.com}\nevents:\n  - starts_at: 2026-11-06T20:00:00Z\n",
		"bad status":    "organizer: {email: a@example.com}\nevents:\n  - title: X\n    starts_at: 2026-11-06T20:00:00Z\n    status: live\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseSeed(strings.NewReader(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplySeed_SkipsExisting(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := store.NewUserStore(db)
	events := store.NewEventStore(db, store.NewCategoryStore(db, nil, 0))
	f, err := parseSeed(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("parseSeed: %v", err)
	}

	ctx := context.Background()
	n, err := applySeed(ctx, users, events, f, "")
	if err != nil || n != 2 {
		t.Fatalf("first apply = %d, %v; want 2, nil", n, err)
	}
	n, err = applySeed(ctx, users, events, f, "")
	if err != nil || n != 0 {
		t.Fatalf("second apply = %d, %v; want 0, nil", n, err)
	}

	total, err := events.Count(ctx)
	if err != nil || total != 2 {
		t.Errorf("Count = %d, %v; want 2", total, err)
	}
	ev, err := events.GetBySlug(ctx, "jazz-night")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	org, err := users.GetByEmail(ctx, "org@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if ev.OrganizerID != org.ID {
		t.Errorf("organizer = %s, want %s", ev.OrganizerID, org.ID)
	}
}
