package query_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joestump/joe-events/internal/query"
)

func TestSplitCamel(t *testing.T) {
	tests := map[string]string{
		"ticketTypes": "ticket Types",
		"events":      "events",
		"ID":          "ID",
		"event2Go":    "event2 Go",
		"":            "",
	}
	for in, want := range tests {
		if got := query.SplitCamel(in); got != want {
			t.Errorf("SplitCamel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"ticket types":  "Ticket Types",
		"live music":    "Live Music",
		"already Upper": "Already Upper",
	}
	for in, want := range tests {
		if got := query.Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"ticketTypes":  "Ticket Types",
		"ticket-types": "Ticket Types",
		"ticket_types": "Ticket Types",
		"dashboard":    "Dashboard",
	}
	for in, want := range tests {
		if got := query.Label(in); got != want {
			t.Errorf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBreadcrumbs(t *testing.T) {
	got := query.Breadcrumbs("/dashboard/events/new")
	want := []query.Crumb{
		{Label: "Dashboard", Href: "/dashboard"},
		{Label: "Events", Href: "/dashboard/events"},
		{Label: "New", Href: "/dashboard/events/new"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Breadcrumbs mismatch (-want +got):\n%s", diff)
	}

	if got := query.Breadcrumbs("/"); len(got) != 0 {
		t.Errorf("Breadcrumbs(/) = %v, want empty", got)
	}
}
