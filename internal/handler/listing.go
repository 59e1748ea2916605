package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/joestump/joe-events/internal/metrics"
	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/store"
)

// listing is the decoded query string of a listing request.
type listing struct {
	Params  url.Values
	Search  string
	Filters query.FilterParams
	Window  query.Window
}

// parseListing reads q, filters, page and limit from r. A malformed filters
// value is logged and counted, then treated as no filter.
func parseListing(r *http.Request, schema query.Schema, p query.Pagination, surface string, log *zap.Logger) listing {
	metrics.ListingRequestsTotal.WithLabelValues(surface).Inc()
	params := r.URL.Query()
	filters, err := query.ParseFilters(params, schema)
	if err != nil {
		metrics.FilterDecodeErrorsTotal.WithLabelValues(surface).Inc()
		log.Debug("ignoring malformed filters",
			zap.String("surface", surface),
			zap.String("filters", params.Get(query.ParamFilters)),
			zap.Error(err))
	}
	return listing{
		Params:  params,
		Search:  params.Get(query.ParamSearch),
		Filters: filters,
		Window:  query.Resolve(params, p),
	}
}

// eventQuery maps the listing onto a store query.
func (l listing) eventQuery() store.EventQuery {
	return store.EventQuery{
		Search:     l.Search,
		Categories: l.Filters.Values(query.KeyCategories),
		Statuses:   l.Filters.Values(query.KeyStatus),
		Offset:     l.Window.Offset(),
		Limit:      l.Window.Limit,
	}
}

// Chip is a toggleable facet value. Href applies the opposite of Active.
type Chip struct {
	Label  string
	Value  string
	Count  int
	Active bool
	Href   string
}

// FacetGroup is the chips for one filter key and a link clearing them.
type FacetGroup struct {
	Key      string
	Label    string
	Chips    []Chip
	ClearURL string
	Active   bool
}

// facet builds chip links for key. Every link drops page so a narrowed
// result set starts from the first page. Filter values match a chip when
// their canonical forms are equal, so "music" in a shared URL activates the
// "Music" chip and removing it drops every spelling.
func (l listing) facet(path, key string, options []Chip) FacetGroup {
	base := query.WithoutPage(l.Params)
	canon := canonicalizer(key)
	g := FacetGroup{
		Key:      key,
		Label:    query.Label(key),
		ClearURL: query.Href(path, query.RemoveFilterKey(base, key)),
		Active:   len(l.Filters.Values(key)) > 0,
	}
	for _, c := range options {
		want := canon(c.Value)
		params := base
		for _, v := range l.Filters.Values(key) {
			if canon(v) == want {
				c.Active = true
				params = query.RemoveFilterValue(params, key, v)
			}
		}
		if !c.Active {
			params = query.AddFilterValues(base, key, c.Value)
		}
		c.Href = query.Href(path, params)
		g.Chips = append(g.Chips, c)
	}
	return g
}

// canonicalizer returns how values of key are compared against chips. It
// follows the store's matching: categories by slug, everything else exactly.
func canonicalizer(key string) func(string) string {
	if key == query.KeyCategories {
		return store.DeriveCategorySlug
	}
	return func(s string) string { return s }
}

func categoryChips(counts []store.CategoryCount) []Chip {
	chips := make([]Chip, 0, len(counts))
	for _, c := range counts {
		chips = append(chips, Chip{Label: c.Name, Value: c.Name, Count: c.Count})
	}
	return chips
}

func statusChips() []Chip {
	return []Chip{
		{Label: query.Label(store.StatusDraft), Value: store.StatusDraft},
		{Label: query.Label(store.StatusPublished), Value: store.StatusPublished},
	}
}

// EventCard is an event summary with what listing templates show around it.
type EventCard struct {
	store.EventSummary
	Views int
}

// loadCards lists q through the catalog and wraps each summary for templates.
func loadCards(ctx context.Context, catalog *store.Catalog, q store.EventQuery) ([]EventCard, int, error) {
	start := time.Now()
	list, total, err := catalog.List(ctx, q)
	metrics.ListingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, 0, err
	}
	cards := make([]EventCard, len(list))
	for i, s := range list {
		cards[i] = EventCard{EventSummary: s}
	}
	return cards, total, nil
}
