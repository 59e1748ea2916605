package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/store"
)

const landingEventCount = 6

// LandingPage is the template data for the home page.
type LandingPage struct {
	BasePage
	Upcoming   []EventCard
	Categories FacetGroup
}

// LandingHandler serves the public landing page.
type LandingHandler struct {
	catalog *store.Catalog
	cats    *store.CategoryStore
	log     *zap.Logger
	now     func() time.Time
}

func NewLandingHandler(es *store.EventStore, cs *store.CategoryStore, os *store.OrderStore, log *zap.Logger) *LandingHandler {
	return &LandingHandler{catalog: store.NewCatalog(es, cs, os), cats: cs, log: log, now: time.Now}
}

// Index serves GET / with the next few published events and a category
// chip for each facet, linking into /events.
func (h *LandingHandler) Index(w http.ResponseWriter, r *http.Request) {
	cards, _, err := loadCards(r.Context(), h.catalog, store.EventQuery{
		Statuses: []string{store.StatusPublished},
		From:     startOfDay(h.now()),
		Limit:    landingEventCount,
	})
	if err != nil {
		h.log.Error("list upcoming events", zap.Error(err))
		http.Error(w, "could not load events", http.StatusInternalServerError)
		return
	}
	counts, err := h.cats.PublishedCounts(r.Context())
	if err != nil {
		h.log.Warn("load category counts", zap.Error(err))
	}

	// The chips are built against /events with no current selection.
	l := listing{}
	render(w, "landing.html", LandingPage{
		BasePage:   newBasePage(r, "Discover events"),
		Upcoming:   cards,
		Categories: l.facet("/events", query.KeyCategories, categoryChips(counts)),
	})
}
