package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/joe-events/internal/metrics"
	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/slug"
	"github.com/joestump/joe-events/internal/store"
)

// apiSchema lists the filter keys accepted by GET /events.
var apiSchema = query.Schema{query.KeyCategories}

type eventsAPIHandler struct {
	events     *store.EventStore
	catalog    *store.Catalog
	pagination query.Pagination
	log        *zap.Logger
	now        func() time.Time
}

func (h *eventsAPIHandler) today() time.Time {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// List returns one page of upcoming published events.
//
// @Summary      List events
// @Description  Upcoming published events in start order. filters is a JSON object such as {"categories":["Music","Tech"]}; an event matches when it carries any listed category. A malformed filters value is ignored.
// @Tags         Events
// @Produce      json
// @Param        q        query     string  false  "Free-text search over title, description and venue"
// @Param        filters  query     string  false  "JSON filter object"
// @Param        page     query     int     false  "1-based page number"  default(1)
// @Param        limit    query     int     false  "Page size"            default(12)  maximum(100)
// @Success      200      {object}  EventListResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /events [get]
func (h *eventsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	metrics.ListingRequestsTotal.WithLabelValues("api").Inc()
	params := r.URL.Query()
	filters, err := query.ParseFilters(params, apiSchema)
	if err != nil {
		metrics.FilterDecodeErrorsTotal.WithLabelValues("api").Inc()
		h.log.Debug("ignoring malformed filters", zap.String("filters", params.Get(query.ParamFilters)), zap.Error(err))
	}
	win := query.Resolve(params, h.pagination)

	start := time.Now()
	summaries, total, err := h.catalog.List(r.Context(), store.EventQuery{
		Search:     params.Get(query.ParamSearch),
		Categories: filters.Values(query.KeyCategories),
		Statuses:   []string{store.StatusPublished},
		From:       h.today(),
		Offset:     win.Offset(),
		Limit:      win.Limit,
	})
	metrics.ListingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.log.Error("api list events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	pager := query.NewPager(r.URL.Path, params, win, total)
	resp := EventListResponse{
		Events: make([]EventResponse, 0, len(summaries)),
		Meta:   pageMeta(pager),
		Links:  pageLinks(pager),
	}
	for _, s := range summaries {
		resp.Events = append(resp.Events, toEventResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single published event by slug.
//
// @Summary      Get an event
// @Tags         Events
// @Produce      json
// @Param        slug  path      string  true  "Event slug"
// @Success      200   {object}  EventResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /events/{slug} [get]
func (h *eventsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventSlug := chi.URLParam(r, "slug")
	if slug.Validate(eventSlug) != nil {
		writeError(w, http.StatusNotFound, "event not found", "NOT_FOUND")
		return
	}
	ev, err := h.events.GetBySlug(r.Context(), eventSlug)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !ev.IsPublished()) {
		writeError(w, http.StatusNotFound, "event not found", "NOT_FOUND")
		return
	}
	if err != nil {
		h.log.Error("api get event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	summary, err := h.catalog.Get(r.Context(), ev)
	if err != nil {
		h.log.Error("api summarize event", zap.String("event_id", ev.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(summary))
}
