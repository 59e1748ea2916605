package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	EventStore    *store.EventStore
	CategoryStore *store.CategoryStore
	OrderStore    *store.OrderStore
	Pagination    query.Pagination
	CORSOrigins   []string // empty allows any origin
	Logger        *zap.Logger
}

// NewAPIRouter creates the read-only chi sub-router mounted at /api/v1.
func NewAPIRouter(deps Deps) chi.Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Pagination.Limit == 0 {
		deps.Pagination = query.DefaultPagination
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))
	r.Use(jsonContentType)

	events := &eventsAPIHandler{
		events:     deps.EventStore,
		catalog:    store.NewCatalog(deps.EventStore, deps.CategoryStore, deps.OrderStore),
		pagination: deps.Pagination,
		log:        deps.Logger,
	}
	r.Get("/events", events.List)
	r.Get("/events/{slug}", events.Get)

	categories := &categoriesAPIHandler{cats: deps.CategoryStore, log: deps.Logger}
	r.Get("/categories", categories.List)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
	})
	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
