package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/joestump/joe-events/docs/swagger"
	"github.com/joestump/joe-events/internal/api"
	"github.com/joestump/joe-events/internal/auth"
	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/ratelimit"
	"github.com/joestump/joe-events/internal/store"
	"github.com/joestump/joe-events/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthHandlers   *auth.Handlers
	AuthMiddleware *auth.Middleware
	EventStore     *store.EventStore
	CategoryStore  *store.CategoryStore
	OrderStore     *store.OrderStore
	ViewStore      *store.ViewStore
	ViewCh         chan<- store.ViewEvent // nil disables view tracking
	Pagination     query.Pagination
	CheckoutLimit  *ratelimit.Limiter // nil disables checkout throttling
	CORSOrigins    []string
	Logger         *zap.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Pagination.Limit == 0 {
		deps.Pagination = query.DefaultPagination
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(deps.SessionManager.LoadAndSave)

	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	r.Get("/auth/login", deps.AuthHandlers.Login)
	r.Get("/auth/callback", deps.AuthHandlers.Callback)
	r.Post("/auth/logout", deps.AuthHandlers.Logout)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/docs/*", httpSwagger.WrapHandler)
	r.Mount("/api/v1", api.NewAPIRouter(api.Deps{
		EventStore:    deps.EventStore,
		CategoryStore: deps.CategoryStore,
		OrderStore:    deps.OrderStore,
		Pagination:    deps.Pagination,
		CORSOrigins:   deps.CORSOrigins,
		Logger:        log,
	}))

	landing := NewLandingHandler(deps.EventStore, deps.CategoryStore, deps.OrderStore, log)
	events := NewEventsHandler(deps.EventStore, deps.CategoryStore, deps.OrderStore, deps.ViewCh, deps.Pagination, log)
	dashboard := NewDashboardHandler(deps.EventStore, deps.CategoryStore, deps.OrderStore, deps.ViewStore, deps.SessionManager, deps.Pagination, log)

	// Public pages show the signed-in user in the nav when there is one.
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.LoadUser)

		r.Get("/", landing.Index)
		r.Get("/events", events.Index)
		r.Get("/events/{slug}", events.Show)
		r.With(limit(deps.CheckoutLimit)).Post("/events/{slug}/checkout", events.Checkout)
		r.Get("/orders/{id}", events.Order)
		r.Get("/orders/{id}/ticket.pdf", events.Ticket)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.Get("/dashboard", dashboard.Show)
		r.Get("/dashboard/orders", dashboard.Orders)
		// NOTE: new MUST be registered before /{id} routes so chi never treats it as an id
		r.Get("/dashboard/events/new", dashboard.New)
		r.Post("/dashboard/events", dashboard.Create)
		r.Get("/dashboard/events/{id}/edit", dashboard.Edit)
		r.Post("/dashboard/events/{id}", dashboard.Update)
		r.Post("/dashboard/events/{id}/delete", dashboard.Delete)
	})

	r.NotFound(deps.AuthMiddleware.LoadUser(http.HandlerFunc(notFound)).ServeHTTP)
	return r
}

// limit returns l's middleware, or a pass-through when l is nil.
func limit(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return l.Middleware
}
