package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/joe-events/internal/auth"
	"github.com/joestump/joe-events/internal/build"
	"github.com/joestump/joe-events/internal/cache"
	"github.com/joestump/joe-events/internal/config"
	"github.com/joestump/joe-events/internal/db"
	"github.com/joestump/joe-events/internal/handler"
	"github.com/joestump/joe-events/internal/metrics"
	"github.com/joestump/joe-events/internal/ratelimit"
	"github.com/joestump/joe-events/internal/store"
)

const (
	viewBuffer      = 256
	limiterIdle     = 10 * time.Minute
	limiterSweep    = time.Minute
	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			var facetCache cache.Cache = cache.Nop{}
			if cfg.Redis.Addr != "" {
				rdb, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
				if err != nil {
					return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
				}
				defer func() { _ = rdb.Close() }()
				facetCache = cache.NewRedis(rdb, "joe-events:")
				logger.Info("facet cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.CacheTTL))
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)

			oidcProvider, err := auth.NewProvider(ctx, cfg)
			if err != nil {
				return err
			}

			userStore := store.NewUserStore(database)
			categoryStore := store.NewCategoryStore(database, facetCache, cfg.CacheTTL)
			eventStore := store.NewEventStore(database, categoryStore)
			orderStore := store.NewOrderStore(database)
			viewStore := store.NewViewStore(database)

			if n, err := eventStore.Count(ctx); err != nil {
				logger.Warn("count events", zap.Error(err))
			} else {
				metrics.EventsTotal.Set(float64(n))
			}

			viewCh := make(chan store.ViewEvent, viewBuffer)
			writerDone := make(chan struct{})
			go func() {
				defer close(writerDone)
				runViewWriter(ctx, viewCh, viewStore, logger)
			}()

			limiter := ratelimit.New(cfg.Checkout.Rate, cfg.Checkout.Burst, limiterIdle)
			go limiter.Run(ctx, limiterSweep)

			authHandlers := auth.NewHandlers(oidcProvider, sessionManager, userStore, cfg.AdminEmail, !cfg.InsecureCookies, logger)
			authMiddleware := auth.NewMiddleware(sessionManager, userStore)

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthHandlers:   authHandlers,
				AuthMiddleware: authMiddleware,
				EventStore:     eventStore,
				CategoryStore:  categoryStore,
				OrderStore:     orderStore,
				ViewStore:      viewStore,
				ViewCh:         viewCh,
				Pagination:     cfg.Pagination,
				CheckoutLimit:  limiter,
				CORSOrigins:    cfg.CORSOrigins,
				Logger:         logger,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			logger.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("version", build.Version))

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				logger.Info("shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http shutdown", zap.Error(err))
			}
			stop()
			<-writerDone
			return nil
		},
	}
}

// viewRecorder persists a single event view.
type viewRecorder interface {
	Record(ctx context.Context, v store.ViewEvent) error
}

// runViewWriter reads view events from the channel and persists them.
// On context cancellation it drains remaining events before returning.
func runViewWriter(ctx context.Context, ch <-chan store.ViewEvent, vs viewRecorder, log *zap.Logger) {
	record := func(ctx context.Context, v store.ViewEvent) {
		if err := vs.Record(ctx, v); err != nil {
			metrics.ViewsRecordErrorsTotal.Inc()
			log.Warn("record view", zap.String("event_id", v.EventID), zap.Error(err))
			return
		}
		metrics.ViewsRecordedTotal.Inc()
	}

	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return
			}
			record(ctx, v)
		case <-ctx.Done():
			for {
				select {
				case v, ok := <-ch:
					if !ok {
						return
					}
					record(context.Background(), v)
				default:
					return
				}
			}
		}
	}
}
