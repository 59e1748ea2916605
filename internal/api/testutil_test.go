package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-events/internal/api"
	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/store"
	"github.com/joestump/joe-events/internal/testutil"
)

// testEnv holds the stores behind an API router mounted at /api/v1.
type testEnv struct {
	Router     http.Handler
	Users      *store.UserStore
	Events     *store.EventStore
	Categories *store.CategoryStore
	Orders     *store.OrderStore
	organizer  *store.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	cats := store.NewCategoryStore(db, nil, 0)
	env := &testEnv{
		Users:      store.NewUserStore(db),
		Events:     store.NewEventStore(db, cats),
		Categories: cats,
		Orders:     store.NewOrderStore(db),
	}

	r := chi.NewRouter()
	r.Mount("/api/v1", api.NewAPIRouter(api.Deps{
		EventStore:    env.Events,
		CategoryStore: env.Categories,
		OrderStore:    env.Orders,
		Pagination:    query.Pagination{Page: 1, Limit: 2, MaxLimit: 5},
	}))
	env.Router = r

	u, err := env.Users.Upsert(context.Background(), "test", "sub-org", "org@example.com", "Organizer", "")
	if err != nil {
		t.Fatalf("seed organizer: %v", err)
	}
	env.organizer = u
	return env
}

// seedEvent creates an event starting days from now.
func seedEvent(t *testing.T, env *testEnv, title string, days int, status string, categories ...string) *store.Event {
	t.Helper()
	ev, err := env.Events.Create(context.Background(), env.organizer.ID, store.EventInput{
		Title:      title,
		Venue:      "Town Hall",
		StartsAt:   time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour),
		PriceCents: 1000,
		Capacity:   10,
		Status:     status,
		Categories: categories,
	})
	if err != nil {
		t.Fatalf("seed event %q: %v", title, err)
	}
	return ev
}

// get issues a GET against the router and decodes a 2xx body into v.
func get(t *testing.T, env *testEnv, target string, v any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if v != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return rec
}
