package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/joe-events/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// Middleware loads the organizer behind the session cookie.
type Middleware struct {
	sessions *scs.SessionManager
	users    *store.UserStore
}

func NewMiddleware(sm *scs.SessionManager, us *store.UserStore) *Middleware {
	return &Middleware{sessions: sm, users: us}
}

// LoadUser puts the signed-in *store.User on the request context when there
// is one. Anonymous requests pass through unchanged.
func (m *Middleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := m.sessionUser(r); user != nil {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects to /auth/login if no valid session exists.
// On success, sets the *store.User on the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.sessionUser(r)
		if user == nil {
			http.Redirect(w, r, "/auth/login?redirect="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (m *Middleware) sessionUser(r *http.Request) *store.User {
	if u := UserFromContext(r.Context()); u != nil {
		return u
	}
	userID := m.sessions.GetString(r.Context(), SessionUserIDKey)
	if userID == "" {
		return nil
	}
	user, err := m.users.GetByID(r.Context(), userID)
	if err != nil {
		// Session references a deleted user.
		_ = m.sessions.Destroy(r.Context())
		return nil
	}
	return user
}

// CanManage reports whether u may edit or view orders for events owned by
// organizerID.
func CanManage(u *store.User, organizerID string) bool {
	return u != nil && (u.IsAdmin() || u.ID == organizerID)
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, UserContextKey, u)
}

// UserFromContext retrieves the authenticated user from the context.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(UserContextKey).(*store.User)
	return u
}
