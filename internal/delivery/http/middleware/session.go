package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	h "eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// SetPrincipal returns a context with the session principal set. Used by the
// session middleware.
func SetPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the session principal from the context, if present.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok && p != nil
}

// WithSession resolves the session cookie against the store and, when the
// session is valid, puts the principal into the request context. Requests
// with no cookie, an unknown token, or an expired session proceed as
// anonymous; expired sessions are deleted opportunistically.
func WithSession(store domain.SessionStore, cookieName string, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(cookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := store.Get(r.Context(), c.Value)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				logger.WarnContext(r.Context(), "session lookup failed", "err", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		if sess.Expired(time.Now()) {
			if err := store.Delete(r.Context(), sess.Token); err != nil {
				logger.WarnContext(r.Context(), "expired session cleanup failed", "err", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		p := &domain.Principal{UserID: sess.UserID, Email: sess.Email}
		next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), p)))
	})
}

// RequireSession returns a wrapper for API handlers that need an
// authenticated session. Anonymous requests get a 401 envelope.
func RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "authentication required")
				return
			}
			next(w, r)
		}
	}
}

// RequireAdminAPI returns a wrapper for API handlers restricted to
// administrators. Anonymous requests get 401; authenticated non-administrators
// get 403.
func RequireAdminAPI(users domain.UserRepository, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "authentication required")
				return
			}
			user, err := users.GetByID(r.Context(), p.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "administrator role required")
					return
				}
				logger.ErrorContext(r.Context(), "admin check failed", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal error")
				return
			}
			if !user.IsAdministrator() {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "administrator role required")
				return
			}
			next(w, r)
		}
	}
}
