package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventdesk/internal/domain"
)

// Admin page routes used as gate redirect targets.
const (
	LoginPath   = "/admin/login"
	LandingPath = "/admin"
)

// GateResult is the outcome of the admin page gate.
type GateResult int

const (
	// GateAllow lets the request through.
	GateAllow GateResult = iota
	// GateRedirectLogin sends the browser to the login page.
	GateRedirectLogin
	// GateRedirectLanding sends the browser to the general admin landing.
	GateRedirectLanding
)

// AdminPageGate decides access to administrator-only pages. principal is nil
// for anonymous requests; matched is the user record found by the principal's
// email, or nil when no record matched.
//
// The two non-allow outcomes are deliberately distinct: an anonymous visitor
// belongs on the login page, while a logged-in identity that cannot be
// resolved to an administrator (no email on the session, no matching record,
// or a non-administrator role) belongs on the landing page, where the rest of
// the admin area is still usable.
func AdminPageGate(principal *domain.Principal, matched *domain.User) GateResult {
	if principal == nil {
		return GateRedirectLogin
	}
	if principal.Email == "" {
		return GateRedirectLanding
	}
	if matched == nil || !matched.IsAdministrator() {
		return GateRedirectLanding
	}
	return GateAllow
}

// RequirePage returns a wrapper for pages that need any authenticated
// session. Anonymous requests are redirected to the login page.
func RequirePage() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}

// RequireAdminPage returns a wrapper enforcing the administrator gate on
// pages. The directory record is matched by the principal's email through
// the unique email index; a failed lookup counts as no match.
func RequireAdminPage(users domain.UserRepository, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFromContext(r.Context())

			var matched *domain.User
			if principal != nil && principal.Email != "" {
				email := strings.TrimSpace(strings.ToLower(principal.Email))
				u, err := users.GetByEmail(r.Context(), email)
				if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
					logger.ErrorContext(r.Context(), "gate directory lookup failed", "path", r.URL.Path, "err", err)
				}
				if err == nil {
					matched = u
				}
			}

			switch AdminPageGate(principal, matched) {
			case GateRedirectLogin:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			case GateRedirectLanding:
				http.Redirect(w, r, LandingPath, http.StatusSeeOther)
			default:
				next(w, r)
			}
		}
	}
}
