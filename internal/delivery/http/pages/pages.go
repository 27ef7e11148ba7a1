// Package pages serves the server-rendered HTML surface: the admin login,
// landing, and user pages plus the public registration form. JSON endpoints
// live in the controllers package; this package only speaks HTML and
// redirects.
package pages

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	// selected reports whether option is among the submitted values for
	// name, for re-checking radio and checkbox inputs on re-render.
	"selected": func(values url.Values, name, option string) bool {
		for _, v := range values[name] {
			if v == option {
				return true
			}
		}
		return false
	},
}).ParseFS(templateFS, "templates/*.html"))

// Pages renders the HTML pages and handles their form submissions.
type Pages struct {
	Logger        *slog.Logger
	Auth          domain.AuthService
	Users         domain.UserService
	Events        domain.EventService
	Registrations domain.RegistrationService
	CookieName    string
	CookieSecure  bool

	// AssetBaseURL is the public base URL uploaded images are served
	// from. Empty disables hero images on the event page.
	AssetBaseURL string
}

// NewPages creates a Pages handler set. cookieSecure should be true whenever
// the site is served over HTTPS.
func NewPages(logger *slog.Logger, auth domain.AuthService, users domain.UserService, events domain.EventService, registrations domain.RegistrationService, cookieName string, cookieSecure bool, assetBaseURL string) *Pages {
	return &Pages{
		Logger:        logger,
		Auth:          auth,
		Users:         users,
		Events:        events,
		Registrations: registrations,
		CookieName:    cookieName,
		CookieSecure:  cookieSecure,
		AssetBaseURL:  assetBaseURL,
	}
}

type loginView struct {
	Error string
	Email string
}

type landingView struct {
	Email  string
	Events []*domain.Event
}

type usersView struct {
	Users []*domain.User
	Total int
}

type eventView struct {
	Event     *domain.Event
	HeroURL   string
	Errors    map[string]string
	Values    url.Values
	FormError string
}

type successView struct {
	EventName    string
	AttendeeName string
	TicketCode   string
	QRDataURL    template.URL
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		p.Logger.ErrorContext(r.Context(), "template render failed", "template", name, "path", r.URL.Path, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (p *Pages) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     p.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// LoginPage serves GET /admin/login. Authenticated visitors are sent to the
// landing page instead.
func (p *Pages) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, middleware.LandingPath, http.StatusSeeOther)
		return
	}
	p.render(w, r, http.StatusOK, "login.html", loginView{})
}

// LoginSubmit handles POST /admin/login. Success sets the session cookie and
// redirects to the landing page; failures re-render the form with a message.
func (p *Pages) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		p.render(w, r, http.StatusBadRequest, "login.html", loginView{Error: "Could not read the form submission."})
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		p.render(w, r, http.StatusBadRequest, "login.html", loginView{Error: "Email and password are required.", Email: email})
		return
	}

	session, _, err := p.Auth.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			p.render(w, r, http.StatusUnauthorized, "login.html", loginView{Error: "Invalid email or password.", Email: email})
			return
		}
		p.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		p.render(w, r, http.StatusInternalServerError, "login.html", loginView{Error: "Something went wrong. Please try again.", Email: email})
		return
	}

	cookie := p.sessionCookie(session.Token, 0)
	cookie.Expires = session.ExpiresAt
	http.SetCookie(w, cookie)
	http.Redirect(w, r, middleware.LandingPath, http.StatusSeeOther)
}

// Landing serves GET /admin: the events visible to the signed-in user. A
// failing event list is logged and rendered as empty rather than erroring
// the whole page.
func (p *Pages) Landing(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	events, err := p.Events.List(r.Context(), principal.UserID)
	if err != nil {
		p.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		events = nil
	}
	p.render(w, r, http.StatusOK, "landing.html", landingView{Email: principal.Email, Events: events})
}

// UsersPage serves GET /admin/users. The admin gate runs in middleware; a
// failing user list is logged and rendered as empty.
func (p *Pages) UsersPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.PrincipalFromContext(r.Context()); !ok {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	users, total, err := p.Users.List(r.Context(), helpers.ParsePagination(r))
	if err != nil {
		p.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		users, total = nil, 0
	}
	p.render(w, r, http.StatusOK, "users.html", usersView{Users: users, Total: total})
}

// Logout serves GET /admin/logout. It destroys the session, clears the
// cookie, and redirects to the login page. Store failures are logged, never
// surfaced: the visitor always ends up logged out at the login page.
func (p *Pages) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(p.CookieName); err == nil && cookie.Value != "" {
		if err := p.Auth.Logout(r.Context(), cookie.Value); err != nil {
			p.Logger.ErrorContext(r.Context(), "logout failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
	}
	http.SetCookie(w, p.sessionCookie("", -1))
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// EventPage serves GET /e/{slug}: the public registration form.
func (p *Pages) EventPage(w http.ResponseWriter, r *http.Request) {
	event, err := p.Events.GetPublicBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.render(w, r, http.StatusNotFound, "notfound.html", nil)
			return
		}
		p.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	p.render(w, r, http.StatusOK, "event.html", p.newEventView(event, nil, nil, ""))
}

// EventRegister handles POST /e/{slug}. Validation failures re-render the
// form with per-field messages and the submitted values; success renders the
// ticket page.
func (p *Pages) EventRegister(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	event, err := p.Events.GetPublicBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.render(w, r, http.StatusNotFound, "notfound.html", nil)
			return
		}
		p.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		p.render(w, r, http.StatusBadRequest, "event.html", p.newEventView(event, nil, nil, "Could not read the form submission."))
		return
	}

	result, err := p.Registrations.Register(r.Context(), slug, formAnswers(r.PostForm))
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			p.render(w, r, http.StatusBadRequest, "event.html", p.newEventView(event, fieldMessages(vErr), r.PostForm, "Please fix the highlighted fields."))
		case errors.Is(err, domain.ErrNotFound):
			p.render(w, r, http.StatusNotFound, "notfound.html", nil)
		default:
			p.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			p.render(w, r, http.StatusInternalServerError, "event.html", p.newEventView(event, nil, r.PostForm, "Something went wrong. Please try again."))
		}
		return
	}

	reg := result.Registration
	p.render(w, r, http.StatusOK, "success.html", successView{
		EventName:    event.Name,
		AttendeeName: reg.AttendeeName,
		TicketCode:   reg.TicketCode,
		QRDataURL:    template.URL(result.QRDataURL),
	})
}

func (p *Pages) newEventView(event *domain.Event, fieldErrors map[string]string, values url.Values, formError string) eventView {
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	if values == nil {
		values = url.Values{}
	}
	heroURL := ""
	if event.HeroImageKey != "" && p.AssetBaseURL != "" {
		heroURL = strings.TrimRight(p.AssetBaseURL, "/") + "/" + event.HeroImageKey
	}
	return eventView{
		Event:     event,
		HeroURL:   heroURL,
		Errors:    fieldErrors,
		Values:    values,
		FormError: formError,
	}
}

// formAnswers turns an HTML form submission into the answers map the
// registration service validates. Fields posted once become strings; fields
// posted multiple times, as checkbox groups do, become string slices.
func formAnswers(form url.Values) map[string]any {
	answers := make(map[string]any, len(form))
	for name, vals := range form {
		switch len(vals) {
		case 0:
		case 1:
			answers[name] = vals[0]
		default:
			answers[name] = vals
		}
	}
	return answers
}

func fieldMessages(vErr *domain.ValidationError) map[string]string {
	msgs := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		if _, ok := msgs[f.Field]; !ok {
			msgs[f.Field] = f.Message
		}
	}
	return msgs
}
