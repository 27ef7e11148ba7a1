package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /auth/login. The session token
// itself travels only in the cookie.
type LoginResponse struct {
	User      *domain.User `json:"user"`
	ExpiresAt string       `json:"expires_at"`
}

// LoginSuccessResponse is the success response envelope for POST /auth/login (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LogoutResponse is the data payload for POST /auth/logout (200).
type LogoutResponse struct {
	Status string `json:"status"`
}

// LogoutSuccessResponse is the success response envelope for POST /auth/logout (200).
type LogoutSuccessResponse struct {
	Data  LogoutResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MeSuccessResponse is the success response envelope for GET /auth/me (200).
type MeSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AuthController handles session login and logout for the admin area.
type AuthController struct {
	Logger       *slog.Logger
	Auth         domain.AuthService
	Users        domain.UserService
	CookieName   string
	CookieSecure bool
}

// NewAuthController creates an AuthController. cookieSecure should be true
// whenever the site is served over HTTPS.
func NewAuthController(logger *slog.Logger, auth domain.AuthService, users domain.UserService, cookieName string, cookieSecure bool) *AuthController {
	return &AuthController{
		Logger:       logger,
		Auth:         auth,
		Users:        users,
		CookieName:   cookieName,
		CookieSecure: cookieSecure,
	}
}

func (c *AuthController) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. On success a session cookie is set and the user is returned.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains the user and session expiry"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	session, user, err := c.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid credentials")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	cookie := c.sessionCookie(session.Token, 0)
	cookie.Expires = session.ExpiresAt
	http.SetCookie(w, cookie)
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		User:      user,
		ExpiresAt: session.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Logout godoc
// @Summary Log out
// @Description Destroy the current session and clear the session cookie. Succeeds even without a session.
// @Tags auth
// @Produce json
// @Success 200 {object} controllers.LogoutSuccessResponse "data contains status"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(c.CookieName); err == nil {
		token = cookie.Value
	}
	if err := c.Auth.Logout(r.Context(), token); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	http.SetCookie(w, c.sessionCookie("", -1))
	helpers.WriteJSONSuccess(w, http.StatusOK, LogoutResponse{Status: "logged_out"})
}

// Me godoc
// @Summary Get the current user
// @Description Returns the account behind the current session.
// @Tags auth
// @Produce json
// @Success 200 {object} controllers.MeSuccessResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Users.GetByID(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
