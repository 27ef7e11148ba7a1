package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventdesk/internal/delivery/http/controllers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/delivery/http/pages"
	"eventdesk/internal/domain"
)

// NewRouter builds the full route table: server-rendered pages, the JSON API,
// and the swagger UI. The session middleware wraps the whole mux so every
// handler sees the principal when the cookie resolves to a live session.
func NewRouter(
	logger *slog.Logger,
	sessions domain.SessionStore,
	users domain.UserRepository,
	cookieName string,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	site *pages.Pages,
) http.Handler {
	mux := http.NewServeMux()

	requireSession := middleware.RequireSession()
	requireAdminAPI := middleware.RequireAdminAPI(users, logger)
	requirePage := middleware.RequirePage()
	requireAdminPage := middleware.RequireAdminPage(users, logger)

	// Pages
	mux.HandleFunc("GET /admin/login", site.LoginPage)
	mux.HandleFunc("POST /admin/login", site.LoginSubmit)
	mux.HandleFunc("GET /admin", requirePage(site.Landing))
	mux.HandleFunc("GET /admin/users", requireAdminPage(site.UsersPage))
	mux.HandleFunc("GET /admin/logout", site.Logout)
	mux.HandleFunc("GET /e/{slug}", site.EventPage)
	mux.HandleFunc("POST /e/{slug}", site.EventRegister)
	mux.HandleFunc("GET /healthz", healthz)

	// Auth API
	mux.HandleFunc("POST /api/auth/login", authController.Login)
	mux.HandleFunc("POST /api/auth/logout", authController.Logout)
	mux.HandleFunc("GET /api/auth/me", requireSession(authController.Me))

	// User management API, administrators only
	mux.HandleFunc("GET /api/admin/users", requireAdminAPI(userController.ListUsers))
	mux.HandleFunc("POST /api/admin/users", requireAdminAPI(userController.CreateUser))
	mux.HandleFunc("GET /api/admin/users/{userID}", requireAdminAPI(userController.GetUser))
	mux.HandleFunc("PATCH /api/admin/users/{userID}", requireAdminAPI(userController.UpdateUser))
	mux.HandleFunc("DELETE /api/admin/users/{userID}", requireAdminAPI(userController.DeleteUser))

	// Event management API; admin-or-assigned-organizer checks run in the service
	mux.HandleFunc("GET /api/admin/events", requireSession(eventController.ListEvents))
	mux.HandleFunc("POST /api/admin/events", requireSession(eventController.CreateEvent))
	mux.HandleFunc("GET /api/admin/events/{eventID}", requireSession(eventController.GetEvent))
	mux.HandleFunc("PATCH /api/admin/events/{eventID}", requireSession(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /api/admin/events/{eventID}", requireSession(eventController.DeleteEvent))
	mux.HandleFunc("POST /api/admin/events/{eventID}/hero-image", requireSession(eventController.UploadHeroImage))
	mux.HandleFunc("GET /api/admin/events/{eventID}/registrations", requireSession(registrationController.ListEventRegistrations))
	mux.HandleFunc("POST /api/admin/checkin", requireSession(registrationController.CheckIn))

	// Public API
	mux.HandleFunc("GET /api/events/{slug}", eventController.GetPublicEvent)
	mux.HandleFunc("POST /api/events/{slug}/registrations", registrationController.Register)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.WithSession(sessions, cookieName, logger, mux)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
