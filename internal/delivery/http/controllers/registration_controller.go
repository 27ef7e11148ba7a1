package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

// RegisterRequest is the request body for POST /public/events/{slug}/registrations.
// Answers is keyed by form field name; value types follow the field type
// (strings for inputs, bool for checkboxes, string or array for multiple-choice).
type RegisterRequest struct {
	Answers map[string]any `json:"answers"`
}

// Validate implements Validator. Per-field rules are checked against the
// event's form schema by the service.
func (r RegisterRequest) Validate() []string {
	if r.Answers == nil {
		return []string{"answers is required"}
	}
	return nil
}

// RegisterSuccessResponse is the success response envelope for POST /public/events/{slug}/registrations (201).
type RegisterSuccessResponse struct {
	Data  *domain.RegistrationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListRegistrationsResponse is the data payload for GET /events/{eventID}/registrations (200).
type ListRegistrationsResponse struct {
	Items      []*domain.Registration `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListRegistrationsSuccessResponse is the success response envelope for GET /events/{eventID}/registrations (200).
type ListRegistrationsSuccessResponse struct {
	Data  ListRegistrationsResponse `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// CheckInRequest is the request body for POST /checkin.
type CheckInRequest struct {
	Token string `json:"token"`
}

// Validate implements Validator.
func (c CheckInRequest) Validate() []string {
	if c.Token == "" {
		return []string{"token is required"}
	}
	return nil
}

// CheckInResponse is the data payload for POST /checkin (200).
type CheckInResponse struct {
	Registration     *domain.Registration `json:"registration"`
	AlreadyCheckedIn bool                 `json:"already_checked_in"`
}

// CheckInSuccessResponse is the success response envelope for POST /checkin (200).
type CheckInSuccessResponse struct {
	Data  CheckInResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RegistrationController handles public registration, the attendee list, and
// ticket check-in.
type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

// NewRegistrationController creates a RegistrationController with the given logger and service.
func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *RegistrationController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		helpers.WriteJSONValidationError(w, verr)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidTicket):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, domain.ErrInvalidTicket.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// Register godoc
// @Summary Register for an event
// @Description Submit the registration form for an active event. Answers are validated against the event's form schema; failures return error.fields with one entry per invalid field. On success the attendee receives a confirmation email with a QR ticket.
// @Tags public
// @Accept json
// @Produce json
// @Param slug path string true "Event slug"
// @Param body body RegisterRequest true "Form answers keyed by field name"
// @Success 201 {object} controllers.RegisterSuccessResponse "data contains the registration and QR ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (error.fields set for per-field errors)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Register(r.Context(), slug, req.Answers)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// ListEventRegistrations godoc
// @Summary List registrations for an event
// @Description Returns a paginated list of registrations for the event. Organizers can only list assigned events.
// @Tags registrations
// @Produce json
// @Security SessionCookie
// @Param eventID path string true "Event ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListRegistrationsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/registrations [get]
func (c *RegistrationController) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	regs, total, err := c.Service.ListByEvent(r.Context(), principal.UserID, eventID, params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRegistrationsResponse{
		Items:      regs,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// CheckIn godoc
// @Summary Check in a ticket
// @Description Verify a scanned QR ticket token and stamp the registration as checked in. A ticket scanned a second time returns already_checked_in true rather than an error.
// @Tags registrations
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param body body CheckInRequest true "Scanned ticket token"
// @Success 200 {object} controllers.CheckInSuccessResponse "data contains the registration and whether it was already checked in"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid or expired ticket)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/checkin [post]
func (c *RegistrationController) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, already, err := c.Service.CheckIn(r.Context(), req.Token)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CheckInResponse{
		Registration:     reg,
		AlreadyCheckedIn: already,
	})
}
