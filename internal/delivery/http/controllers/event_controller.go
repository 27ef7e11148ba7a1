package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

// maxHeroUploadBytes caps the multipart hero image upload size.
const maxHeroUploadBytes = 5 << 20

// EventLocationPayload is the location object accepted in event bodies.
type EventLocationPayload struct {
	Venue   string `json:"venue"`
	Address string `json:"address"`
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name        string               `json:"name"`
	Slug        string               `json:"slug"`
	Date        time.Time            `json:"date"`
	Location    EventLocationPayload `json:"location"`
	Description string               `json:"description"`
	FormFields  []domain.FormField   `json:"form_fields"`
	ConsentText string               `json:"consent_text"`
	IsActive    *bool                `json:"is_active"`
	ThemeColor  string               `json:"theme_color"`
}

// Validate implements Validator. Form field schema rules are checked by the
// service and reported per field.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Location.Venue == "" {
		errs = append(errs, "location.venue is required")
	} else if !domain.ValidVenue(domain.Venue(c.Location.Venue)) {
		errs = append(errs, fmt.Sprintf("location.venue must be %q, %q, or %q", domain.VenueOnsite, domain.VenueOnline, domain.VenueHybrid))
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All
// fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Name        *string               `json:"name"`
	Slug        *string               `json:"slug"`
	Date        *time.Time            `json:"date"`
	Location    *EventLocationPayload `json:"location"`
	Description *string               `json:"description"`
	FormFields  *[]domain.FormField   `json:"form_fields"`
	ConsentText *string               `json:"consent_text"`
	IsActive    *bool                 `json:"is_active"`
	ThemeColor  *string               `json:"theme_color"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Location != nil && !domain.ValidVenue(domain.Venue(u.Location.Venue)) {
		errs = append(errs, fmt.Sprintf("location.venue must be %q, %q, or %q", domain.VenueOnsite, domain.VenueOnline, domain.VenueHybrid))
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateEventSuccessResponse is the success response envelope for PATCH /events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// UploadHeroImageSuccessResponse is the success response envelope for POST /events/{eventID}/hero-image (200).
type UploadHeroImageSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PublicEventResponse is the public shape of an event: what the registration
// page needs and nothing else.
type PublicEventResponse struct {
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	Date         time.Time          `json:"date"`
	Location     domain.Location    `json:"location"`
	Description  string             `json:"description"`
	HeroImageKey string             `json:"hero_image_key,omitempty"`
	FormFields   []domain.FormField `json:"form_fields"`
	ConsentText  string             `json:"consent_text"`
	ThemeColor   string             `json:"theme_color"`
}

// GetPublicEventSuccessResponse is the success response envelope for GET /public/events/{slug} (200).
type GetPublicEventSuccessResponse struct {
	Data  PublicEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// EventController handles event management and the public event lookup.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

// NewEventController creates an EventController with the given logger and service.
func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		helpers.WriteJSONValidationError(w, verr)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrDuplicateSlug):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "slug already in use")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create an event with its registration form. The slug is derived from the name when omitted. New events are active unless is_active is false.
// @Tags events
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param body body CreateEventRequest true "Event to create"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (error.fields set for form schema errors)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slug taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	event := &domain.Event{
		Name: req.Name,
		Slug: req.Slug,
		Date: req.Date,
		Location: domain.Location{
			Venue:   domain.Venue(req.Location.Venue),
			Address: req.Location.Address,
		},
		Description: req.Description,
		FormFields:  req.FormFields,
		ConsentText: req.ConsentText,
		IsActive:    isActive,
		ThemeColor:  req.ThemeColor,
	}
	created, err := c.Service.Create(r.Context(), principal.UserID, event)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListEvents godoc
// @Summary List events
// @Description Returns the events visible to the caller: all events for administrators, assigned events for organizers.
// @Tags events
// @Produce json
// @Security SessionCookie
// @Success 200 {object} controllers.ListEventsSuccessResponse "data is an array of events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.List(r.Context(), principal.UserID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns an event with its full registration form. Organizers can only access assigned events.
// @Tags events
// @Produce json
// @Security SessionCookie
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
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
	event, err := c.Service.GetByID(r.Context(), principal.UserID, eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially update an event, including its registration form. Omitted fields are unchanged. Organizers can only update assigned events.
// @Tags events
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (error.fields set for form schema errors)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slug taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	upd := domain.EventUpdate{
		Name:        req.Name,
		Slug:        req.Slug,
		Date:        req.Date,
		Description: req.Description,
		FormFields:  req.FormFields,
		ConsentText: req.ConsentText,
		IsActive:    req.IsActive,
		ThemeColor:  req.ThemeColor,
	}
	if req.Location != nil {
		upd.Location = &domain.Location{
			Venue:   domain.Venue(req.Location.Venue),
			Address: req.Location.Address,
		}
	}
	event, err := c.Service.Update(r.Context(), principal.UserID, eventID, upd)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event and its registrations. Administrator only.
// @Tags events
// @Produce json
// @Security SessionCookie
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.Delete(r.Context(), principal.UserID, eventID); err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// UploadHeroImage godoc
// @Summary Upload an event hero image
// @Description Upload the event's hero image as multipart form data under the "image" field. PNG, JPEG, and WebP up to 5 MiB are accepted.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security SessionCookie
// @Param eventID path string true "Event ID"
// @Param image formData file true "Image file"
// @Success 200 {object} controllers.UploadHeroImageSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/hero-image [post]
func (c *EventController) UploadHeroImage(w http.ResponseWriter, r *http.Request) {
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
	if err := r.ParseMultipartForm(maxHeroUploadBytes); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "image file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxHeroUploadBytes+1))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	event, err := c.Service.SetHeroImage(r.Context(), principal.UserID, eventID, header.Filename, contentType, data)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// GetPublicEvent godoc
// @Summary Get a public event by slug
// @Description Returns the public shape of an active event: name, date, location, description, form fields, consent text, and theme. Inactive and unknown slugs both return 404.
// @Tags public
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.GetPublicEventSuccessResponse "data contains the public event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [get]
func (c *EventController) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	event, err := c.Service.GetPublicBySlug(r.Context(), slug)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PublicEventResponse{
		Name:         event.Name,
		Slug:         event.Slug,
		Date:         event.Date,
		Location:     event.Location,
		Description:  event.Description,
		HeroImageKey: event.HeroImageKey,
		FormFields:   event.FormFields,
		ConsentText:  event.ConsentText,
		ThemeColor:   event.ThemeColor,
	})
}
