package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

// CreateUserRequest is the request body for POST /users
type CreateUserRequest struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	Password         string   `json:"password,omitempty"`
	AssignedEventIDs []string `json:"assigned_event_ids,omitempty"`
}

// Validate implements Validator.
func (u CreateUserRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, "name is required")
	}
	email := strings.TrimSpace(u.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "invalid email format")
	}
	if u.Role == "" {
		errs = append(errs, "role is required")
	} else if !domain.ValidRole(domain.Role(u.Role)) {
		errs = append(errs, fmt.Sprintf("role must be %q or %q", domain.RoleAdministrator, domain.RoleOrganizer))
	}
	return errs
}

// UpdateUserRequest is the request body for PATCH /users/{userID}.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	Name             *string   `json:"name"`
	Email            *string   `json:"email"`
	Role             *string   `json:"role"`
	Password         *string   `json:"password"`
	AssignedEventIDs *[]string `json:"assigned_event_ids"`
}

// Validate implements Validator.
func (u UpdateUserRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Email != nil {
		email := strings.TrimSpace(*u.Email)
		if email == "" {
			errs = append(errs, "email cannot be empty")
		} else if _, err := mail.ParseAddress(email); err != nil {
			errs = append(errs, "invalid email format")
		}
	}
	if u.Role != nil && !domain.ValidRole(domain.Role(*u.Role)) {
		errs = append(errs, fmt.Sprintf("role must be %q or %q", domain.RoleAdministrator, domain.RoleOrganizer))
	}
	return errs
}

// CreateUserSuccessResponse is the success response envelope for POST /users (201).
type CreateUserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetUserSuccessResponse is the success response envelope for GET /users/{userID} (200).
type GetUserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListUsersResponse is the data payload for GET /users (200).
type ListUsersResponse struct {
	Items      []*domain.User         `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListUsersSuccessResponse is the success response envelope for GET /users (200).
type ListUsersSuccessResponse struct {
	Data  ListUsersResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateUserSuccessResponse is the success response envelope for PATCH /users/{userID} (200).
type UpdateUserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteUserResponse is the data payload for DELETE /users/{userID} (200).
type DeleteUserResponse struct {
	Status string `json:"status"`
}

// DeleteUserSuccessResponse is the success response envelope for DELETE /users/{userID} (200).
type DeleteUserSuccessResponse struct {
	Data  DeleteUserResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// UserController handles administrator account management.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

// NewUserController creates a UserController with the given logger and service.
func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *UserController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already in use")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateUser godoc
// @Summary Create a user
// @Description Create a staff account with name, email, and role. Password is optional; an account without one cannot log in until an administrator sets it.
// @Tags users
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param body body CreateUserRequest true "User to create"
// @Success 201 {object} controllers.CreateUserSuccessResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users [post]
func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Create(r.Context(), req.Name, req.Email, domain.Role(req.Role), req.Password, req.AssignedEventIDs)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// ListUsers godoc
// @Summary List users
// @Description List staff accounts, paginated and ordered by creation time.
// @Tags users
// @Produce json
// @Security SessionCookie
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListUsersSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users [get]
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	users, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListUsersResponse{
		Items:      users,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetUser godoc
// @Summary Get a user
// @Description Fetch a single staff account by ID.
// @Tags users
// @Produce json
// @Security SessionCookie
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.GetUserSuccessResponse "data contains the user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{userID} [get]
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "user ID is required")
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Description Partially update a staff account. Absent fields are left unchanged. Administrators cannot demote themselves.
// @Tags users
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param userID path string true "User ID"
// @Param body body UpdateUserRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateUserSuccessResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{userID} [patch]
func (c *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "user ID is required")
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	upd := domain.UserUpdate{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		AssignedEventIDs: req.AssignedEventIDs,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		upd.Role = &role
	}
	user, err := c.Service.Update(r.Context(), principal.UserID, userID, upd)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Delete a staff account. Administrators cannot delete their own account.
// @Tags users
// @Produce json
// @Security SessionCookie
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.DeleteUserSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{userID} [delete]
func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "user ID is required")
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), principal.UserID, userID); err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteUserResponse{Status: "deleted"})
}
