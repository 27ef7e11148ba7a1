package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// Role is the single authorization axis of the system.
type Role string

// Known roles. Administrators manage users and all events; organizers manage
// only the events assigned to them.
const (
	RoleAdministrator Role = "administrator"
	RoleOrganizer     Role = "organizer"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleAdministrator || r == RoleOrganizer
}

// User represents a staff account managed through the admin area.
// Password fields are empty for accounts created by an administrator
// before the person has logged in for the first time.
// swagger:model User
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             Role      `json:"role"`
	AssignedEventIDs []string  `json:"assigned_event_ids"`
	PasswordHash     string    `json:"-"`
	Salt             string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsAdministrator reports whether the user holds the administrator role.
func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}

// IsAssignedTo reports whether eventID is in the user's assigned events.
func (u *User) IsAssignedTo(eventID string) bool {
	for _, id := range u.AssignedEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// UserUpdate carries the mutable user fields for a partial update.
// Nil fields are left unchanged.
type UserUpdate struct {
	Name             *string
	Email            *string
	Role             *Role
	AssignedEventIDs *[]string
	Password         *string
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// UserRepository defines the interface for user storage.
// GetByEmail is backed by a unique index on the email column.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

// UserService defines the business logic for administrator-managed accounts.
// All operations assume the caller has already been authorized as an
// administrator by the delivery layer.
type UserService interface {
	Create(ctx context.Context, name, email string, role Role, password string, assignedEventIDs []string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	Update(ctx context.Context, callerID, userID string, upd UserUpdate) (*User, error)
	Delete(ctx context.Context, callerID, userID string) error
}
