package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateSlug is returned when an event slug is already taken.
var ErrDuplicateSlug = errors.New("slug already in use")

// Venue describes how an event is held.
type Venue string

// Known venue kinds.
const (
	VenueOnsite Venue = "onsite"
	VenueOnline Venue = "online"
	VenueHybrid Venue = "hybrid"
)

// ValidVenue reports whether v is a known venue kind.
func ValidVenue(v Venue) bool {
	return v == VenueOnsite || v == VenueOnline || v == VenueHybrid
}

// Location is where an event takes place. Address is empty for online events.
type Location struct {
	Venue   Venue  `json:"venue"`
	Address string `json:"address,omitempty"`
}

// FieldType is the input kind of a registration form field.
type FieldType string

// Known form field types.
const (
	FieldText           FieldType = "text"
	FieldEmail          FieldType = "email"
	FieldTel            FieldType = "tel"
	FieldCheckbox       FieldType = "checkbox"
	FieldTextarea       FieldType = "textarea"
	FieldRadio          FieldType = "radio"
	FieldMultipleChoice FieldType = "multiple-choice"
)

// ValidFieldType reports whether t is a known field type.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldEmail, FieldTel, FieldCheckbox, FieldTextarea, FieldRadio, FieldMultipleChoice:
		return true
	}
	return false
}

// HasOptions reports whether the field type is option-based and therefore
// requires a non-empty Options list.
func (t FieldType) HasOptions() bool {
	return t == FieldRadio || t == FieldMultipleChoice
}

// FormField is one entry of an event's registration form. Name is the
// submission key and must be unique within the event; slice order is
// display order.
type FormField struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
}

// Event represents a public event with a configurable registration form.
// swagger:model Event
type Event struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	Date         time.Time   `json:"date"`
	Location     Location    `json:"location"`
	Description  string      `json:"description"`
	HeroImageKey string      `json:"hero_image_key,omitempty"`
	FormFields   []FormField `json:"form_fields"`
	ConsentText  string      `json:"consent_text"`
	IsActive     bool        `json:"is_active"`
	ThemeColor   string      `json:"theme_color"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// EventUpdate carries the mutable event fields for a partial update.
// Nil fields are left unchanged.
type EventUpdate struct {
	Name        *string
	Slug        *string
	Date        *time.Time
	Location    *Location
	Description *string
	FormFields  *[]FormField
	ConsentText *string
	IsActive    *bool
	ThemeColor  *string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for event management.
// callerID identifies the authenticated staff user; administrators may
// touch all events, organizers only the events assigned to them.
type EventService interface {
	Create(ctx context.Context, callerID string, event *Event) (*Event, error)
	GetByID(ctx context.Context, callerID, eventID string) (*Event, error)
	List(ctx context.Context, callerID string) ([]*Event, error)
	Update(ctx context.Context, callerID, eventID string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, callerID, eventID string) error
	SetHeroImage(ctx context.Context, callerID, eventID, filename, contentType string, data []byte) (*Event, error)
	GetPublicBySlug(ctx context.Context, slug string) (*Event, error)
}
