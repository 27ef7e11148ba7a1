package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Field error codes returned by registration form validation.
const (
	FieldErrMissingRequired = "missing-required"
	FieldErrInvalidFormat   = "invalid-format"
	FieldErrInvalidOption   = "invalid-option"
	FieldErrInvalidSchema   = "invalid-schema"
)

// FieldError describes a single validation failure keyed by field name.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field validation failures. It is data, not
// an exceptional condition: the delivery layer maps it to a 400 response or
// a re-rendered form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Registration is one attendee's submission for an event. Answers holds the
// validated values keyed by form field name.
// swagger:model Registration
type Registration struct {
	ID            string         `json:"id"`
	EventID       string         `json:"event_id"`
	AttendeeEmail string         `json:"attendee_email,omitempty"`
	AttendeeName  string         `json:"attendee_name,omitempty"`
	Answers       map[string]any `json:"answers"`
	TicketCode    string         `json:"ticket_code"`
	CheckedInAt   *time.Time     `json:"checked_in_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// RegistrationResult is what a successful registration returns: the stored
// registration plus the QR ticket rendered for it. QRDataURL is empty when
// ticket rendering failed (the registration itself still succeeded).
type RegistrationResult struct {
	Registration *Registration `json:"registration"`
	QRDataURL    string        `json:"qr_data_url,omitempty"`
}

// RegistrationRepository defines the interface for registration storage.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Registration, int, error)
	SetCheckedIn(ctx context.Context, id string, at time.Time) error
}

// RegistrationService defines the business logic for attendee registration
// and check-in.
type RegistrationService interface {
	// Register validates answers against the event's form schema, stores the
	// registration, and sends the confirmation email best-effort. A
	// *ValidationError is returned when the submission is invalid.
	Register(ctx context.Context, slug string, answers map[string]any) (*RegistrationResult, error)
	ListByEvent(ctx context.Context, callerID, eventID string, params PaginationParams) ([]*Registration, int, error)
	// CheckIn verifies a scanned ticket token and stamps the registration.
	// alreadyCheckedIn is true when the ticket was used before; that is not
	// an error.
	CheckIn(ctx context.Context, ticketToken string) (reg *Registration, alreadyCheckedIn bool, err error)
}
