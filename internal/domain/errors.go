package domain

import "errors"

// Sentinel errors shared across the domain. Repository and service layers
// return these (possibly wrapped); the delivery layer maps them to HTTP
// statuses with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTicket      = errors.New("invalid or expired ticket")
)
