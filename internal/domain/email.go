package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationConfirmationData holds data for the registration confirmation
// email. QRDataURL is a data:image/png;base64 URL embedded as the ticket QR
// code; it may be empty when QR rendering failed.
type RegistrationConfirmationData struct {
	Email      string
	Name       string
	EventName  string
	EventDate  time.Time
	TicketCode string
	QRDataURL  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationData) error
}
