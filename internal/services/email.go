package services

import (
	"context"
	"fmt"
	"html/template"
	"log"

	"eventdesk/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// registrationConfirmationView is the template payload. QRDataURL is typed
// template.URL so html/template keeps the data: scheme intact.
type registrationConfirmationView struct {
	Name       string
	EventName  string
	EventDate  string
	TicketCode string
	QRDataURL  template.URL
}

// SendRegistrationConfirmation sends the ticket email using the
// "registration_confirmation" template.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationData) error {
	if data == nil {
		return fmt.Errorf("registration confirmation data is nil")
	}
	name := data.Name
	if name == "" {
		name = "there"
	}
	view := registrationConfirmationView{
		Name:       name,
		EventName:  data.EventName,
		EventDate:  data.EventDate.Format("Monday, 2 January 2006"),
		TicketCode: data.TicketCode,
		QRDataURL:  template.URL(data.QRDataURL),
	}
	subject, htmlBody, textBody, err := s.renderer.Render("registration_confirmation", view)
	if err != nil {
		return fmt.Errorf("failed to render registration_confirmation template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send registration confirmation email: %w", err)
	}
	log.Printf("[EMAIL] Registration confirmation sent to %s", data.Email)
	return nil
}
