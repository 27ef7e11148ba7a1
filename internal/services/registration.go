package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"eventdesk/internal/domain"
	"eventdesk/internal/form"
)

// Ticket codes avoid ambiguous characters (0/O, 1/I/L) so attendees can read
// them to staff when the QR scan fails.
const (
	ticketCodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	ticketCodeLength   = 10
	qrImageSize        = 256
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	tickets          domain.TicketIssuer
	verifier         domain.TicketVerifier
	qr               domain.QRGenerator
	ticketTTL        time.Duration
	contextTimeout   time.Duration
}

// NewRegistrationService creates a RegistrationService. emailService may be
// nil, in which case no confirmation emails are sent.
func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	tickets domain.TicketIssuer,
	verifier domain.TicketVerifier,
	qr domain.QRGenerator,
	ticketTTL time.Duration,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		tickets:          tickets,
		verifier:         verifier,
		qr:               qr,
		ticketTTL:        ticketTTL,
		contextTimeout:   timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventSlug string, answers map[string]any) (*domain.RegistrationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	if !event.IsActive {
		return nil, domain.ErrNotFound
	}

	values, verr := form.Validate(event.FormFields, answers)
	if verr != nil {
		return nil, verr
	}

	ticketCode, err := gonanoid.Generate(ticketCodeAlphabet, ticketCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate ticket code: %w", err)
	}

	reg := &domain.Registration{
		EventID:       event.ID,
		AttendeeEmail: form.FirstEmail(event.FormFields, values),
		AttendeeName:  form.FirstText(event.FormFields, values),
		Answers:       values,
		TicketCode:    ticketCode,
		CreatedAt:     time.Now(),
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	// Everything past this point is best-effort: the registration is stored,
	// and a broken ticket render or mail provider must not undo that.
	qrDataURL := ""
	ticketToken, err := s.tickets.Issue(reg.ID, event.ID, s.ticketTTL)
	if err != nil {
		log.Printf("[REGISTRATION] Failed to issue ticket for registration %s: %v", reg.ID, err)
	} else {
		qrDataURL, err = s.qr.DataURL(ticketToken, qrImageSize)
		if err != nil {
			log.Printf("[REGISTRATION] Failed to render QR code for registration %s: %v", reg.ID, err)
			qrDataURL = ""
		}
	}

	if s.emailService != nil && reg.AttendeeEmail != "" {
		data := &domain.RegistrationConfirmationData{
			Email:      reg.AttendeeEmail,
			Name:       reg.AttendeeName,
			EventName:  event.Name,
			EventDate:  event.Date,
			TicketCode: reg.TicketCode,
			QRDataURL:  qrDataURL,
		}
		if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
			log.Printf("[REGISTRATION] Failed to send confirmation email to %s: %v", reg.AttendeeEmail, err)
		}
	}

	return &domain.RegistrationResult{Registration: reg, QRDataURL: qrDataURL}, nil
}

func (s *registrationService) ListByEvent(ctx context.Context, callerID, eventID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, 0, domain.ErrForbidden
		}
		return nil, 0, fmt.Errorf("get caller: %w", err)
	}
	if !canManage(caller, eventID) {
		return nil, 0, domain.ErrForbidden
	}

	regs, total, err := s.registrationRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, total, nil
}

func (s *registrationService) CheckIn(ctx context.Context, ticketToken string) (*domain.Registration, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regID, eventID, err := s.verifier.Verify(ticketToken)
	if err != nil {
		return nil, false, err
	}

	reg, err := s.registrationRepo.GetByID(ctx, regID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: registration no longer exists", domain.ErrInvalidTicket)
		}
		return nil, false, fmt.Errorf("get registration: %w", err)
	}
	if reg.EventID != eventID {
		return nil, false, fmt.Errorf("%w: ticket does not match its registration", domain.ErrInvalidTicket)
	}

	if reg.CheckedInAt != nil {
		return reg, true, nil
	}

	now := time.Now()
	if err := s.registrationRepo.SetCheckedIn(ctx, reg.ID, now); err != nil {
		return nil, false, fmt.Errorf("set checked in: %w", err)
	}
	reg.CheckedInAt = &now
	return reg, false, nil
}
