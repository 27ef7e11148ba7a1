package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"eventdesk/internal/domain"
	"eventdesk/internal/form"
)

const maxHeroImageBytes = 5 << 20

var heroImageContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	images         domain.ImageStore
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories and
// image store.
func NewEventService(eventRepo domain.EventRepository, userRepo domain.UserRepository, images domain.ImageStore, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		images:         images,
		contextTimeout: timeout,
	}
}

// caller loads the acting staff user. An unknown caller is a permission
// failure, not a missing resource.
func (s *eventService) caller(ctx context.Context, callerID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get caller: %w", err)
	}
	return user, nil
}

func canManage(u *domain.User, eventID string) bool {
	return u.IsAdministrator() || u.IsAssignedTo(eventID)
}

func (s *eventService) Create(ctx context.Context, callerID string, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdministrator() {
		return nil, domain.ErrForbidden
	}

	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return nil, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if !domain.ValidVenue(event.Location.Venue) {
		return nil, fmt.Errorf("%w: unknown venue %q", domain.ErrInvalidInput, event.Location.Venue)
	}
	if verr := form.ValidateSchema(event.FormFields); verr != nil {
		return nil, verr
	}
	if event.FormFields == nil {
		event.FormFields = []domain.FormField{}
	}

	source := event.Slug
	if source == "" {
		source = event.Name
	}
	event.Slug = slug.Make(source)
	if event.Slug == "" {
		return nil, fmt.Errorf("%w: cannot derive a slug from %q", domain.ErrInvalidInput, source)
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, callerID, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, eventID) {
		return nil, domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, callerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var events []*domain.Event
	if caller.IsAdministrator() {
		events, err = s.eventRepo.List(ctx)
	} else {
		events, err = s.eventRepo.ListByIDs(ctx, caller.AssignedEventIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) Update(ctx context.Context, callerID, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, eventID) {
		return nil, domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
		}
		event.Name = name
	}
	if upd.Slug != nil {
		newSlug := slug.Make(*upd.Slug)
		if newSlug == "" {
			return nil, fmt.Errorf("%w: cannot derive a slug from %q", domain.ErrInvalidInput, *upd.Slug)
		}
		event.Slug = newSlug
	}
	if upd.Date != nil {
		event.Date = *upd.Date
	}
	if upd.Location != nil {
		if !domain.ValidVenue(upd.Location.Venue) {
			return nil, fmt.Errorf("%w: unknown venue %q", domain.ErrInvalidInput, upd.Location.Venue)
		}
		event.Location = *upd.Location
	}
	if upd.Description != nil {
		event.Description = *upd.Description
	}
	if upd.FormFields != nil {
		fields := *upd.FormFields
		if verr := form.ValidateSchema(fields); verr != nil {
			return nil, verr
		}
		if fields == nil {
			fields = []domain.FormField{}
		}
		event.FormFields = fields
	}
	if upd.ConsentText != nil {
		event.ConsentText = *upd.ConsentText
	}
	if upd.IsActive != nil {
		event.IsActive = *upd.IsActive
	}
	if upd.ThemeColor != nil {
		event.ThemeColor = *upd.ThemeColor
	}

	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, callerID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdministrator() {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) SetHeroImage(ctx context.Context, callerID, eventID, filename, contentType string, data []byte) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, eventID) {
		return nil, domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	ext, ok := heroImageContentTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, contentType)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", domain.ErrInvalidInput)
	}
	if len(data) > maxHeroImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, maxHeroImageBytes)
	}
	if fromName := strings.ToLower(filepath.Ext(filename)); fromName != "" {
		ext = fromName
	}

	key := fmt.Sprintf("events/%s/hero%s", event.ID, ext)
	if _, err := s.images.Put(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("store hero image: %w", err)
	}

	event.HeroImageKey = key
	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetPublicBySlug(ctx context.Context, eventSlug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	// Inactive events are not publicly visible.
	if !event.IsActive {
		return nil, domain.ErrNotFound
	}
	return event, nil
}
