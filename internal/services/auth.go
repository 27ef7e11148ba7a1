package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/domain"
)

type authService struct {
	userRepo       domain.UserRepository
	sessions       domain.SessionStore
	hasher         domain.PasswordHasher
	sessionTTL     time.Duration
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService backed by the given user repository
// and session store.
func NewAuthService(userRepo domain.UserRepository, sessions domain.SessionStore, hasher domain.PasswordHasher, sessionTTL, timeout time.Duration) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		sessions:       sessions,
		hasher:         hasher,
		sessionTTL:     sessionTTL,
		contextTimeout: timeout,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get user by email: %w", err)
	}
	// Accounts created by an administrator have no password until one is set.
	if user.PasswordHash == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	return session, user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
