package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventdesk/internal/domain"
)

type ticketClaims struct {
	jwt.RegisteredClaims
	EventID string `json:"evt"`
}

type jwtTicketSigner struct {
	secret []byte
}

// NewJWTTicketSigner returns a TicketIssuer and TicketVerifier pair backed by
// HS256 JWTs. The registration ID is the subject, the event ID a custom claim.
func NewJWTTicketSigner(secret string) (domain.TicketIssuer, domain.TicketVerifier) {
	s := &jwtTicketSigner{secret: []byte(secret)}
	return s, s
}

func (s *jwtTicketSigner) Issue(registrationID, eventID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := ticketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   registrationID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		EventID: eventID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ticket: %w", err)
	}
	return tokenString, nil
}

func (s *jwtTicketSigner) Verify(token string) (string, string, error) {
	parsed, err := jwt.ParseWithClaims(token, &ticketClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", domain.ErrInvalidTicket, err)
	}
	claims, ok := parsed.Claims.(*ticketClaims)
	if !ok || !parsed.Valid {
		return "", "", domain.ErrInvalidTicket
	}
	if claims.Subject == "" || claims.EventID == "" {
		return "", "", errors.New("ticket is missing registration or event id")
	}
	return claims.Subject, claims.EventID, nil
}
