package domain

import "time"

// TicketIssuer signs ticket tokens embedded in registration QR codes.
type TicketIssuer interface {
	Issue(registrationID, eventID string, expiry time.Duration) (string, error)
}

// TicketVerifier verifies a scanned ticket token and returns the registration
// and event it was issued for. Invalid or expired tokens return an error.
type TicketVerifier interface {
	Verify(token string) (registrationID, eventID string, err error)
}

// QRGenerator renders content as a QR code PNG and returns it as a
// data:image/png;base64 URL.
type QRGenerator interface {
	DataURL(content string, size int) (string, error)
}
