package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"eventdesk/internal/domain"
)

type pngGenerator struct{}

// NewGenerator returns a QRGenerator that renders PNG QR codes inline as
// data URLs, so tickets can be embedded in emails and pages without
// serving image files.
func NewGenerator() domain.QRGenerator {
	return &pngGenerator{}
}

func (g *pngGenerator) DataURL(content string, size int) (string, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
