package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventdesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMailer records the last Send call.
type fakeMailer struct {
	to      string
	subject string
	html    string
	text    string
	sendErr error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.to = to
	f.subject = subject
	f.html = html
	f.text = text
	return nil
}

// fakeRenderer records the template name and data it was asked to render.
type fakeRenderer struct {
	name      string
	data      any
	renderErr error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	if f.renderErr != nil {
		return "", "", "", f.renderErr
	}
	f.name = templateName
	f.data = data
	return "subject", "<p>html</p>", "text", nil
}

func confirmationData() *domain.RegistrationConfirmationData {
	return &domain.RegistrationConfirmationData{
		Email:      "dana@example.com",
		Name:       "Dana",
		EventName:  "GoConf 2026",
		EventDate:  time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC),
		TicketCode: "ABCDEFGHJK",
		QRDataURL:  "data:image/png;base64,ZmFrZQ==",
	}
}

func TestEmailService_SendRegistrationConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("renders the template and sends", func(t *testing.T) {
		mailer := &fakeMailer{}
		renderer := &fakeRenderer{}
		svc := NewEmailService(mailer, renderer)

		require.NoError(t, svc.SendRegistrationConfirmation(ctx, confirmationData()))

		assert.Equal(t, "registration_confirmation", renderer.name)
		view, ok := renderer.data.(registrationConfirmationView)
		require.True(t, ok)
		assert.Equal(t, "Dana", view.Name)
		assert.Equal(t, "GoConf 2026", view.EventName)
		assert.Equal(t, "Saturday, 12 September 2026", view.EventDate)
		assert.Equal(t, "ABCDEFGHJK", view.TicketCode)

		assert.Equal(t, "dana@example.com", mailer.to)
		assert.Equal(t, "subject", mailer.subject)
		assert.Equal(t, "<p>html</p>", mailer.html)
		assert.Equal(t, "text", mailer.text)
	})

	t.Run("missing name falls back to a greeting", func(t *testing.T) {
		renderer := &fakeRenderer{}
		svc := NewEmailService(&fakeMailer{}, renderer)

		data := confirmationData()
		data.Name = ""
		require.NoError(t, svc.SendRegistrationConfirmation(ctx, data))

		view := renderer.data.(registrationConfirmationView)
		assert.Equal(t, "there", view.Name)
	})

	t.Run("nil data", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{})
		require.Error(t, svc.SendRegistrationConfirmation(ctx, nil))
	})

	t.Run("render failure", func(t *testing.T) {
		renderer := &fakeRenderer{renderErr: errors.New("missing template")}
		svc := NewEmailService(&fakeMailer{}, renderer)

		err := svc.SendRegistrationConfirmation(ctx, confirmationData())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "render")
	})

	t.Run("send failure", func(t *testing.T) {
		mailer := &fakeMailer{sendErr: errors.New("ses down")}
		svc := NewEmailService(mailer, &fakeRenderer{})

		err := svc.SendRegistrationConfirmation(ctx, confirmationData())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "send")
	})
}
