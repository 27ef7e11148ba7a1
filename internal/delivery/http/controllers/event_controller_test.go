package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createErr           error
	createResult        *domain.Event
	lastCreateCallerID  string
	lastCreateEvent     *domain.Event
	getByIDErr          error
	getByIDResult       *domain.Event
	listErr             error
	listResult          []*domain.Event
	updateErr           error
	updateResult        *domain.Event
	lastUpdateCallerID  string
	lastUpdateEventID   string
	lastUpdate          domain.EventUpdate
	deleteErr           error
	lastDeleteCallerID  string
	lastDeleteEventID   string
	setHeroErr          error
	setHeroResult       *domain.Event
	lastHeroEventID     string
	lastHeroFilename    string
	lastHeroContentType string
	lastHeroData        []byte
	publicErr           error
	publicResult        *domain.Event
	lastPublicSlug      string
}

func (f *fakeEventService) Create(ctx context.Context, callerID string, event *domain.Event) (*domain.Event, error) {
	f.lastCreateCallerID = callerID
	f.lastCreateEvent = event
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeEventService) GetByID(ctx context.Context, callerID, eventID string) (*domain.Event, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDResult, nil
}

func (f *fakeEventService) List(ctx context.Context, callerID string) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeEventService) Update(ctx context.Context, callerID, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastUpdateCallerID = callerID
	f.lastUpdateEventID = eventID
	f.lastUpdate = upd
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateResult, nil
}

func (f *fakeEventService) Delete(ctx context.Context, callerID, eventID string) error {
	f.lastDeleteCallerID = callerID
	f.lastDeleteEventID = eventID
	return f.deleteErr
}

func (f *fakeEventService) SetHeroImage(ctx context.Context, callerID, eventID, filename, contentType string, data []byte) (*domain.Event, error) {
	f.lastHeroEventID = eventID
	f.lastHeroFilename = filename
	f.lastHeroContentType = contentType
	f.lastHeroData = data
	if f.setHeroErr != nil {
		return nil, f.setHeroErr
	}
	return f.setHeroResult, nil
}

func (f *fakeEventService) GetPublicBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.lastPublicSlug = slug
	if f.publicErr != nil {
		return nil, f.publicErr
	}
	return f.publicResult, nil
}

func eventFixture() *domain.Event {
	return &domain.Event{
		ID:   "ev-1",
		Name: "GoConf 2026",
		Slug: "goconf-2026",
		Date: time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC),
		Location: domain.Location{
			Venue:   domain.VenueOnsite,
			Address: "1 Main St",
		},
		Description: "A day of talks.",
		FormFields: []domain.FormField{
			{Name: "name", Label: "Full name", Type: domain.FieldText, Required: true},
			{Name: "email", Label: "Email", Type: domain.FieldEmail, Required: true},
		},
		ConsentText: "I agree.",
		IsActive:    true,
		ThemeColor:  "#2a9d8f",
	}
}

func TestEventController_CreateEvent(t *testing.T) {
	organizer := &domain.Principal{UserID: "admin-1"}

	tests := []struct {
		name           string
		principal      *domain.Principal
		body           string
		fakeErr        error
		wantStatus     int
		wantBodyCode   string
		wantBodySubstr string
		checkCall      func(t *testing.T, f *fakeEventService)
	}{
		{
			name:       "success",
			principal:  organizer,
			body:       `{"name":"GoConf 2026","date":"2026-09-12T09:00:00Z","location":{"venue":"onsite","address":"1 Main St"},"form_fields":[{"name":"email","label":"Email","type":"email","required":true}]}`,
			wantStatus: http.StatusCreated,
			checkCall: func(t *testing.T, f *fakeEventService) {
				assert.Equal(t, "admin-1", f.lastCreateCallerID)
				require.NotNil(t, f.lastCreateEvent)
				assert.Equal(t, "GoConf 2026", f.lastCreateEvent.Name)
				assert.Equal(t, domain.VenueOnsite, f.lastCreateEvent.Location.Venue)
				assert.True(t, f.lastCreateEvent.IsActive, "events default to active")
				require.Len(t, f.lastCreateEvent.FormFields, 1)
				assert.Equal(t, domain.FieldEmail, f.lastCreateEvent.FormFields[0].Type)
			},
		},
		{
			name:       "explicitly inactive",
			principal:  organizer,
			body:       `{"name":"Draft","location":{"venue":"online"},"is_active":false}`,
			wantStatus: http.StatusCreated,
			checkCall: func(t *testing.T, f *fakeEventService) {
				require.NotNil(t, f.lastCreateEvent)
				assert.False(t, f.lastCreateEvent.IsActive)
			},
		},
		{
			name:         "no session",
			body:         `{"name":"GoConf","location":{"venue":"onsite"}}`,
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:           "missing name",
			principal:      organizer,
			body:           `{"location":{"venue":"onsite"}}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "name",
		},
		{
			name:           "unknown venue",
			principal:      organizer,
			body:           `{"name":"GoConf","location":{"venue":"metaverse"}}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "venue",
		},
		{
			name:         "organizer forbidden",
			principal:    &domain.Principal{UserID: "org-1"},
			body:         `{"name":"GoConf","location":{"venue":"onsite"}}`,
			fakeErr:      domain.ErrForbidden,
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeForbidden,
		},
		{
			name:         "duplicate slug",
			principal:    organizer,
			body:         `{"name":"GoConf 2026","location":{"venue":"onsite"}}`,
			fakeErr:      domain.ErrDuplicateSlug,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:      "form schema errors carry fields",
			principal: organizer,
			body:      `{"name":"GoConf","location":{"venue":"onsite"},"form_fields":[{"name":"shirt","label":"Shirt","type":"radio"}]}`,
			fakeErr: &domain.ValidationError{Fields: []domain.FieldError{
				{Field: "shirt", Code: domain.FieldErrInvalidSchema, Message: "radio fields need options"},
			}},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{createResult: eventFixture(), createErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.principal != nil {
				req = req.WithContext(middleware.SetPrincipal(req.Context(), tt.principal))
			}
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				if tt.checkCall != nil {
					tt.checkCall(t, fake)
				}
				return
			}
			require.NotNil(t, envelope.Error)
			if tt.wantBodyCode != "" {
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
			if tt.wantBodySubstr != "" {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
			if verr, ok := tt.fakeErr.(*domain.ValidationError); ok {
				require.Len(t, envelope.Error.Fields, len(verr.Fields))
				assert.Equal(t, "shirt", envelope.Error.Fields[0].Field)
				assert.Equal(t, domain.FieldErrInvalidSchema, envelope.Error.Fields[0].Code)
			}
		})
	}
}

func TestEventController_ListEvents(t *testing.T) {
	t.Run("returns visible events", func(t *testing.T) {
		fake := &fakeEventService{listResult: []*domain.Event{eventFixture()}}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodGet, "http://test/events", nil)
		req = req.WithContext(middleware.SetPrincipal(req.Context(), &domain.Principal{UserID: "admin-1"}))
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.Nil(t, envelope.Error)
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var events []*domain.Event
		require.NoError(t, json.Unmarshal(dataBytes, &events))
		require.Len(t, events, 1)
		assert.Equal(t, "goconf-2026", events[0].Slug)
	})

	t.Run("nil slice becomes empty array", func(t *testing.T) {
		fake := &fakeEventService{listResult: nil}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodGet, "http://test/events", nil)
		req = req.WithContext(middleware.SetPrincipal(req.Context(), &domain.Principal{UserID: "org-1"}))
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"data":[]`)
	})

	t.Run("no session", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		req := httptest.NewRequest(http.MethodGet, "http://test/events", nil)
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestEventController_GetEvent(t *testing.T) {
	tests := []struct {
		name         string
		eventID      string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{name: "success", eventID: "ev-1", wantStatus: http.StatusOK},
		{name: "missing eventID", eventID: "", wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeBadRequest},
		{name: "not found", eventID: "ev-404", fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantBodyCode: helpers.ErrCodeNotFound},
		{name: "not assigned", eventID: "ev-1", fakeErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantBodyCode: helpers.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{getByIDResult: eventFixture(), getByIDErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			req = req.WithContext(middleware.SetPrincipal(req.Context(), &domain.Principal{UserID: "org-1"}))
			rr := httptest.NewRecorder()

			ctrl.GetEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var ev domain.Event
				require.NoError(t, json.Unmarshal(dataBytes, &ev))
				assert.Equal(t, "ev-1", ev.ID)
				require.Len(t, ev.FormFields, 2)
				assert.Equal(t, "name", ev.FormFields[0].Name)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestEventController_UpdateEvent(t *testing.T) {
	organizer := &domain.Principal{UserID: "org-1"}

	t.Run("maps fields onto the update", func(t *testing.T) {
		fake := &fakeEventService{updateResult: eventFixture()}
		ctrl := NewEventController(testLogger, fake)

		body := `{"description":"New copy","is_active":false,"theme_color":"#e76f51","location":{"venue":"hybrid","address":"2 Side St"}}`
		req := httptest.NewRequest(http.MethodPatch, "http://test/events/ev-1", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), organizer))
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "org-1", fake.lastUpdateCallerID)
		assert.Equal(t, "ev-1", fake.lastUpdateEventID)
		require.NotNil(t, fake.lastUpdate.Description)
		assert.Equal(t, "New copy", *fake.lastUpdate.Description)
		require.NotNil(t, fake.lastUpdate.IsActive)
		assert.False(t, *fake.lastUpdate.IsActive)
		require.NotNil(t, fake.lastUpdate.Location)
		assert.Equal(t, domain.VenueHybrid, fake.lastUpdate.Location.Venue)
		assert.Nil(t, fake.lastUpdate.Name)
		assert.Nil(t, fake.lastUpdate.FormFields)
	})

	t.Run("replaces the form schema", func(t *testing.T) {
		fake := &fakeEventService{updateResult: eventFixture()}
		ctrl := NewEventController(testLogger, fake)

		body := `{"form_fields":[{"name":"shirt","label":"Shirt size","type":"radio","required":true,"options":["S","M","L"]}]}`
		req := httptest.NewRequest(http.MethodPatch, "http://test/events/ev-1", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), organizer))
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, fake.lastUpdate.FormFields)
		fields := *fake.lastUpdate.FormFields
		require.Len(t, fields, 1)
		assert.Equal(t, domain.FieldRadio, fields[0].Type)
		assert.Equal(t, []string{"S", "M", "L"}, fields[0].Options)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		fake := &fakeEventService{updateErr: domain.ErrDuplicateSlug}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodPatch, "http://test/events/ev-1", bytes.NewBufferString(`{"slug":"taken"}`))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), organizer))
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("not assigned", func(t *testing.T) {
		fake := &fakeEventService{updateErr: domain.ErrForbidden}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodPatch, "http://test/events/ev-9", bytes.NewBufferString(`{"description":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("eventID", "ev-9")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), organizer))
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestEventController_DeleteEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeEventService{}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodDelete, "http://test/events/ev-1", nil)
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), &domain.Principal{UserID: "admin-1"}))
		rr := httptest.NewRecorder()

		ctrl.DeleteEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "admin-1", fake.lastDeleteCallerID)
		assert.Equal(t, "ev-1", fake.lastDeleteEventID)
		assert.Contains(t, rr.Body.String(), `"status":"deleted"`)
	})

	t.Run("organizer forbidden", func(t *testing.T) {
		fake := &fakeEventService{deleteErr: domain.ErrForbidden}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodDelete, "http://test/events/ev-1", nil)
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), &domain.Principal{UserID: "org-1"}))
		rr := httptest.NewRecorder()

		ctrl.DeleteEvent(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
	})
}

// heroUploadRequest builds a multipart request with one file part named "image".
func heroUploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "http://test/events/ev-1/hero-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestEventController_UploadHeroImage(t *testing.T) {
	organizer := &domain.Principal{UserID: "org-1"}
	pngData := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

	t.Run("passes file through to the service", func(t *testing.T) {
		fake := &fakeEventService{setHeroResult: eventFixture()}
		ctrl := NewEventController(testLogger, fake)

		req := heroUploadRequest(t, "hero.png", "image/png", pngData)
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), organizer))
		rr := httptest.NewRecorder()

		ctrl.UploadHeroImage(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ev-1", fake.lastHeroEventID)
		assert.Equal(t, "hero.png", fake.lastHeroFilename)
		assert.Equal(t, "image/png", fake.lastHeroContentType)
		assert.Equal(t, pngData, fake.lastHeroData)
	})

	t.Run("missing file part", func(t *testing.T) {
		fake := &fakeEventService{}
		ctrl := NewEventController(testLogger, fake)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("other", "value"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "http://test/events/ev-1/hero-image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), organizer))
		rr := httptest.NewRecorder()

		ctrl.UploadHeroImage(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		fake := &fakeEventService{}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodPost, "http://test/events/ev-1/hero-image", bytes.NewBufferString(`{"image":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), organizer))
		rr := httptest.NewRecorder()

		ctrl.UploadHeroImage(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unsupported type rejected by service", func(t *testing.T) {
		fake := &fakeEventService{setHeroErr: domain.ErrInvalidInput}
		ctrl := NewEventController(testLogger, fake)

		req := heroUploadRequest(t, "hero.gif", "image/gif", []byte("GIF89a"))
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetPrincipal(req.Context(), organizer))
		rr := httptest.NewRecorder()

		ctrl.UploadHeroImage(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEventController_GetPublicEvent(t *testing.T) {
	t.Run("returns the public shape", func(t *testing.T) {
		fake := &fakeEventService{publicResult: eventFixture()}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodGet, "http://test/public/events/goconf-2026", nil)
		req.SetPathValue("slug", "goconf-2026")
		rr := httptest.NewRecorder()

		ctrl.GetPublicEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "goconf-2026", fake.lastPublicSlug)

		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.Nil(t, envelope.Error)
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var resp PublicEventResponse
		require.NoError(t, json.Unmarshal(dataBytes, &resp))
		assert.Equal(t, "GoConf 2026", resp.Name)
		assert.Equal(t, "#2a9d8f", resp.ThemeColor)
		require.Len(t, resp.FormFields, 2)

		// Internal fields must not leak into the public payload.
		assert.NotContains(t, rr.Body.String(), `"is_active"`)
		assert.NotContains(t, rr.Body.String(), `"created_at"`)
	})

	t.Run("inactive or unknown slug is 404", func(t *testing.T) {
		fake := &fakeEventService{publicErr: domain.ErrNotFound}
		ctrl := NewEventController(testLogger, fake)

		req := httptest.NewRequest(http.MethodGet, "http://test/public/events/hidden", nil)
		req.SetPathValue("slug", "hidden")
		rr := httptest.NewRecorder()

		ctrl.GetPublicEvent(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}
