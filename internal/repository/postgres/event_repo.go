package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventdesk/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns an EventRepository backed by Postgres. The form
// schema is stored as a JSONB document on the event row.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	fields, err := marshalFormFields(e.FormFields)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (name, slug, date, venue, address, description, hero_image_key,
		                    form_fields, consent_text, is_active, theme_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		e.Name, e.Slug, e.Date, string(e.Location.Venue), e.Location.Address,
		e.Description, e.HeroImageKey, fields, e.ConsentText, e.IsActive, e.ThemeColor,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

const eventColumns = `id, name, slug, date, venue, address, description, hero_image_key,
	form_fields, consent_text, is_active, theme_color, created_at, updated_at`

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, slug))
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	if len(ids) == 0 {
		return []*domain.Event{}, nil
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ANY($1) ORDER BY date DESC`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	fields, err := marshalFormFields(e.FormFields)
	if err != nil {
		return err
	}
	query := `
		UPDATE events
		SET name = $1, slug = $2, date = $3, venue = $4, address = $5, description = $6,
		    hero_image_key = $7, form_fields = $8, consent_text = $9, is_active = $10,
		    theme_color = $11, updated_at = $12
		WHERE id = $13
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Name, e.Slug, e.Date, string(e.Location.Venue), e.Location.Address,
		e.Description, e.HeroImageKey, fields, e.ConsentText, e.IsActive, e.ThemeColor,
		e.UpdatedAt, e.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func marshalFormFields(fields []domain.FormField) ([]byte, error) {
	if fields == nil {
		fields = []domain.FormField{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal form fields: %w", err)
	}
	return raw, nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var venue string
	var raw []byte
	err := row.Scan(
		&e.ID, &e.Name, &e.Slug, &e.Date, &venue, &e.Location.Address,
		&e.Description, &e.HeroImageKey, &raw, &e.ConsentText, &e.IsActive,
		&e.ThemeColor, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Location.Venue = domain.Venue(venue)
	if err := json.Unmarshal(raw, &e.FormFields); err != nil {
		return nil, fmt.Errorf("unmarshal form fields: %w", err)
	}
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var venue string
		var raw []byte
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Slug, &e.Date, &venue, &e.Location.Address,
			&e.Description, &e.HeroImageKey, &raw, &e.ConsentText, &e.IsActive,
			&e.ThemeColor, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.Location.Venue = domain.Venue(venue)
		if err := json.Unmarshal(raw, &e.FormFields); err != nil {
			return nil, fmt.Errorf("unmarshal form fields: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
