package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventdesk/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

// NewRegistrationRepository returns a RegistrationRepository backed by
// Postgres. Validated answers are stored as a JSONB document.
func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	answers, err := json.Marshal(reg.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	query := `
		INSERT INTO registrations (event_id, attendee_email, attendee_name, answers, ticket_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.AttendeeEmail, reg.AttendeeName, answers, reg.TicketCode, reg.CreatedAt,
	).Scan(&reg.ID)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, attendee_email, attendee_name, answers, ticket_code, checked_in_at, created_at
		FROM registrations
		WHERE id = $1
	`
	reg := &domain.Registration{}
	var raw []byte
	var checkedIn sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.EventID, &reg.AttendeeEmail, &reg.AttendeeName,
		&raw, &reg.TicketCode, &checkedIn, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &reg.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if checkedIn.Valid {
		reg.CheckedInAt = &checkedIn.Time
	}
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_id, attendee_email, attendee_name, answers, ticket_code, checked_in_at, created_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		var raw []byte
		var checkedIn sql.NullTime
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.AttendeeEmail, &reg.AttendeeName,
			&raw, &reg.TicketCode, &checkedIn, &reg.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(raw, &reg.Answers); err != nil {
			return nil, 0, fmt.Errorf("unmarshal answers: %w", err)
		}
		if checkedIn.Valid {
			reg.CheckedInAt = &checkedIn.Time
		}
		regs = append(regs, reg)
	}
	return regs, total, rows.Err()
}

func (r *registrationRepository) SetCheckedIn(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE registrations
		SET checked_in_at = $1
		WHERE id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
