package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, ms_event_id, subject, start_time, end_time, categories,
	show_as, importance, sensitivity, rrule, exception_dates,
	created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a              Appointment
		msEventID      *string
		categories     []string
		rrule          *string
		exceptionDates []time.Time
	)

	err := row.Scan(
		&a.ID,
		&msEventID,
		&a.Subject,
		&a.StartTime,
		&a.EndTime,
		&categories,
		&a.ShowAs,
		&a.Importance,
		&a.Sensitivity,
		&rrule,
		&exceptionDates,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	if msEventID != nil {
		a.MSEventID = *msEventID
	}
	a.Categories = categories
	if rrule != nil && *rrule != "" {
		a.Recurrence = &Recurrence{
			RRule:          *rrule,
			ExceptionDates: exceptionDates,
		}
	}

	return &a, nil
}

func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func recurrenceFields(a *Appointment) (*string, []time.Time) {
	if a.Recurrence == nil {
		return nil, nil
	}
	return nullableStr(a.Recurrence.RRule), a.Recurrence.ExceptionDates
}

// Interface methods

func (r *PgRepository) ListForRange(ctx context.Context, userID, calendar string, start, end time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		  AND calendar = $2
		  AND start_time < $4
		  AND end_time > $3
		ORDER BY start_time, created_at
	`, userID, calendar, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindByMSEventID(ctx context.Context, userID, calendar, msEventID string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		  AND calendar = $2
		  AND ms_event_id = $3
	`, userID, calendar, msEventID)
	return scanAppointment(row)
}

func (r *PgRepository) Create(ctx context.Context, userID, calendar string, a *Appointment) (*Appointment, error) {
	id := uuid.New()
	rrule, exceptions := recurrenceFields(a)

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			id, user_id, calendar, ms_event_id, subject, start_time, end_time,
			categories, show_as, importance, sensitivity, rrule, exception_dates,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, userID, calendar, nullableStr(a.MSEventID), a.Subject, a.StartTime, a.EndTime,
		a.Categories, a.ShowAs, a.Importance, a.Sensitivity, rrule, exceptions)

	return scanAppointment(row)
}

func (r *PgRepository) Update(ctx context.Context, a *Appointment) (*Appointment, error) {
	rrule, exceptions := recurrenceFields(a)

	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET subject = $2,
		    start_time = $3,
		    end_time = $4,
		    categories = $5,
		    show_as = $6,
		    importance = $7,
		    sensitivity = $8,
		    rrule = $9,
		    exception_dates = $10,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, a.ID, a.Subject, a.StartTime, a.EndTime, a.Categories,
		a.ShowAs, a.Importance, a.Sensitivity, rrule, exceptions)

	return scanAppointment(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO archive_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert archive event: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
