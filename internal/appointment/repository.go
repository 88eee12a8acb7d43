package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the archive service.
type Repository interface {
	ListForRange(ctx context.Context, userID, calendar string, start, end time.Time) ([]*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindByMSEventID(ctx context.Context, userID, calendar, msEventID string) (*Appointment, error)

	Create(ctx context.Context, userID, calendar string, a *Appointment) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Audit logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
