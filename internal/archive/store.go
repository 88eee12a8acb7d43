package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
)

// StoreSource reads appointments from the local Postgres store.
type StoreSource struct {
	repo appointment.Repository
}

func NewStoreSource(repo appointment.Repository) *StoreSource {
	return &StoreSource{repo: repo}
}

func (s *StoreSource) ListAppointments(ctx context.Context, userID, calendar string, start, end time.Time) ([]*appointment.Appointment, error) {
	return s.repo.ListForRange(ctx, userID, calendar, start, end)
}

// StoreSink writes pipeline output into the local store, upserting by
// MSEventID: create when unknown, update when the stored row differs, skip
// when identical. Rows without an MSEventID are always created.
type StoreSink struct {
	repo appointment.Repository
}

func NewStoreSink(repo appointment.Repository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Write(ctx context.Context, userID, calendar string, appts []*appointment.Appointment) (SinkStats, error) {
	var stats SinkStats

	for _, a := range appts {
		if a.MSEventID == "" {
			if _, err := s.repo.Create(ctx, userID, calendar, a); err != nil {
				return stats, fmt.Errorf("create %q: %w", a.Subject, err)
			}
			stats.Created++
			continue
		}

		existing, err := s.repo.FindByMSEventID(ctx, userID, calendar, a.MSEventID)
		if err != nil {
			if !errors.Is(err, appointment.ErrAppointmentNotFound) {
				return stats, fmt.Errorf("lookup %s: %w", a.MSEventID, err)
			}
			if _, err := s.repo.Create(ctx, userID, calendar, a); err != nil {
				return stats, fmt.Errorf("create %q: %w", a.Subject, err)
			}
			stats.Created++
			continue
		}

		if sameRecord(existing, a) {
			stats.Skipped++
			continue
		}

		updated := *a
		updated.ID = existing.ID
		updated.MSEventID = existing.MSEventID
		if _, err := s.repo.Update(ctx, &updated); err != nil {
			return stats, fmt.Errorf("update %s: %w", a.MSEventID, err)
		}
		stats.Updated++
	}

	return stats, nil
}

func sameRecord(a, b *appointment.Appointment) bool {
	if a.Subject != b.Subject ||
		!a.StartTime.Equal(b.StartTime) ||
		!a.EndTime.Equal(b.EndTime) ||
		a.ShowAs != b.ShowAs ||
		a.Importance != b.Importance ||
		a.Sensitivity != b.Sensitivity ||
		len(a.Categories) != len(b.Categories) {
		return false
	}
	for i := range a.Categories {
		if a.Categories[i] != b.Categories[i] {
			return false
		}
	}
	return true
}
