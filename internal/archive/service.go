// Package archive runs the appointment reconciliation pipeline for a user
// calendar and writes the result to an archive calendar.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/config"
	"github.com/Auriora/admin-assistant-sub000/internal/modification"
	"github.com/Auriora/admin-assistant-sub000/internal/overlap"
	"github.com/Auriora/admin-assistant-sub000/internal/privacy"
	"github.com/Auriora/admin-assistant-sub000/internal/recurrence"
	redisclient "github.com/Auriora/admin-assistant-sub000/internal/redis"
	"github.com/Auriora/admin-assistant-sub000/internal/timesheet"
)

var (
	ErrArchiveInProgress = errors.New("archive already running for this calendar")
	ErrInvalidWindow     = errors.New("archive window end must be after start")
	ErrMissingUser       = errors.New("user id is required")
)

// Source supplies the appointments to archive for a date range.
type Source interface {
	ListAppointments(ctx context.Context, userID, calendar string, start, end time.Time) ([]*appointment.Appointment, error)
}

// SinkStats reports what a Write actually did; the sink deduplicates by
// MSEventID so repeated runs converge.
type SinkStats struct {
	Created int
	Updated int
	Skipped int
}

// Sink accepts the pipeline's output.
type Sink interface {
	Write(ctx context.Context, userID, calendar string, appts []*appointment.Appointment) (SinkStats, error)
}

type Service struct {
	source Source
	sink   Sink
	repo   appointment.Repository
	locker redisclient.Locker
	cfg    config.Config
}

func NewService(source Source, sink Sink, repo appointment.Repository, locker redisclient.Locker, cfg config.Config) *Service {
	return &Service{
		source: source,
		sink:   sink,
		repo:   repo,
		locker: locker,
		cfg:    cfg,
	}
}

type RunRequest struct {
	UserID          string
	SourceCalendar  string
	ArchiveCalendar string
	Start           time.Time
	End             time.Time
	Timesheet       bool
	IncludeTravel   bool
}

type RunResult struct {
	Fetched           int           `json:"fetched"`
	Expanded          int           `json:"expanded"`
	MergedModifiers   int           `json:"merged_modifiers"`
	OrphanedModifiers int           `json:"orphaned_modifiers"`
	OverlapGroups     int           `json:"overlap_groups"`
	Conflicts         int           `json:"conflicts"`
	NewlyPrivate      int           `json:"newly_private"`
	TimesheetExcluded int           `json:"timesheet_excluded,omitempty"`
	Archived          int           `json:"archived"`
	Created           int           `json:"created"`
	Updated           int           `json:"updated"`
	Skipped           int           `json:"skipped"`
	Issues            []string      `json:"issues,omitempty"`
	ResolutionLog     []string      `json:"resolution_log,omitempty"`
	PrivacyStats      privacy.Stats `json:"privacy_stats"`
}

// Run fetches the window from the source, reconciles it, and writes the
// result to the archive calendar. A distributed lock per (user, calendar)
// ensures a calendar is never archived concurrently; a run that loses the
// lock fails fast with ErrArchiveInProgress instead of waiting.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.UserID == "" {
		return nil, ErrMissingUser
	}
	if !req.End.After(req.Start) {
		return nil, ErrInvalidWindow
	}
	if req.SourceCalendar == "" {
		req.SourceCalendar = "Calendar"
	}
	if req.ArchiveCalendar == "" {
		req.ArchiveCalendar = s.cfg.ArchiveCalendar
	}

	var result *RunResult

	err := s.locker.WithArchiveLock(ctx, req.UserID, req.ArchiveCalendar, func(lockCtx context.Context) error {
		var runErr error
		result, runErr = s.runLocked(lockCtx, req)
		return runErr
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrArchiveInProgress
		}
		return nil, err
	}

	return result, nil
}

func (s *Service) runLocked(ctx context.Context, req RunRequest) (*RunResult, error) {
	s.logEvent(ctx, nil, appointment.EventArchiveRunStarted, map[string]any{
		"user_id":  req.UserID,
		"calendar": req.SourceCalendar,
		"start":    req.Start,
		"end":      req.End,
	})

	raw, err := s.source.ListAppointments(ctx, req.UserID, req.SourceCalendar, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}

	result := &RunResult{Fetched: len(raw)}

	expanded, err := recurrence.Expand(raw, recurrence.Window{Start: req.Start, End: req.End})
	if err != nil {
		return nil, fmt.Errorf("expand recurrences: %w", err)
	}
	result.Expanded = len(expanded)

	// Merge modifier appointments into the entries they adjust.
	merged := modification.Process(expanded)
	result.MergedModifiers = len(merged.Merged)
	result.OrphanedModifiers = len(merged.Orphaned)
	for _, m := range merged.Merged {
		s.logEvent(ctx, idOf(m.Original), appointment.EventModifierMerged, map[string]any{
			"type":    string(m.Type),
			"subject": m.Original.Subject,
		})
	}
	for _, orphan := range merged.Orphaned {
		log.Printf("dropping orphaned modifier %q (%s - %s)", orphan.Subject, orphan.StartTime, orphan.EndTime)
		s.logEvent(ctx, idOf(orphan), appointment.EventModifierOrphaned, map[string]any{
			"subject": orphan.Subject,
		})
	}

	// Resolve overlaps: losers are dropped, unresolved conflicts are kept
	// in the archive but flagged for manual follow-up.
	appts := merged.Appointments
	drop := make(map[*appointment.Appointment]bool)
	groups := overlap.Detect(appts)
	result.OverlapGroups = len(groups)

	for _, g := range groups {
		r := overlap.Resolve(g)
		result.ResolutionLog = append(result.ResolutionLog, r.Log...)
		for _, a := range r.Filtered {
			drop[a] = true
		}
		if !r.IsResolved() {
			result.Conflicts += len(r.Conflicts)
			for _, a := range r.Conflicts {
				s.logEvent(ctx, idOf(a), appointment.EventOverlapConflict, map[string]any{
					"subject": a.Subject,
					"start":   a.StartTime,
				})
			}
			result.Issues = append(result.Issues,
				fmt.Sprintf("overlap between %d appointments could not be resolved automatically", len(r.Conflicts)))
		}
	}

	kept := appts[:0:0]
	for _, a := range appts {
		if !drop[a] {
			kept = append(kept, a)
		}
	}

	// Privacy pass mutates sensitivity in place.
	result.PrivacyStats = privacy.UpdateFlags(kept)
	result.NewlyPrivate = result.PrivacyStats.NewlyMarked
	if result.NewlyPrivate > 0 {
		s.logEvent(ctx, nil, appointment.EventPrivacyMarked, map[string]any{
			"count": result.NewlyPrivate,
		})
	}

	if req.Timesheet {
		ts := timesheet.Filter(kept, req.IncludeTravel)
		result.TimesheetExcluded = ts.Stats.Excluded
		result.Issues = append(result.Issues, ts.Issues...)
		kept = ts.Filtered
	}

	stats, err := s.sink.Write(ctx, req.UserID, req.ArchiveCalendar, kept)
	if err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	result.Archived = len(kept)
	result.Created = stats.Created
	result.Updated = stats.Updated
	result.Skipped = stats.Skipped

	s.logEvent(ctx, nil, appointment.EventArchiveRunCompleted, map[string]any{
		"user_id":   req.UserID,
		"calendar":  req.ArchiveCalendar,
		"archived":  result.Archived,
		"conflicts": result.Conflicts,
	})

	return result, nil
}

func idOf(a *appointment.Appointment) *uuid.UUID {
	if a == nil || a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

func (s *Service) logEvent(ctx context.Context, appointmentID *uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	ev := appointment.EventLog{
		EventType:     eventType,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert archive event %s: %v", eventType, err)
	}
}
