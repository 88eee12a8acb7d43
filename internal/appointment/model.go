package appointment

import (
	"time"

	"github.com/google/uuid"
)

type ShowAs string

const (
	ShowAsBusy             ShowAs = "busy"
	ShowAsTentative        ShowAs = "tentative"
	ShowAsFree             ShowAs = "free"
	ShowAsOOF              ShowAs = "oof"
	ShowAsWorkingElsewhere ShowAs = "workingElsewhere"
)

type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// Rank orders importance for overlap tie-breaking: high > normal > low.
// Unknown values rank below low so malformed data never wins a conflict.
func (i Importance) Rank() int {
	switch i {
	case ImportanceHigh:
		return 3
	case ImportanceNormal:
		return 2
	case ImportanceLow:
		return 1
	default:
		return 0
	}
}

type Sensitivity string

const (
	SensitivityNormal       Sensitivity = "normal"
	SensitivityPrivate      Sensitivity = "private"
	SensitivityPersonal     Sensitivity = "personal"
	SensitivityConfidential Sensitivity = "confidential"
)

// Recurrence is the recurrence rule carried on a series master. RRule is an
// iCalendar RRULE string; ExceptionDates lists removed occurrence starts.
type Recurrence struct {
	RRule          string
	ExceptionDates []time.Time
}

// Appointment is a single calendar entry as the reconciliation pipeline
// sees it. Categories carries zero or more "Customer - BillingType" strings
// or special category names.
type Appointment struct {
	ID          uuid.UUID
	MSEventID   string
	Subject     string
	StartTime   time.Time
	EndTime     time.Time
	Categories  []string
	ShowAs      ShowAs
	Importance  Importance
	Sensitivity Sensitivity
	Recurrence  *Recurrence
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Appointment) IsPrivate() bool {
	return a.Sensitivity == SensitivityPrivate
}

func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Overlaps reports whether the two half-open intervals [StartTime, EndTime)
// intersect. Back-to-back appointments do not overlap.
func (a *Appointment) Overlaps(b *Appointment) bool {
	return a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime)
}

// Clone returns a deep copy with the identity fields cleared. Merge
// operations work on clones so the stored original is never mutated and the
// sink treats the result as a new row.
func (a *Appointment) Clone() *Appointment {
	c := *a
	c.ID = uuid.Nil
	c.MSEventID = ""
	if a.Categories != nil {
		c.Categories = append([]string(nil), a.Categories...)
	}
	if a.Recurrence != nil {
		rec := *a.Recurrence
		if a.Recurrence.ExceptionDates != nil {
			rec.ExceptionDates = append([]time.Time(nil), a.Recurrence.ExceptionDates...)
		}
		c.Recurrence = &rec
	}
	return &c
}

// Event types recorded in the archive audit log.
const (
	EventArchiveRunStarted   = "ARCHIVE_RUN_STARTED"
	EventArchiveRunCompleted = "ARCHIVE_RUN_COMPLETED"
	EventModifierMerged      = "MODIFIER_MERGED"
	EventModifierOrphaned    = "MODIFIER_ORPHANED"
	EventOverlapConflict     = "OVERLAP_CONFLICT"
	EventPrivacyMarked       = "PRIVACY_MARKED"
)

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
