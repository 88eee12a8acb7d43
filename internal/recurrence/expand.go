// Package recurrence expands recurring appointments into concrete
// instances for a date window. It runs before the reconciliation pipeline,
// which only ever sees single appointments.
package recurrence

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
)

// maxOccurrencesPerSeries caps expansion of one series so a malformed or
// unbounded rule cannot blow up an archive run.
const maxOccurrencesPerSeries = 1000

// Window is the half-open [Start, End) range an archive run covers.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) contains(start, end time.Time) bool {
	return start.Before(w.End) && w.Start.Before(end)
}

// Expand replaces every recurring appointment with its concrete occurrences
// inside the window and keeps non-recurring appointments that intersect it.
// Occurrences are clones of the series master with shifted times; their
// MSEventID is suffixed with the occurrence start so sinks can deduplicate.
// A series whose rule fails to parse is logged and skipped rather than
// failing the run.
func Expand(appts []*appointment.Appointment, w Window) ([]*appointment.Appointment, error) {
	if w.End.Before(w.Start) {
		return nil, errors.New("expand: window end before start")
	}

	var out []*appointment.Appointment

	for _, a := range appts {
		if a.Recurrence == nil || a.Recurrence.RRule == "" {
			if w.contains(a.StartTime, a.EndTime) {
				out = append(out, a)
			}
			continue
		}

		occurrences, err := expandSeries(a, w)
		if err != nil {
			log.Printf("skipping series %s (%q): %v", a.MSEventID, a.Subject, err)
			continue
		}
		out = append(out, occurrences...)
	}

	return out, nil
}

func expandSeries(master *appointment.Appointment, w Window) ([]*appointment.Appointment, error) {
	rule, err := rrule.StrToRRule(master.Recurrence.RRule)
	if err != nil {
		return nil, fmt.Errorf("parse rrule: %w", err)
	}
	rule.DTStart(master.StartTime)

	excluded := make(map[time.Time]struct{}, len(master.Recurrence.ExceptionDates))
	for _, ex := range master.Recurrence.ExceptionDates {
		excluded[ex.UTC()] = struct{}{}
	}

	duration := master.Duration()
	starts := rule.Between(w.Start, w.End, true)

	var out []*appointment.Appointment
	for _, start := range starts {
		if len(out) >= maxOccurrencesPerSeries {
			log.Printf("series %s truncated at %d occurrences", master.MSEventID, maxOccurrencesPerSeries)
			break
		}
		if _, skip := excluded[start.UTC()]; skip {
			continue
		}
		// Between is inclusive of the window end; the window is half-open.
		if !start.Before(w.End) {
			continue
		}

		inst := master.Clone()
		inst.StartTime = start
		inst.EndTime = start.Add(duration)
		inst.Recurrence = nil
		if master.MSEventID != "" {
			inst.MSEventID = fmt.Sprintf("%s:%s", master.MSEventID, start.UTC().Format(time.RFC3339))
		}
		out = append(out, inst)
	}

	return out, nil
}
