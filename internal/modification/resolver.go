// Package modification merges modifier appointments (Extended, Shortened,
// Early Start, Late Start) into the appointments they adjust. A modifier is
// a short calendar entry whose subject signals a time change to an adjacent
// appointment with the same customer category.
package modification

import (
	"strings"
	"time"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/category"
)

type Type string

const (
	TypeExtension  Type = "extension"
	TypeShortened  Type = "shortened"
	TypeEarlyStart Type = "early_start"
	TypeLateStart  Type = "late_start"
)

// minDuration is the floor applied when a shortening or late start would
// otherwise produce a zero or negative duration.
const minDuration = time.Minute

// DetectType classifies a subject as a modifier. "Extended" must match the
// whole subject; the others match as substrings. Checked in this order,
// first match wins.
func DetectType(subject string) (Type, bool) {
	s := strings.ToLower(strings.TrimSpace(subject))
	switch {
	case s == "extended":
		return TypeExtension, true
	case strings.Contains(s, "shortened"):
		return TypeShortened, true
	case strings.Contains(s, "early start"):
		return TypeEarlyStart, true
	case strings.Contains(s, "late start"):
		return TypeLateStart, true
	}
	return "", false
}

// Match pairs a modifier with the appointment it was applied to.
type Match struct {
	Modifier *appointment.Appointment
	Original *appointment.Appointment
	Type     Type
}

// Result is the outcome of Process. Appointments holds every
// non-modifier appointment, replaced by its merged copy where modifiers
// applied, in input order. Orphaned lists modifiers that matched nothing
// and were dropped.
type Result struct {
	Appointments []*appointment.Appointment
	Merged       []Match
	Orphaned     []*appointment.Appointment
}

// Process partitions appts into modifiers and originals, matches each
// modifier to an original, and applies the time adjustments cumulatively on
// a working copy of the original. Modifiers never appear in the output;
// unmatched modifiers are dropped.
func Process(appts []*appointment.Appointment) Result {
	var (
		originals []*appointment.Appointment
		modifiers []*appointment.Appointment
		modTypes  []Type
	)

	for _, a := range appts {
		if t, ok := DetectType(a.Subject); ok {
			modifiers = append(modifiers, a)
			modTypes = append(modTypes, t)
			continue
		}
		originals = append(originals, a)
	}

	// Working copies, keyed by position in originals. Matching runs against
	// the working copy once one exists so that chained modifiers (an
	// extension of an extension) still find their appointment.
	working := make(map[int]*appointment.Appointment)
	current := func(i int) *appointment.Appointment {
		if w, ok := working[i]; ok {
			return w
		}
		return originals[i]
	}

	var result Result

	for mi, mod := range modifiers {
		modType := modTypes[mi]

		matched := -1
		for i := range originals {
			if qualifies(modType, mod, current(i)) {
				matched = i
				break
			}
		}
		if matched < 0 {
			result.Orphaned = append(result.Orphaned, mod)
			continue
		}

		work, ok := working[matched]
		if !ok {
			work = originals[matched].Clone()
			working[matched] = work
		}
		merge(modType, work, mod)

		result.Merged = append(result.Merged, Match{
			Modifier: mod,
			Original: originals[matched],
			Type:     modType,
		})
	}

	result.Appointments = make([]*appointment.Appointment, len(originals))
	for i, a := range originals {
		if w, ok := working[i]; ok {
			result.Appointments[i] = w
		} else {
			result.Appointments[i] = a
		}
	}

	return result
}

// qualifies checks the time-adjacency rule for the modifier type plus the
// category match. First qualifying candidate in input order wins, so the
// outcome is deterministic but order-dependent.
func qualifies(t Type, mod, candidate *appointment.Appointment) bool {
	if !sameCustomer(mod, candidate) {
		return false
	}

	switch t {
	case TypeExtension:
		return candidate.EndTime.Equal(mod.StartTime)
	case TypeShortened:
		// Modifier covers the tail of the candidate.
		return mod.StartTime.Before(candidate.EndTime) && !candidate.EndTime.After(mod.EndTime)
	case TypeEarlyStart:
		return mod.EndTime.Equal(candidate.StartTime)
	case TypeLateStart:
		return mod.StartTime.Equal(candidate.StartTime) && !mod.EndTime.After(candidate.EndTime)
	}
	return false
}

// sameCustomer reports whether the two appointments denote the same
// customer, or both carry no categories at all. A category mismatch
// disqualifies a pairing even when the timing lines up.
func sameCustomer(a, b *appointment.Appointment) bool {
	if len(a.Categories) == 0 && len(b.Categories) == 0 {
		return true
	}

	ia := category.Extract(a)
	ib := category.Extract(b)
	if !ia.IsValid || !ib.IsValid {
		return false
	}
	return strings.EqualFold(ia.Customer, ib.Customer)
}

func merge(t Type, work, mod *appointment.Appointment) {
	switch t {
	case TypeExtension:
		work.EndTime = mod.EndTime
	case TypeShortened:
		if !mod.StartTime.After(work.StartTime) {
			work.EndTime = work.StartTime.Add(minDuration)
		} else {
			work.EndTime = mod.StartTime
		}
	case TypeEarlyStart:
		work.StartTime = mod.StartTime
	case TypeLateStart:
		if !mod.EndTime.Before(work.EndTime) {
			work.StartTime = work.EndTime.Add(-minDuration)
		} else {
			work.StartTime = mod.EndTime
		}
	}
}
