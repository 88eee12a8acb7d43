// Package privacy marks personal appointments private. An appointment is
// personal when it carries no categories at all; categorized appointments,
// even invalidly categorized ones, are never auto-marked.
package privacy

import (
	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/category"
)

// Apply sets Sensitivity to private on every personal appointment that is
// not already private. It mutates the appointments in place and returns the
// same slice; callers downstream see the updated records without any copy
// bookkeeping. Applying twice is a no-op.
func Apply(appts []*appointment.Appointment) []*appointment.Appointment {
	for _, a := range appts {
		if a.Sensitivity == appointment.SensitivityPrivate {
			continue
		}
		if category.ShouldMarkPrivate(a) {
			a.Sensitivity = appointment.SensitivityPrivate
		}
	}
	return appts
}

// Stats summarizes one privacy pass.
type Stats struct {
	Total          int            `json:"total"`
	AlreadyPrivate int            `json:"already_private"`
	NewlyMarked    int            `json:"newly_marked"`
	Personal       int            `json:"personal"`
	Work           int            `json:"work"`
	BySensitivity  map[string]int `json:"by_sensitivity"`
}

// UpdateFlags runs Apply and reports what changed. The sensitivity
// histogram reflects the state after the pass; a missing sensitivity counts
// as "normal".
func UpdateFlags(appts []*appointment.Appointment) Stats {
	stats := Stats{
		Total:         len(appts),
		BySensitivity: make(map[string]int),
	}

	for _, a := range appts {
		personal := category.ShouldMarkPrivate(a)
		if personal {
			stats.Personal++
		} else {
			stats.Work++
		}

		if a.Sensitivity == appointment.SensitivityPrivate {
			stats.AlreadyPrivate++
		} else if personal {
			a.Sensitivity = appointment.SensitivityPrivate
			stats.NewlyMarked++
		}

		s := a.Sensitivity
		if s == "" {
			s = appointment.SensitivityNormal
		}
		stats.BySensitivity[string(s)]++
	}

	return stats
}
