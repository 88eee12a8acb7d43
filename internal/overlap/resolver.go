package overlap

import (
	"fmt"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
)

// Resolution is the outcome of applying the automatic rules to one group.
// Resolved holds the single winner when the group converged; otherwise the
// tied survivors are returned as Conflicts for manual handling. Filtered
// lists everything the rules eliminated. Log records each rule invocation
// with its elimination count, for the audit trail.
type Resolution struct {
	Resolved  []*appointment.Appointment
	Filtered  []*appointment.Appointment
	Conflicts []*appointment.Appointment
	Log       []string
}

// IsResolved reports whether the group converged to exactly one appointment.
func (r Resolution) IsResolved() bool {
	return len(r.Resolved) == 1
}

// Resolve applies the automatic resolution rules in order: free-status
// filter, confirmed-over-tentative, then highest importance. Each rule
// operates on the survivors of the previous one.
func Resolve(g Group) Resolution {
	var res Resolution

	survivors := make([]*appointment.Appointment, len(g))
	copy(survivors, g)

	// Rule 1: free blocks never compete for a slot.
	survivors = res.eliminate(survivors, "free-status filter",
		func(a *appointment.Appointment) bool {
			return a.ShowAs != appointment.ShowAsFree
		})

	// Rule 2: confirmed appointments beat tentative ones.
	if containsShowAs(survivors, appointment.ShowAsBusy) && containsShowAs(survivors, appointment.ShowAsTentative) {
		survivors = res.eliminate(survivors, "tentative filter",
			func(a *appointment.Appointment) bool {
				return a.ShowAs != appointment.ShowAsTentative
			})
	}

	// Rule 3: highest importance wins.
	if len(survivors) > 1 {
		maxRank := 0
		for _, a := range survivors {
			if r := a.Importance.Rank(); r > maxRank {
				maxRank = r
			}
		}
		survivors = res.eliminate(survivors, "importance tie-break",
			func(a *appointment.Appointment) bool {
				return a.Importance.Rank() == maxRank
			})
	}

	if len(survivors) == 1 {
		res.Resolved = survivors
		res.Log = append(res.Log, fmt.Sprintf("resolved: %q wins the group of %d", survivors[0].Subject, len(g)))
	} else {
		res.Conflicts = survivors
		res.Log = append(res.Log, fmt.Sprintf("unresolved: %d appointments still tied", len(survivors)))
	}

	return res
}

// eliminate keeps the appointments satisfying keep, moves the rest to
// Filtered, and logs the rule with its elimination count.
func (r *Resolution) eliminate(appts []*appointment.Appointment, rule string, keep func(*appointment.Appointment) bool) []*appointment.Appointment {
	kept := appts[:0:0]
	removed := 0
	for _, a := range appts {
		if keep(a) {
			kept = append(kept, a)
			continue
		}
		r.Filtered = append(r.Filtered, a)
		removed++
	}
	r.Log = append(r.Log, fmt.Sprintf("%s: removed %d of %d", rule, removed, len(appts)))
	return kept
}

func containsShowAs(appts []*appointment.Appointment, s appointment.ShowAs) bool {
	for _, a := range appts {
		if a.ShowAs == s {
			return true
		}
	}
	return false
}
