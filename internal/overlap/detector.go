// Package overlap groups appointments whose time intervals intersect and
// resolves each group down to a single winner where the automatic rules
// allow it.
package overlap

import "github.com/Auriora/admin-assistant-sub000/internal/appointment"

// Group is a maximal set of appointments whose [start, end) intervals
// intersect pairwise or transitively, in input order.
type Group []*appointment.Appointment

// Detect computes the connected components of the overlap relation and
// returns the components with at least two members. Appointments that
// overlap nothing appear in no group. Back-to-back appointments (one ends
// exactly when the next starts) do not overlap.
func Detect(appts []*appointment.Appointment) []Group {
	n := len(appts)
	if n < 2 {
		return nil
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if appts[i].Overlaps(appts[j]) {
				union(i, j)
			}
		}
	}

	// Assemble components in input order; group order follows the first
	// member of each component.
	members := make(map[int][]int)
	var roots []int
	for i := 0; i < n; i++ {
		r := find(i)
		if len(members[r]) == 0 {
			roots = append(roots, r)
		}
		members[r] = append(members[r], i)
	}

	var groups []Group
	for _, r := range roots {
		idx := members[r]
		if len(idx) < 2 {
			continue
		}
		g := make(Group, 0, len(idx))
		for _, i := range idx {
			g = append(g, appts[i])
		}
		groups = append(groups, g)
	}

	return groups
}
