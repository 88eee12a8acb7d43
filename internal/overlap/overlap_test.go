package overlap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func busy(subject string, start, end time.Time) *appointment.Appointment {
	return &appointment.Appointment{
		Subject:    subject,
		StartTime:  start,
		EndTime:    end,
		ShowAs:     appointment.ShowAsBusy,
		Importance: appointment.ImportanceNormal,
	}
}

func TestDetectPairwise(t *testing.T) {
	a := busy("A", at(10, 0), at(11, 0))
	b := busy("B", at(10, 30), at(11, 30))
	c := busy("C", at(14, 0), at(15, 0))

	groups := Detect([]*appointment.Appointment{a, b, c})

	require.Len(t, groups, 1)
	require.Equal(t, Group{a, b}, groups[0])
}

func TestDetectBackToBackDoNotOverlap(t *testing.T) {
	a := busy("A", at(10, 0), at(11, 0))
	b := busy("B", at(11, 0), at(12, 0))

	require.Empty(t, Detect([]*appointment.Appointment{a, b}))
}

func TestDetectTransitiveChain(t *testing.T) {
	// A overlaps B, B overlaps C, A does not overlap C: one group of three.
	a := busy("A", at(10, 0), at(11, 0))
	b := busy("B", at(10, 45), at(12, 0))
	c := busy("C", at(11, 30), at(12, 30))

	groups := Detect([]*appointment.Appointment{a, b, c})

	require.Len(t, groups, 1)
	require.Len(t, groups[0], 3)
	require.False(t, a.Overlaps(c))
}

func TestDetectPartition(t *testing.T) {
	appts := []*appointment.Appointment{
		busy("A", at(9, 0), at(10, 0)),
		busy("B", at(9, 30), at(10, 30)),
		busy("C", at(11, 0), at(12, 0)),
		busy("D", at(13, 0), at(14, 0)),
		busy("E", at(13, 30), at(14, 30)),
		busy("F", at(14, 15), at(15, 0)),
	}

	groups := Detect(appts)

	// Every appointment appears at most once across all groups.
	seen := make(map[*appointment.Appointment]int)
	grouped := 0
	for _, g := range groups {
		require.GreaterOrEqual(t, len(g), 2)
		for _, a := range g {
			seen[a]++
			grouped++
		}
	}
	for a, n := range seen {
		require.Equal(t, 1, n, "appointment %q in %d groups", a.Subject, n)
	}
	// A+B and D+E+F group; C stands alone.
	require.Len(t, groups, 2)
	require.Equal(t, 5, grouped)
}

func TestResolveImportance(t *testing.T) {
	high := busy("high", at(10, 0), at(11, 0))
	high.Importance = appointment.ImportanceHigh
	normal := busy("normal", at(10, 0), at(11, 0))
	low := busy("low", at(10, 0), at(11, 0))
	low.Importance = appointment.ImportanceLow

	res := Resolve(Group{low, normal, high})

	require.True(t, res.IsResolved())
	require.Equal(t, []*appointment.Appointment{high}, res.Resolved)
	require.ElementsMatch(t, []*appointment.Appointment{low, normal}, res.Filtered)
	require.Empty(t, res.Conflicts)
	require.NotEmpty(t, res.Log)
}

func TestResolveFreeFilteredFirst(t *testing.T) {
	free := busy("free block", at(10, 0), at(11, 0))
	free.ShowAs = appointment.ShowAsFree
	free.Importance = appointment.ImportanceHigh // still loses: free never competes
	meeting := busy("meeting", at(10, 0), at(11, 0))

	res := Resolve(Group{free, meeting})

	require.True(t, res.IsResolved())
	require.Same(t, meeting, res.Resolved[0])
	require.Equal(t, []*appointment.Appointment{free}, res.Filtered)
}

func TestResolveConfirmedBeatsTentative(t *testing.T) {
	tentative := busy("tentative", at(10, 0), at(11, 0))
	tentative.ShowAs = appointment.ShowAsTentative
	tentative.Importance = appointment.ImportanceHigh
	confirmed := busy("confirmed", at(10, 0), at(11, 0))

	res := Resolve(Group{tentative, confirmed})

	require.True(t, res.IsResolved())
	require.Same(t, confirmed, res.Resolved[0])
}

func TestResolveTieBecomesConflict(t *testing.T) {
	a := busy("A", at(10, 0), at(11, 0))
	b := busy("B", at(10, 0), at(11, 0))

	res := Resolve(Group{a, b})

	require.False(t, res.IsResolved())
	require.Empty(t, res.Resolved)
	require.ElementsMatch(t, []*appointment.Appointment{a, b}, res.Conflicts)
}

func TestResolveLogsEveryRule(t *testing.T) {
	a := busy("A", at(10, 0), at(11, 0))
	b := busy("B", at(10, 0), at(11, 0))
	b.Importance = appointment.ImportanceLow

	res := Resolve(Group{a, b})

	require.True(t, res.IsResolved())
	// Rules log even when they eliminate nothing.
	require.Contains(t, res.Log[0], "free-status filter")
	require.Contains(t, res.Log[0], "removed 0")
}
