package timesheet

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

func busy(subject string, start, end time.Time, categories ...string) *appointment.Appointment {
	return &appointment.Appointment{
		Subject:    subject,
		StartTime:  start,
		EndTime:    end,
		Categories: categories,
		ShowAs:     appointment.ShowAsBusy,
		Importance: appointment.ImportanceNormal,
	}
}

func TestFilterKeepsBusinessAppointments(t *testing.T) {
	billable := busy("Client Meeting", at(9, 0), at(10, 0), "Acme Corp - billable")
	nonBillable := busy("Internal Sync", at(10, 0), at(11, 0), "Globex - non-billable")
	personal := busy("Dentist", at(11, 0), at(12, 0))

	res := Filter([]*appointment.Appointment{billable, nonBillable, personal}, true)

	require.Equal(t, []*appointment.Appointment{billable, nonBillable}, res.Filtered)
	require.Len(t, res.Excluded, 1)
	require.Equal(t, ReasonNotBusiness, res.Excluded[0].Reason)
	require.Equal(t, 1, res.Stats.ByCategory["billable"])
	require.Equal(t, 1, res.Stats.ByCategory["non-billable"])
}

func TestFilterExcludesFree(t *testing.T) {
	free := busy("Focus block", at(9, 0), at(10, 0), "Acme Corp - billable")
	free.ShowAs = appointment.ShowAsFree

	res := Filter([]*appointment.Appointment{free}, true)

	require.Empty(t, res.Filtered)
	require.Equal(t, ReasonFreeStatus, res.Excluded[0].Reason)
	require.Equal(t, 1, res.Stats.ByReason[ReasonFreeStatus])
}

func TestFilterTravelByKeyword(t *testing.T) {
	drive := busy("Drive to Conference", at(8, 0), at(9, 0))

	with := Filter([]*appointment.Appointment{drive}, true)
	require.Equal(t, []*appointment.Appointment{drive}, with.Filtered)
	require.Equal(t, 1, with.Stats.ByCategory["travel"])

	// Same appointment without include_travel is excluded.
	without := Filter([]*appointment.Appointment{drive}, false)
	require.Empty(t, without.Filtered)
	require.Equal(t, ReasonNotBusiness, without.Excluded[0].Reason)
}

func TestFilterTravelCategory(t *testing.T) {
	// An explicit travel category counts as business even without keywords
	// and regardless of include_travel.
	a := busy("Client site", at(8, 0), at(9, 0), "Acme Corp - Travel")

	res := Filter([]*appointment.Appointment{a}, false)
	require.Equal(t, []*appointment.Appointment{a}, res.Filtered)
	require.Equal(t, 1, res.Stats.ByCategory["travel"])
}

func TestFilterResolvesOverlaps(t *testing.T) {
	winner := busy("Board Meeting", at(10, 0), at(11, 0), "Acme Corp - billable")
	winner.Importance = appointment.ImportanceHigh
	loser := busy("Status Call", at(10, 30), at(11, 30), "Globex - billable")

	res := Filter([]*appointment.Appointment{winner, loser}, true)

	require.Equal(t, []*appointment.Appointment{winner}, res.Filtered)
	require.Equal(t, 1, res.Stats.OverlapGroups)
	require.Len(t, res.Resolutions, 1)
	require.Equal(t, ReasonOverlapLost, exclusionReason(t, res, loser))
	require.Empty(t, res.Issues)
}

func TestFilterSurfacesConflicts(t *testing.T) {
	a := busy("A", at(10, 0), at(11, 0), "Acme Corp - billable")
	b := busy("B", at(10, 0), at(11, 0), "Globex - billable")

	res := Filter([]*appointment.Appointment{a, b}, true)

	require.Empty(t, res.Filtered)
	require.Len(t, res.Issues, 1)
	require.Equal(t, ReasonConflict, exclusionReason(t, res, a))
	require.Equal(t, ReasonConflict, exclusionReason(t, res, b))
}

func TestIsTravel(t *testing.T) {
	for _, subject := range []string{
		"Drive to Conference", "Morning commute", "Flight LHR-AMS", "Airport pickup", "taxi home",
	} {
		if !IsTravel(&appointment.Appointment{Subject: subject}) {
			t.Errorf("IsTravel(%q) = false, want true", subject)
		}
	}
	if IsTravel(&appointment.Appointment{Subject: "Quarterly review"}) {
		t.Error("IsTravel matched a non-travel subject")
	}
}

func exclusionReason(t *testing.T, res Result, a *appointment.Appointment) string {
	t.Helper()
	for _, ex := range res.Excluded {
		if ex.Appointment == a {
			return ex.Reason
		}
	}
	t.Fatalf("appointment %q not excluded", a.Subject)
	return ""
}
