package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
)

func TestExpandWeekly(t *testing.T) {
	master := &appointment.Appointment{
		MSEventID: "series-1",
		Subject:   "Weekly Sync",
		StartTime: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), // a Monday
		EndTime:   time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
		Recurrence: &appointment.Recurrence{
			RRule: "FREQ=WEEKLY;BYDAY=MO",
		},
	}

	w := Window{
		Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	out, err := Expand([]*appointment.Appointment{master}, w)
	require.NoError(t, err)
	require.Len(t, out, 5) // Mondays: Mar 2, 9, 16, 23, 30

	for i, inst := range out {
		require.Equal(t, "Weekly Sync", inst.Subject)
		require.Equal(t, 30*time.Minute, inst.Duration())
		require.Nil(t, inst.Recurrence)
		require.Contains(t, inst.MSEventID, "series-1:")
		if i > 0 {
			require.Equal(t, 7*24*time.Hour, inst.StartTime.Sub(out[i-1].StartTime))
		}
	}
}

func TestExpandExceptionDates(t *testing.T) {
	skip := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	master := &appointment.Appointment{
		Subject:   "Weekly Sync",
		StartTime: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		Recurrence: &appointment.Recurrence{
			RRule:          "FREQ=WEEKLY;BYDAY=MO",
			ExceptionDates: []time.Time{skip},
		},
	}

	out, err := Expand([]*appointment.Appointment{master}, Window{
		Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), out[0].StartTime)
}

func TestExpandPassThroughAndWindowing(t *testing.T) {
	inside := &appointment.Appointment{
		Subject:   "One-off",
		StartTime: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
	}
	outside := &appointment.Appointment{
		Subject:   "Old",
		StartTime: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	}

	out, err := Expand([]*appointment.Appointment{inside, outside}, Window{
		Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, []*appointment.Appointment{inside}, out)
}

func TestExpandBadRuleSkipsSeries(t *testing.T) {
	bad := &appointment.Appointment{
		Subject:    "Broken",
		StartTime:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		Recurrence: &appointment.Recurrence{RRule: "FREQ=NOPE"},
	}

	out, err := Expand([]*appointment.Appointment{bad}, Window{
		Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	_, err := Expand(nil, Window{
		Start: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
}
