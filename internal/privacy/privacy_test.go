package privacy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
)

func TestApplyMarksPersonalOnly(t *testing.T) {
	personal := &appointment.Appointment{Subject: "Dentist"}
	work := &appointment.Appointment{
		Subject:    "Client Meeting",
		Categories: []string{"Acme Corp - billable"},
	}
	malformed := &appointment.Appointment{
		Subject:    "Planning",
		Categories: []string{"Not A Real Category String"},
	}

	out := Apply([]*appointment.Appointment{personal, work, malformed})

	require.Len(t, out, 3)
	require.Equal(t, appointment.SensitivityPrivate, personal.Sensitivity)
	// Categorized appointments are never auto-marked, valid or not.
	require.NotEqual(t, appointment.SensitivityPrivate, work.Sensitivity)
	require.NotEqual(t, appointment.SensitivityPrivate, malformed.Sensitivity)

	// In-place mutation: the returned slice holds the same records.
	require.Same(t, personal, out[0])
}

func TestApplyIdempotent(t *testing.T) {
	appts := []*appointment.Appointment{
		{Subject: "Dentist"},
		{Subject: "Work", Categories: []string{"Acme Corp - billable"}},
		{Subject: "Already", Sensitivity: appointment.SensitivityPrivate},
	}

	Apply(appts)
	first := make([]appointment.Sensitivity, len(appts))
	for i, a := range appts {
		first[i] = a.Sensitivity
	}

	Apply(appts)
	for i, a := range appts {
		require.Equal(t, first[i], a.Sensitivity)
	}
}

func TestApplyLeavesExistingPrivateUntouched(t *testing.T) {
	a := &appointment.Appointment{
		Subject:     "Confidential review",
		Categories:  []string{"Acme Corp - billable"},
		Sensitivity: appointment.SensitivityPrivate,
	}
	Apply([]*appointment.Appointment{a})
	require.Equal(t, appointment.SensitivityPrivate, a.Sensitivity)
}

func TestUpdateFlags(t *testing.T) {
	appts := []*appointment.Appointment{
		{Subject: "Dentist"},
		{Subject: "Gym", Sensitivity: appointment.SensitivityPrivate},
		{Subject: "Work", Categories: []string{"Acme Corp - billable"}},
		{Subject: "Review", Categories: []string{"Globex - non-billable"}, Sensitivity: appointment.SensitivityConfidential},
	}

	stats := UpdateFlags(appts)

	require.Equal(t, 4, stats.Total)
	require.Equal(t, 1, stats.AlreadyPrivate)
	require.Equal(t, 1, stats.NewlyMarked)
	require.Equal(t, 2, stats.Personal)
	require.Equal(t, 2, stats.Work)
	require.Equal(t, 2, stats.BySensitivity["private"])
	require.Equal(t, 1, stats.BySensitivity["normal"])
	require.Equal(t, 1, stats.BySensitivity["confidential"])
}
