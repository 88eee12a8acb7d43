package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/archive"
	"github.com/Auriora/admin-assistant-sub000/internal/config"
	redisclient "github.com/Auriora/admin-assistant-sub000/internal/redis"
)

type stubRepo struct {
	appointment.Repository
	appts []*appointment.Appointment
}

func (s *stubRepo) ListForRange(ctx context.Context, userID, calendar string, start, end time.Time) ([]*appointment.Appointment, error) {
	return s.appts, nil
}

func (s *stubRepo) FindByMSEventID(ctx context.Context, userID, calendar, msEventID string) (*appointment.Appointment, error) {
	return nil, appointment.ErrAppointmentNotFound
}

func (s *stubRepo) Create(ctx context.Context, userID, calendar string, a *appointment.Appointment) (*appointment.Appointment, error) {
	return a, nil
}

func (s *stubRepo) InsertEvent(ctx context.Context, ev appointment.EventLog) error {
	return nil
}

type stubLocker struct {
	held bool
}

func (s *stubLocker) WithArchiveLock(ctx context.Context, userID, calendar string, fn func(ctx context.Context) error) error {
	if s.held {
		return redisclient.ErrLockNotAcquired
	}
	return fn(ctx)
}

func seedAppointments() []*appointment.Appointment {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mk := func(subject string, startHour, endHour int, categories ...string) *appointment.Appointment {
		return &appointment.Appointment{
			ID:         uuid.New(),
			Subject:    subject,
			StartTime:  day.Add(time.Duration(startHour) * time.Hour),
			EndTime:    day.Add(time.Duration(endHour) * time.Hour),
			Categories: categories,
			ShowAs:     appointment.ShowAsBusy,
			Importance: appointment.ImportanceNormal,
		}
	}
	return []*appointment.Appointment{
		mk("Client Meeting", 10, 11, "Acme Corp - billable"),
		mk("Dentist", 13, 14),
	}
}

func newTestHandler(held bool) http.Handler {
	repo := &stubRepo{appts: seedAppointments()}
	source := archive.NewStoreSource(repo)
	sink := archive.NewStoreSink(repo)
	svc := archive.NewService(source, sink, repo, &stubLocker{held: held}, config.Config{ArchiveCalendar: "Activity Archive"})

	return NewRouter(RouterConfig{
		Service:       svc,
		Repo:          repo,
		Env:           "test",
		Version:       "test",
		IncludeTravel: true,
	})
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestArchiveRunEndpoint(t *testing.T) {
	h := newTestHandler(false)

	rec := postJSON(t, h, "/archive/runs", ArchiveRunRequest{
		UserID:    "user-1",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-11",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result archive.RunResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Equal(t, 2, result.Fetched)
	require.Equal(t, 2, result.Archived)
	require.Equal(t, 1, result.NewlyPrivate)
}

func TestArchiveRunValidation(t *testing.T) {
	h := newTestHandler(false)

	tests := []struct {
		name string
		req  ArchiveRunRequest
		code int
	}{
		{
			name: "missing user",
			req:  ArchiveRunRequest{StartDate: "2026-03-10", EndDate: "2026-03-11"},
			code: http.StatusBadRequest,
		},
		{
			name: "bad start date",
			req:  ArchiveRunRequest{UserID: "user-1", StartDate: "not-a-date", EndDate: "2026-03-11"},
			code: http.StatusBadRequest,
		},
		{
			name: "inverted window",
			req:  ArchiveRunRequest{UserID: "user-1", StartDate: "2026-03-11", EndDate: "2026-03-10"},
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, "/archive/runs", tt.req)
			require.Equal(t, tt.code, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestArchiveRunConflictWhenLocked(t *testing.T) {
	h := newTestHandler(true)

	rec := postJSON(t, h, "/archive/runs", ArchiveRunRequest{
		UserID:    "user-1",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-11",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "archive_in_progress", resp.Error)
}

func TestCategoryStatisticsEndpoint(t *testing.T) {
	h := newTestHandler(false)

	rec := postJSON(t, h, "/appointments/statistics/categories", StatisticsRequest{
		UserID:    "user-1",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-11",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Total     int      `json:"total"`
		Personal  int      `json:"personal"`
		Customers []string `json:"customers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.Personal)
	require.Equal(t, []string{"Acme Corp"}, stats.Customers)
}

func TestPrivacyStatisticsEndpoint(t *testing.T) {
	h := newTestHandler(false)

	rec := postJSON(t, h, "/appointments/statistics/privacy", StatisticsRequest{
		UserID:    "user-1",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-11",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Total       int `json:"total"`
		NewlyMarked int `json:"newly_marked"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.NewlyMarked)
}

func TestStatisticsRequiresUser(t *testing.T) {
	h := newTestHandler(false)

	rec := postJSON(t, h, "/appointments/statistics/categories", StatisticsRequest{
		StartDate: "2026-03-10",
		EndDate:   "2026-03-11",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-10")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), d)

	ts, err := parseDate("2026-03-10T08:30:00Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC), ts)

	_, err = parseDate("10/03/2026")
	require.Error(t, err)
}
