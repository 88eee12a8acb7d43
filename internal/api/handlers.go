package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/archive"
	"github.com/Auriora/admin-assistant-sub000/internal/category"
	"github.com/Auriora/admin-assistant-sub000/internal/privacy"
)

func archiveRunHandler(svc *archive.Service, defaultIncludeTravel bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ArchiveRunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, err := parseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date", err.Error())
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_date", err.Error())
			return
		}

		includeTravel := defaultIncludeTravel
		if req.IncludeTravel != nil {
			includeTravel = *req.IncludeTravel
		}

		result, err := svc.Run(r.Context(), archive.RunRequest{
			UserID:          req.UserID,
			SourceCalendar:  req.SourceCalendar,
			ArchiveCalendar: req.ArchiveCalendar,
			Start:           start,
			End:             end,
			Timesheet:       req.Timesheet,
			IncludeTravel:   includeTravel,
		})
		if err != nil {
			handleRunError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func categoryStatisticsHandler(repo appointment.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, ok := loadRange(w, r, repo)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, category.Statistics(appts))
	}
}

// privacyStatisticsHandler is a dry run: it reports what a privacy pass
// would do without persisting the mutated sensitivities.
func privacyStatisticsHandler(repo appointment.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, ok := loadRange(w, r, repo)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, privacy.UpdateFlags(appts))
	}
}

func loadRange(w http.ResponseWriter, r *http.Request, repo appointment.Repository) ([]*appointment.Appointment, bool) {
	var req StatisticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return nil, false
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return nil, false
	}
	if req.Calendar == "" {
		req.Calendar = "Calendar"
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_start_date", err.Error())
		return nil, false
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_end_date", err.Error())
		return nil, false
	}

	appts, err := repo.ListForRange(r.Context(), req.UserID, req.Calendar, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return nil, false
	}

	return appts, true
}

func handleRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, archive.ErrMissingUser):
		writeError(w, http.StatusBadRequest, "missing_user_id", err.Error())
	case errors.Is(err, archive.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, "invalid_window", err.Error())
	case errors.Is(err, archive.ErrArchiveInProgress):
		writeError(w, http.StatusConflict, "archive_in_progress", "an archive run for this calendar is already running, retry later")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// parseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates (midnight UTC).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
