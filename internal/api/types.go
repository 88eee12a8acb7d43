package api

// ArchiveRunRequest triggers one archive run. Dates accept RFC3339 or
// YYYY-MM-DD; a bare date means midnight UTC.
type ArchiveRunRequest struct {
	UserID          string `json:"user_id"`
	SourceCalendar  string `json:"source_calendar"`
	ArchiveCalendar string `json:"archive_calendar"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Timesheet       bool   `json:"timesheet"`
	IncludeTravel   *bool  `json:"include_travel,omitempty"`
}

// StatisticsRequest selects the stored appointments to report on.
type StatisticsRequest struct {
	UserID    string `json:"user_id"`
	Calendar  string `json:"calendar"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
