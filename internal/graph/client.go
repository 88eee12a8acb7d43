// Package graph is a thin Microsoft Graph calendar client used as an
// archive source and sink. Authentication uses the OAuth2 client-credential
// flow; the client never caches appointments itself.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/archive"
)

const (
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	defaultScope   = "https://graph.microsoft.com/.default"

	pageSize = 100
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a Graph client for the tenant using client credentials.
// The returned client owns token refresh via the oauth2 transport.
func NewClient(ctx context.Context, tenantID, clientID, clientSecret string) *Client {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, tenantID),
		Scopes:       []string{defaultScope},
	}

	return &Client{
		httpClient: cfg.Client(ctx),
		baseURL:    defaultBaseURL,
	}
}

// graphEvent is the wire shape of a Graph calendar event, limited to the
// fields the pipeline consumes.
type graphEvent struct {
	ID            string        `json:"id,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Subject       string        `json:"subject"`
	Start         graphDateTime `json:"start"`
	End           graphDateTime `json:"end"`
	Categories    []string      `json:"categories,omitempty"`
	ShowAs        string        `json:"showAs,omitempty"`
	Importance    string        `json:"importance,omitempty"`
	Sensitivity   string        `json:"sensitivity,omitempty"`
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventPage struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListAppointments fetches the user's calendar view for [start, end),
// following @odata.nextLink paging. Times are requested in UTC so the
// pipeline compares instants, not wall clocks.
func (c *Client) ListAppointments(ctx context.Context, userID, calendar string, start, end time.Time) ([]*appointment.Appointment, error) {
	events, err := c.listEvents(ctx, userID, calendar, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]*appointment.Appointment, 0, len(events))
	for i := range events {
		a, err := toAppointment(&events[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, nil
}

func (c *Client) listEvents(ctx context.Context, userID, calendar string, start, end time.Time) ([]graphEvent, error) {
	q := url.Values{}
	q.Set("startDateTime", start.UTC().Format(time.RFC3339))
	q.Set("endDateTime", end.UTC().Format(time.RFC3339))
	q.Set("$top", fmt.Sprintf("%d", pageSize))

	next := fmt.Sprintf("%s/users/%s/calendars/%s/calendarView?%s",
		c.baseURL, url.PathEscape(userID), url.PathEscape(calendar), q.Encode())

	var out []graphEvent

	for next != "" {
		var page eventPage
		if err := c.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, fmt.Errorf("list calendar view: %w", err)
		}
		out = append(out, page.Value...)
		next = page.NextLink
	}

	return out, nil
}

// Write pushes appointments into the archive calendar. Archived copies
// carry the source event id as their transactionId, which survives the
// round trip, so the existing view is listed once and diffed by that key.
func (c *Client) Write(ctx context.Context, userID, calendar string, appts []*appointment.Appointment) (archive.SinkStats, error) {
	var stats archive.SinkStats

	if len(appts) == 0 {
		return stats, nil
	}

	window := writeWindow(appts)
	existing, err := c.listEvents(ctx, userID, calendar, window.start, window.end)
	if err != nil {
		return stats, fmt.Errorf("list archive calendar: %w", err)
	}

	byKey := make(map[string]*graphEvent, len(existing))
	for i := range existing {
		if existing[i].TransactionID != "" {
			byKey[existing[i].TransactionID] = &existing[i]
		}
	}

	base := fmt.Sprintf("%s/users/%s/calendars/%s/events",
		c.baseURL, url.PathEscape(userID), url.PathEscape(calendar))

	for _, a := range appts {
		ev := fromAppointment(a)
		ev.TransactionID = a.MSEventID

		if a.MSEventID != "" {
			if prior, ok := byKey[a.MSEventID]; ok {
				same, err := sameEvent(prior, a)
				if err != nil {
					return stats, err
				}
				if same {
					stats.Skipped++
					continue
				}
				// transactionId is immutable after create.
				ev.TransactionID = ""
				target := fmt.Sprintf("%s/%s", base, url.PathEscape(prior.ID))
				if err := c.do(ctx, http.MethodPatch, target, ev, nil); err != nil {
					return stats, fmt.Errorf("update event: %w", err)
				}
				stats.Updated++
				continue
			}
		}

		if err := c.do(ctx, http.MethodPost, base, ev, nil); err != nil {
			return stats, fmt.Errorf("create event: %w", err)
		}
		stats.Created++
	}

	return stats, nil
}

func sameEvent(prior *graphEvent, a *appointment.Appointment) (bool, error) {
	start, err := parseGraphTime(prior.Start)
	if err != nil {
		return false, fmt.Errorf("event %s start: %w", prior.ID, err)
	}
	end, err := parseGraphTime(prior.End)
	if err != nil {
		return false, fmt.Errorf("event %s end: %w", prior.ID, err)
	}
	return prior.Subject == a.Subject && start.Equal(a.StartTime) && end.Equal(a.EndTime), nil
}

// DeleteEvent removes one event from a calendar.
func (c *Client) DeleteEvent(ctx context.Context, userID, eventID string) error {
	target := fmt.Sprintf("%s/users/%s/events/%s", c.baseURL, url.PathEscape(userID), url.PathEscape(eventID))
	if err := c.do(ctx, http.MethodDelete, target, nil, nil); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ge graphError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &ge) == nil && ge.Error.Code != "" {
			return fmt.Errorf("graph %s %s: %s (%s)", method, resp.Status, ge.Error.Message, ge.Error.Code)
		}
		return fmt.Errorf("graph %s %s", method, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func toAppointment(ev *graphEvent) (*appointment.Appointment, error) {
	start, err := parseGraphTime(ev.Start)
	if err != nil {
		return nil, fmt.Errorf("event %s start: %w", ev.ID, err)
	}
	end, err := parseGraphTime(ev.End)
	if err != nil {
		return nil, fmt.Errorf("event %s end: %w", ev.ID, err)
	}

	return &appointment.Appointment{
		MSEventID:   ev.ID,
		Subject:     ev.Subject,
		StartTime:   start,
		EndTime:     end,
		Categories:  ev.Categories,
		ShowAs:      appointment.ShowAs(ev.ShowAs),
		Importance:  appointment.Importance(ev.Importance),
		Sensitivity: appointment.Sensitivity(ev.Sensitivity),
	}, nil
}

func fromAppointment(a *appointment.Appointment) *graphEvent {
	return &graphEvent{
		Subject:     a.Subject,
		Start:       graphDateTime{DateTime: a.StartTime.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		End:         graphDateTime{DateTime: a.EndTime.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		Categories:  a.Categories,
		ShowAs:      string(a.ShowAs),
		Importance:  string(a.Importance),
		Sensitivity: string(a.Sensitivity),
	}
}

func parseGraphTime(dt graphDateTime) (time.Time, error) {
	loc := time.UTC
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		l, err := time.LoadLocation(dt.TimeZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("timezone %q: %w", dt.TimeZone, err)
		}
		loc = l
	}

	// Graph omits the offset when a timeZone field accompanies the value.
	t, err := time.ParseInLocation("2006-01-02T15:04:05.9999999", dt.DateTime, loc)
	if err != nil {
		t, err = time.ParseInLocation("2006-01-02T15:04:05", dt.DateTime, loc)
	}
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

type timeWindow struct {
	start time.Time
	end   time.Time
}

func writeWindow(appts []*appointment.Appointment) timeWindow {
	w := timeWindow{start: appts[0].StartTime, end: appts[0].EndTime}
	for _, a := range appts[1:] {
		if a.StartTime.Before(w.start) {
			w.start = a.StartTime
		}
		if a.EndTime.After(w.end) {
			w.end = a.EndTime
		}
	}
	return w
}
