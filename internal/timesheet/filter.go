// Package timesheet reduces a reconciled appointment list to the subset
// suitable for billing export: business-categorized (or travel)
// appointments with overlaps resolved away.
package timesheet

import (
	"fmt"
	"strings"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
	"github.com/Auriora/admin-assistant-sub000/internal/category"
	"github.com/Auriora/admin-assistant-sub000/internal/overlap"
)

// Exclusion reasons reported in the statistics.
const (
	ReasonFreeStatus  = "free_status"
	ReasonNotBusiness = "no_business_category"
	ReasonOverlapLost = "overlap_filtered"
	ReasonConflict    = "overlap_conflict"
)

var travelKeywords = []string{
	"travel", "drive", "driving", "flight", "commute", "airport",
	"train", "taxi", "uber",
}

type Exclusion struct {
	Appointment *appointment.Appointment
	Reason      string
}

type Stats struct {
	TotalInput    int            `json:"total_input"`
	Business      int            `json:"business"`
	Excluded      int            `json:"excluded"`
	ByReason      map[string]int `json:"by_reason"`
	ByCategory    map[string]int `json:"by_category_type"`
	OverlapGroups int            `json:"overlap_groups"`
}

type Result struct {
	Filtered    []*appointment.Appointment
	Excluded    []Exclusion
	Resolutions []overlap.Resolution
	Stats       Stats
	Issues      []string
}

// Filter keeps appointments that are billable business time: not free, and
// either carrying a billable/non-billable/travel category or (when
// includeTravel is set) looking like travel by subject. Overlaps among the
// survivors are then resolved; only winners remain, unresolved conflicts
// are dropped and surfaced in Issues.
func Filter(appts []*appointment.Appointment, includeTravel bool) Result {
	res := Result{
		Stats: Stats{
			TotalInput: len(appts),
			ByReason:   make(map[string]int),
			ByCategory: make(map[string]int),
		},
	}

	var business []*appointment.Appointment

	for _, a := range appts {
		if a.ShowAs == appointment.ShowAsFree {
			res.exclude(a, ReasonFreeStatus)
			continue
		}

		if billing, ok := businessBilling(a); ok {
			business = append(business, a)
			res.Stats.ByCategory[billing]++
			continue
		}

		if includeTravel && IsTravel(a) {
			business = append(business, a)
			res.Stats.ByCategory[category.BillingTravel]++
			continue
		}

		res.exclude(a, ReasonNotBusiness)
	}

	res.Stats.Business = len(business)

	// Resolve overlaps among the business appointments. Winners stay; both
	// filtered losers and unresolved conflicts leave the timesheet.
	drop := make(map[*appointment.Appointment]string)
	groups := overlap.Detect(business)
	res.Stats.OverlapGroups = len(groups)

	for _, g := range groups {
		r := overlap.Resolve(g)
		res.Resolutions = append(res.Resolutions, r)

		for _, a := range r.Filtered {
			drop[a] = ReasonOverlapLost
		}
		if !r.IsResolved() {
			for _, a := range r.Conflicts {
				drop[a] = ReasonConflict
			}
			res.Issues = append(res.Issues,
				fmt.Sprintf("unresolved overlap between %d appointments needs manual review", len(r.Conflicts)))
		}
	}

	for _, a := range business {
		if reason, gone := drop[a]; gone {
			res.exclude(a, reason)
			continue
		}
		res.Filtered = append(res.Filtered, a)
	}

	return res
}

// IsTravel reports whether the subject contains a travel keyword.
func IsTravel(a *appointment.Appointment) bool {
	subject := strings.ToLower(a.Subject)
	for _, kw := range travelKeywords {
		if strings.Contains(subject, kw) {
			return true
		}
	}
	return false
}

// businessBilling reports the billing type when the appointment carries a
// billable, non-billable, or travel category. Travel categories are not
// valid in the general classifier but count as business time here.
func businessBilling(a *appointment.Appointment) (string, bool) {
	info := category.Extract(a)
	if info.IsValid {
		switch info.BillingType {
		case category.BillingBillable, category.BillingNonBillable:
			return info.BillingType, true
		}
	}

	for _, raw := range a.Categories {
		parts := strings.Split(strings.TrimSpace(raw), " - ")
		if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), category.BillingTravel) {
			return category.BillingTravel, true
		}
	}

	return "", false
}

func (r *Result) exclude(a *appointment.Appointment, reason string) {
	r.Excluded = append(r.Excluded, Exclusion{Appointment: a, Reason: reason})
	r.Stats.Excluded++
	r.Stats.ByReason[reason]++
}
