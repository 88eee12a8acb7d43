package category

import (
	"sort"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
)

// Stats aggregates classification results over a list of appointments.
type Stats struct {
	Total             int            `json:"total"`
	Personal          int            `json:"personal"`
	ValidCategories   int            `json:"valid_categories"`
	InvalidCategories int            `json:"invalid_categories"`
	Customers         []string       `json:"customers"`
	BillingTypes      map[string]int `json:"billing_types"`
	Issues            []string       `json:"issues,omitempty"`
}

// Statistics reduces Extract over appts. Customers is sorted and distinct.
func Statistics(appts []*appointment.Appointment) Stats {
	stats := Stats{
		Total:        len(appts),
		BillingTypes: make(map[string]int),
	}

	customers := make(map[string]struct{})

	for _, appt := range appts {
		info := Extract(appt)

		switch {
		case info.IsPersonal:
			stats.Personal++
		case info.IsValid:
			stats.ValidCategories++
			customers[info.Customer] = struct{}{}
			stats.BillingTypes[info.BillingType]++
		default:
			stats.InvalidCategories++
		}

		stats.Issues = append(stats.Issues, info.Issues...)
	}

	for c := range customers {
		stats.Customers = append(stats.Customers, c)
	}
	sort.Strings(stats.Customers)

	return stats
}
