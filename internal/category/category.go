// Package category parses and validates "Customer - BillingType" calendar
// category strings and classifies the special categories used for
// non-customer time (Online, Admin, Break).
package category

import "strings"

const (
	BillingBillable    = "billable"
	BillingNonBillable = "non-billable"
	BillingOnline      = "online"
	BillingTravel      = "travel"
)

const separator = " - "

// specialCustomers are recognized in the "Name - non-billable" form.
var specialCustomers = map[string]string{
	"admin": "Admin",
	"break": "Break",
}

// ParseCategory parses a single raw category string. On success it returns
// the trimmed customer name and the normalized (lower-cased) billing type.
// Any malformed input yields ok=false; parsing never fails with an error.
func ParseCategory(raw string) (customer, billing string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", "", false
	}

	// "Online" is a complete category on its own.
	if strings.EqualFold(trimmed, "online") {
		return "Online", BillingOnline, true
	}

	parts := strings.Split(trimmed, separator)
	if len(parts) != 2 {
		// Zero separators or too many; either way unparseable.
		return "", "", false
	}

	customer = strings.TrimSpace(parts[0])
	if customer == "" {
		return "", "", false
	}

	billing = strings.ToLower(strings.TrimSpace(parts[1]))
	switch billing {
	case BillingBillable, BillingNonBillable:
		return customer, billing, true
	}
	return "", "", false
}

// IsSpecial reports whether name is one of the special categories, matching
// either the bare name ("online", "admin", "break") or the full
// "Admin - non-billable" / "Break - non-billable" form.
func IsSpecial(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "online" {
		return true
	}
	if _, ok := specialCustomers[n]; ok {
		return true
	}
	if cust, found := strings.CutSuffix(n, separator+BillingNonBillable); found {
		_, ok := specialCustomers[strings.TrimSpace(cust)]
		return ok
	}
	return false
}
