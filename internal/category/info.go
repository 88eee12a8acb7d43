package category

import (
	"fmt"
	"strings"

	"github.com/Auriora/admin-assistant-sub000/internal/appointment"
)

// Info is the outcome of classifying one appointment's categories. It is a
// plain result value: malformed input is reported through IsValid and
// Issues, never through an error.
type Info struct {
	Customer        string
	BillingType     string
	IsPersonal      bool
	IsValid         bool
	Issues          []string
	CategoriesFound []string
}

// Extract classifies an appointment's categories. An appointment with no
// categories at all is personal; one with only malformed categories is
// invalid but not personal. When several valid categories are present the
// first one in input order wins (order-dependent, kept for compatibility
// with existing archives).
func Extract(appt *appointment.Appointment) Info {
	if appt == nil || len(appt.Categories) == 0 {
		return Info{
			IsPersonal: true,
			Issues:     []string{"No categories found - treating as personal appointment"},
		}
	}

	var info Info

	type parsed struct {
		customer string
		billing  string
	}
	var valid []parsed

	for _, raw := range appt.Categories {
		info.CategoriesFound = append(info.CategoriesFound, raw)

		if customer, billing, ok := ParseCategory(raw); ok {
			valid = append(valid, parsed{customer: customer, billing: billing})
			continue
		}
		info.Issues = append(info.Issues, describeDefect(raw))
	}

	if len(valid) > 0 {
		info.Customer = valid[0].customer
		info.BillingType = valid[0].billing
		info.IsValid = true
		if len(valid) > 1 {
			info.Issues = append(info.Issues, "Multiple valid categories found")
		}
	}

	return info
}

// ShouldMarkPrivate reports whether the privacy pass should flag the
// appointment private: true only for appointments with zero categories.
func ShouldMarkPrivate(appt *appointment.Appointment) bool {
	return Extract(appt).IsPersonal
}

// describeDefect names the specific reason a category string failed to
// parse, for the Issues list.
func describeDefect(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parts := strings.Split(trimmed, separator)

	switch {
	case len(parts) < 2:
		return fmt.Sprintf("Category %q has no ' - ' separator", raw)
	case len(parts) > 2:
		return fmt.Sprintf("Category %q has too many ' - ' separators", raw)
	case strings.TrimSpace(parts[0]) == "":
		return fmt.Sprintf("Category %q has an empty customer name", raw)
	default:
		return fmt.Sprintf("Category %q has invalid billing type %q", raw, strings.TrimSpace(parts[1]))
	}
}
