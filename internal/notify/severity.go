package notify

import "github.com/denizcargo/opswatch/internal/domain"

// severityForDays maps "days until the event" to an urgency tier.
// Overdue events (negative days) fall into the error tier.
//
//	<= 2 days (or overdue)  error
//	3..7 days               warning
//	> 7 days                info
func severityForDays(days int) domain.Severity {
	switch {
	case days <= 2:
		return domain.SeverityError
	case days <= 7:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
