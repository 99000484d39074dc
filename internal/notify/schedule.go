package notify

import (
	"time"

	"github.com/denizcargo/opswatch/internal/domain"
)

// defaultPaymentOffsetDays is the due-date offset for schedule entries
// whose basis carries no explicit rule.
const defaultPaymentOffsetDays = 7

// scheduleDueDate computes when one payment entry falls due, relative to
// the contract signature date. Only the ON_BOOKING basis uses the entry's
// own offset; every other basis defaults to signing plus seven days.
func scheduleDueDate(entry domain.PaymentScheduleEntry, signedAt time.Time) time.Time {
	if entry.Basis == domain.PaymentBasisOnBooking {
		return dateOf(signedAt).AddDate(0, 0, entry.DaysAfter)
	}
	return dateOf(signedAt).AddDate(0, 0, defaultPaymentOffsetDays)
}

// firstDueEntry returns the first non-deferred schedule entry, which is
// the advance payment by convention (entries are ordered by seq).
func firstDueEntry(entries []domain.PaymentScheduleEntry) (domain.PaymentScheduleEntry, bool) {
	for _, e := range entries {
		if !e.IsDeferred {
			return e, true
		}
	}
	return domain.PaymentScheduleEntry{}, false
}

// entryDueInDays returns the first non-deferred entry falling due in
// exactly wantDays calendar days.
func entryDueInDays(entries []domain.PaymentScheduleEntry, signedAt, now time.Time, wantDays int) (domain.PaymentScheduleEntry, time.Time, bool) {
	for _, e := range entries {
		if e.IsDeferred {
			continue
		}
		due := scheduleDueDate(e, signedAt)
		if daysUntil(now, due) == wantDays {
			return e, due, true
		}
	}
	return domain.PaymentScheduleEntry{}, time.Time{}, false
}
