package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizcargo/opswatch/internal/domain"
)

func TestScheduleDueDate_OnBookingUsesEntryOffset(t *testing.T) {
	signed := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	entry := domain.PaymentScheduleEntry{Basis: domain.PaymentBasisOnBooking, DaysAfter: 14}

	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), scheduleDueDate(entry, signed))
}

func TestScheduleDueDate_OtherBasisDefaultsToSevenDays(t *testing.T) {
	signed := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	entry := domain.PaymentScheduleEntry{Basis: "ON_DELIVERY", DaysAfter: 60}

	// DaysAfter is ignored for bases without an explicit due-date rule.
	assert.Equal(t, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), scheduleDueDate(entry, signed))
}

func TestFirstDueEntry_SkipsDeferred(t *testing.T) {
	entries := []domain.PaymentScheduleEntry{
		{Seq: 1, Basis: "DEFERRED", IsDeferred: true},
		{Seq: 2, Basis: domain.PaymentBasisOnBooking, DaysAfter: 5, Percent: 30},
		{Seq: 3, Basis: "ON_DELIVERY", Percent: 70},
	}

	entry, ok := firstDueEntry(entries)
	require.True(t, ok)
	assert.Equal(t, 2, entry.Seq)
}

func TestFirstDueEntry_AllDeferred(t *testing.T) {
	entries := []domain.PaymentScheduleEntry{
		{Seq: 1, IsDeferred: true},
		{Seq: 2, IsDeferred: true},
	}
	_, ok := firstDueEntry(entries)
	assert.False(t, ok)
}

func TestEntryDueInDays(t *testing.T) {
	signed := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.PaymentScheduleEntry{
		{Seq: 1, Basis: domain.PaymentBasisOnBooking, DaysAfter: 10, Percent: 30},
		{Seq: 2, Basis: domain.PaymentBasisOnBooking, DaysAfter: 30, Percent: 70},
	}

	// Three days before the first entry's due date.
	now := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	entry, due, ok := entryDueInDays(entries, signed, now, 3)
	require.True(t, ok)
	assert.Equal(t, 1, entry.Seq)
	assert.Equal(t, time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), due)

	_, _, ok = entryDueInDays(entries, signed, now, 7)
	assert.False(t, ok)

	// The second entry matches at the right offset.
	entry, _, ok = entryDueInDays(entries, signed, now, 23)
	require.True(t, ok)
	assert.Equal(t, 2, entry.Seq)
}
