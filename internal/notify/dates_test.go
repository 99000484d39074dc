package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/denizcargo/opswatch/internal/domain"
)

func TestDaysUntil_CalendarDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	// Clock time is irrelevant: half an hour before midnight still counts
	// as one whole day until tomorrow.
	tomorrow := time.Date(2026, 3, 11, 0, 15, 0, 0, time.UTC)
	assert.Equal(t, 1, daysUntil(now, tomorrow))

	assert.Equal(t, 0, daysUntil(now, now))
	assert.Equal(t, 14, daysUntil(now, now.AddDate(0, 0, 14)))
	assert.Equal(t, -3, daysUntil(now, now.AddDate(0, 0, -3)))
}

func TestDaysSince_MirrorsDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	past := time.Date(2026, 3, 3, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, 7, daysSince(now, past))
	assert.Equal(t, -7, daysUntil(now, past))
}

func TestAddDays_TruncatesToDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 17, 45, 12, 0, time.UTC)
	got := addDays(now, 3)
	assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), *got)
}

func TestSeverityForDays_Tiers(t *testing.T) {
	tests := []struct {
		days int
		want domain.Severity
	}{
		{-5, domain.SeverityError},
		{0, domain.SeverityError},
		{2, domain.SeverityError},
		{3, domain.SeverityWarning},
		{7, domain.SeverityWarning},
		{8, domain.SeverityInfo},
		{30, domain.SeverityInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, severityForDays(tt.days), "days=%d", tt.days)
	}
}
