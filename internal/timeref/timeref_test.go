package timeref

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOccurrenceAlwaysFuture(t *testing.T) {
	// Sweep a full week of "today" values against every target weekday.
	base := time.Date(2026, time.September, 6, 10, 30, 0, 0, time.UTC) // a Sunday

	for c := 0; c < 7; c++ {
		today := base.AddDate(0, 0, c)
		for d := time.Sunday; d <= time.Saturday; d++ {
			next := NextOccurrence(today, d)

			days := int(next.Sub(today).Hours() / 24)
			assert.Greater(t, days, 0,
				"%s -> %s must be strictly in the future", today.Weekday(), d)
			assert.LessOrEqual(t, days, 7,
				"%s -> %s must be within one week", today.Weekday(), d)
			assert.Equal(t, d, next.Weekday())
		}
	}
}

func TestNextOccurrenceSameWeekdayIsNextWeek(t *testing.T) {
	monday := time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	next := NextOccurrence(monday, time.Monday)
	assert.Equal(t, "2026-09-14", next.Format("2006-01-02"))
}

func TestNewReference(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)

	now := time.Date(2026, time.September, 9, 14, 5, 0, 0, loc) // a Wednesday
	ref := New(now)

	assert.Equal(t, "Wednesday", ref.DayName)
	assert.Equal(t, "2026-09-09", ref.Date)
	assert.Equal(t, "14:05", ref.Clock)
	assert.Len(t, ref.Upcoming, 7)
	assert.Equal(t, "2026-09-10", ref.Upcoming[time.Thursday])
	assert.Equal(t, "2026-09-14", ref.Upcoming[time.Monday])
	// Today's weekday maps a full week out.
	assert.Equal(t, "2026-09-16", ref.Upcoming[time.Wednesday])
}
