// Package timeref computes the temporal anchor handed to the language
// model so relative expressions like "tomorrow" or "next Friday"
// resolve against a known clock instead of the deployment's default.
package timeref

import "time"

// Reference describes "now" in the target timezone plus the date of
// the next occurrence of every weekday.
type Reference struct {
	Now      time.Time
	DayName  string
	Date     string // YYYY-MM-DD
	Clock    string // HH:MM
	Upcoming map[time.Weekday]string
}

// NextOccurrence returns the closest strictly-future date with the
// target weekday. When target equals today's weekday the result is a
// full week out; today's date is reported separately in Reference.
func NextOccurrence(today time.Time, target time.Weekday) time.Time {
	diff := int(target) - int(today.Weekday())
	if diff <= 0 {
		diff += 7
	}
	return today.AddDate(0, 0, diff)
}

// New builds a Reference for the given instant. Callers pass
// time.Now() already shifted into the target location.
func New(now time.Time) Reference {
	upcoming := make(map[time.Weekday]string, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		upcoming[d] = NextOccurrence(now, d).Format("2006-01-02")
	}

	return Reference{
		Now:      now,
		DayName:  now.Weekday().String(),
		Date:     now.Format("2006-01-02"),
		Clock:    now.Format("15:04"),
		Upcoming: upcoming,
	}
}
