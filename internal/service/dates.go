package service

import (
	"time"
	"unite-stats/internal/constants"
)

// Clock returns the current instant. Injected so day boundaries are testable.
type Clock func() time.Time

func SystemClock() Clock { return time.Now }

func startOfDay(t time.Time) time.Time {
	t = t.In(constants.ReferenceZone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, constants.ReferenceZone)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(constants.DateLayout, s, constants.ReferenceZone)
}

func formatDate(t time.Time) string {
	return t.In(constants.ReferenceZone).Format(constants.DateLayout)
}

// DayWindow returns the epoch-second bounds [from, to) of the reference-zone day containing day.
func DayWindow(day time.Time) (from, to int64) {
	start := startOfDay(day)
	return start.Unix(), start.AddDate(0, 0, 1).Unix()
}
