// Package analytics provides return, risk, volume and attribution calculations
// over date-indexed price and volume frames.
package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoTradingDay is returned when a target date precedes every date in the index.
var ErrNoTradingDay = errors.New("no trading day on or before target")

// PrevTradingDay returns the latest date in dates that is on or before target,
// together with its position. dates must be ascending.
func PrevTradingDay(dates []time.Time, target time.Time) (time.Time, int, error) {
	// first index strictly after target
	i := sort.Search(len(dates), func(i int) bool {
		return dates[i].After(target)
	})
	if i == 0 {
		return time.Time{}, -1, fmt.Errorf("%s: %w", target.Format("2006-01-02"), ErrNoTradingDay)
	}
	return dates[i-1], i - 1, nil
}

// WeekStart returns the Monday of t's week.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// YearStart returns January 1st of t's year.
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
