// Package streak computes consecutive-day streaks from sets of completion
// days. Days are local calendar dates in "2006-01-02" form — comparing
// formatted local days instead of timestamps avoids off-by-one errors across
// midnight.
package streak

import (
	"math"
	"time"
)

const dayLayout = "2006-01-02"

// DayKey formats a time as its local calendar day.
func DayKey(t time.Time) string {
	return t.In(time.Local).Format(dayLayout)
}

// ParseDay reports whether s is a valid calendar day key.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.Local)
}

// Compute returns the current streak length as of asOf. The anchor is asOf
// itself, or asOf-1 when today has no completion yet: a streak survives until
// the user has had a full day to act ("hasn't been broken yet", not
// "completed today"). From the anchor it walks backward one calendar day at a
// time, stopping at the first gap. No completion on either anchor day means
// the streak is 0.
func Compute(days map[string]struct{}, asOf time.Time) int {
	if len(days) == 0 {
		return 0
	}

	anchor := asOf
	if _, ok := days[DayKey(anchor)]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
		if _, ok := days[DayKey(anchor)]; !ok {
			return 0
		}
	}

	count := 0
	for {
		if _, ok := days[DayKey(anchor)]; !ok {
			break
		}
		count++
		anchor = anchor.AddDate(0, 0, -1)
	}
	return count
}

// Window30Rate returns the completion rate over the trailing 30 calendar days
// ending at asOf (inclusive), as a rounded percentage. Deliberately not
// adjusted for habit age: a new habit starts with a low rate that rises.
func Window30Rate(days map[string]struct{}, asOf time.Time) int {
	done := 0
	for i := 0; i < 30; i++ {
		if _, ok := days[DayKey(asOf.AddDate(0, 0, -i))]; ok {
			done++
		}
	}
	return int(math.Round(float64(done) / 30 * 100))
}
