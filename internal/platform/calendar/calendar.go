// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package calendar answers "what day is it" and "which week is it" in the
application time zone.

Streaks are counted in calendar days and leaderboards in Monday-based weeks,
both relative to the configured APP_TIMEZONE rather than the server clock.
*/
package calendar

import (
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the wire and cache-key format for calendar dates.
const DateLayout = "2006-01-02"

var mondayWeeks = &now.Config{WeekStartDay: time.Monday}

// Clock reports the current date in a fixed location.
type Clock struct {
	location *time.Location
	now      func() time.Time
}

// New creates a Clock for loc. A nil loc means UTC.
func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{location: loc, now: time.Now}
}

// Fixed creates a Clock frozen at instant t, for tests.
func Fixed(loc *time.Location, t time.Time) *Clock {
	clock := New(loc)
	clock.now = func() time.Time { return t }
	return clock
}

// Now returns the current instant in the clock's location.
func (clock *Clock) Now() time.Time {
	return clock.now().In(clock.location)
}

// Today returns today's calendar date as a UTC midnight value.
func (clock *Clock) Today() time.Time {
	return Date(clock.Now())
}

// WeekStart returns the Monday of the current week as a UTC midnight value.
func (clock *Clock) WeekStart() time.Time {
	return WeekStart(clock.Now())
}

// Date strips the clock time from t, keeping the calendar date as seen in
// t's own location. The result is midnight UTC so it compares cleanly with
// DATE columns read back from Postgres.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday on or before t (in t's location) as a date.
func WeekStart(t time.Time) time.Time {
	return Date(mondayWeeks.With(t).BeginningOfWeek())
}

// WeekEnd returns the Sunday closing the week that starts at weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// Key formats a date for use in cache keys and JSON.
func Key(date time.Time) string {
	return date.Format(DateLayout)
}
