// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/platform/calendar"
)

/*
TestWeekStart verifies Monday-based weeks for every weekday.
*/
func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		{"monday", time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), "2026-10-19"},
		{"wednesday", time.Date(2026, 10, 21, 23, 59, 0, 0, time.UTC), "2026-10-19"},
		{"saturday", time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC), "2026-10-19"},
		{"sunday belongs to previous monday", time.Date(2026, 10, 25, 12, 0, 0, 0, time.UTC), "2026-10-19"},
		{"across month boundary", time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC), "2026-10-26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calendar.WeekStart(tt.day)
			assert.Equal(t, tt.want, calendar.Key(got))
			assert.Equal(t, time.Monday, got.Weekday())
			assert.Equal(t, time.Sunday, calendar.WeekEnd(got).Weekday())
		})
	}
}

/*
TestClock_Timezone verifies that "today" follows the configured zone.
*/
func TestClock_Timezone(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 2026-10-18 20:00 UTC is already Monday 2026-10-19 in Seoul.
	instant := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

	utcClock := calendar.Fixed(time.UTC, instant)
	seoulClock := calendar.Fixed(seoul, instant)

	assert.Equal(t, "2026-10-18", calendar.Key(utcClock.Today()))
	assert.Equal(t, "2026-10-19", calendar.Key(seoulClock.Today()))

	assert.Equal(t, "2026-10-12", calendar.Key(utcClock.WeekStart()))
	assert.Equal(t, "2026-10-19", calendar.Key(seoulClock.WeekStart()))
}

/*
TestDaysBetween verifies calendar-day distance independent of clock time.
*/
func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 10, 19, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 1, calendar.DaysBetween(a, b))
	assert.Equal(t, 0, calendar.DaysBetween(a, a))
	assert.Equal(t, -1, calendar.DaysBetween(b, a))
	assert.Equal(t, 3, calendar.DaysBetween(a, a.AddDate(0, 0, 3)))
}
