// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/taibuivan/mathlab/internal/platform/calendar"
)

/*
NextStreak applies the daily streak policy.

  - Already counted today: unchanged.
  - Last counted yesterday: the chain continues.
  - Anything else (a gap, no history, a date ahead of today): restart at 1.

All dates are calendar dates in the application time zone.

Returns:
  - int: The new streak length
  - bool: Whether anything must be written
*/
func NextStreak(lastDate *time.Time, current int, today time.Time) (int, bool) {
	if lastDate != nil {
		switch calendar.DaysBetween(*lastDate, today) {
		case 0:
			return current, false
		case 1:
			return current + 1, true
		}
	}
	return 1, true
}
