// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserStatsView represents the read-only 'user_stats' view
type UserStatsView struct {
	Table             string
	UserID            string
	DisplayName       string
	Level             string
	XP                string
	StreakDays        string
	Hearts            string
	LessonsCompleted  string
	ProblemsAttempted string
	ProblemsCorrect   string
	AccuracyPercent   string
}

// UserStats is the schema definition for user_stats
var UserStats = UserStatsView{
	Table:             "user_stats",
	UserID:            "user_id",
	DisplayName:       "display_name",
	Level:             "level",
	XP:                "xp",
	StreakDays:        "streak_days",
	Hearts:            "hearts",
	LessonsCompleted:  "lessons_completed",
	ProblemsAttempted: "problems_attempted",
	ProblemsCorrect:   "problems_correct",
	AccuracyPercent:   "accuracy_percent",
}

// Columns returns all standard column names
func (t UserStatsView) Columns() []string {
	return []string{
		t.UserID, t.DisplayName, t.Level, t.XP, t.StreakDays, t.Hearts,
		t.LessonsCompleted, t.ProblemsAttempted, t.ProblemsCorrect,
		t.AccuracyPercent,
	}
}
