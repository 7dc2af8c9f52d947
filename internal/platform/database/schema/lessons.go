// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// LessonsTable represents the 'lessons' table
type LessonsTable struct {
	Table         string
	ID            string
	Title         string
	Description   string
	Category      string
	OrderIndex    string
	XPReward      string
	ProblemsTotal string
	CreatedAt     string
}

// Lessons is the schema definition for lessons
var Lessons = LessonsTable{
	Table:         "lessons",
	ID:            "id",
	Title:         "title",
	Description:   "description",
	Category:      "category",
	OrderIndex:    "order_index",
	XPReward:      "xp_reward",
	ProblemsTotal: "problems_total",
	CreatedAt:     "created_at",
}

// Columns returns all standard column names
func (t LessonsTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Description, t.Category, t.OrderIndex,
		t.XPReward, t.ProblemsTotal, t.CreatedAt,
	}
}

// LessonProgressTable represents the 'user_lesson_progress' table
type LessonProgressTable struct {
	Table             string
	UserID            string
	LessonID          string
	IsUnlocked        string
	IsCompleted       string
	ProgressPercent   string
	ProblemsCompleted string
	ProblemsTotal     string
	CompletedAt       string
	UpdatedAt         string
}

// LessonProgress is the schema definition for user_lesson_progress
var LessonProgress = LessonProgressTable{
	Table:             "user_lesson_progress",
	UserID:            "user_id",
	LessonID:          "lesson_id",
	IsUnlocked:        "is_unlocked",
	IsCompleted:       "is_completed",
	ProgressPercent:   "progress_percent",
	ProblemsCompleted: "problems_completed",
	ProblemsTotal:     "problems_total",
	CompletedAt:       "completed_at",
	UpdatedAt:         "updated_at",
}

// Columns returns all standard column names
func (t LessonProgressTable) Columns() []string {
	return []string{
		t.UserID, t.LessonID, t.IsUnlocked, t.IsCompleted, t.ProgressPercent,
		t.ProblemsCompleted, t.ProblemsTotal, t.CompletedAt, t.UpdatedAt,
	}
}
