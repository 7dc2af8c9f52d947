// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ProblemsTable represents the 'problems' table
type ProblemsTable struct {
	Table         string
	ID            string
	LessonID      string
	Category      string
	Difficulty    string
	Question      string
	Type          string
	Options       string
	Hints         string
	Tags          string
	CorrectAnswer string
	Explanation   string
	XPReward      string
	CreatedAt     string
}

// Problems is the schema definition for problems
var Problems = ProblemsTable{
	Table:         "problems",
	ID:            "id",
	LessonID:      "lesson_id",
	Category:      "category",
	Difficulty:    "difficulty",
	Question:      "question",
	Type:          "type",
	Options:       "options",
	Hints:         "hints",
	Tags:          "tags",
	CorrectAnswer: "correct_answer",
	Explanation:   "explanation",
	XPReward:      "xp_reward",
	CreatedAt:     "created_at",
}

// Columns returns all standard column names
func (t ProblemsTable) Columns() []string {
	return []string{
		t.ID, t.LessonID, t.Category, t.Difficulty, t.Question, t.Type, t.Options,
		t.Hints, t.Tags, t.CorrectAnswer, t.Explanation, t.XPReward, t.CreatedAt,
	}
}

// ProblemResultsTable represents the 'user_problem_results' table
type ProblemResultsTable struct {
	Table            string
	ID               string
	UserID           string
	ProblemID        string
	IsCorrect        string
	UserAnswer       string
	TimeSpentSeconds string
	HintsUsed        string
	XPEarned         string
	SolvedAt         string
}

// ProblemResults is the schema definition for user_problem_results
var ProblemResults = ProblemResultsTable{
	Table:            "user_problem_results",
	ID:               "id",
	UserID:           "user_id",
	ProblemID:        "problem_id",
	IsCorrect:        "is_correct",
	UserAnswer:       "user_answer",
	TimeSpentSeconds: "time_spent_seconds",
	HintsUsed:        "hints_used",
	XPEarned:         "xp_earned",
	SolvedAt:         "solved_at",
}

// Columns returns all standard column names
func (t ProblemResultsTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.ProblemID, t.IsCorrect, t.UserAnswer,
		t.TimeSpentSeconds, t.HintsUsed, t.XPEarned, t.SolvedAt,
	}
}
