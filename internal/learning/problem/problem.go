// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package problem serves lesson problems and grades submitted answers.

Answers are checked on the server. The correct answer never leaves the
server except in the feedback for a wrong submission.
*/
package problem

import (
	"context"
	"encoding/json"
	"time"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/users/auth"
	"github.com/taibuivan/mathlab/pkg/pagination"
)

// # Domain Entities

// Problem is the public view of a problem. It carries no answer.
type Problem struct {
	ID         string          `json:"id"`
	LessonID   string          `json:"lesson_id"`
	Category   string          `json:"category"`
	Difficulty int             `json:"difficulty"`
	Question   string          `json:"question"`
	Type       string          `json:"type"`
	Options    json.RawMessage `json:"options"`
	Hints      json.RawMessage `json:"hints"`
	Tags       []string        `json:"tags"`
	XPReward   int             `json:"xp_reward"`
}

// AnswerKey is the grading data of a problem.
type AnswerKey struct {
	ProblemID     string
	CorrectAnswer string
	Explanation   string
	XPReward      int
}

// Submission is one answer attempt.
type Submission struct {
	ProblemID        string
	Answer           string
	TimeSpentSeconds int
	HintsUsed        int
}

// Result is the stored audit row of a submission.
type Result struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	ProblemID        string    `json:"problem_id"`
	IsCorrect        bool      `json:"is_correct"`
	UserAnswer       string    `json:"user_answer"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	HintsUsed        int       `json:"hints_used"`
	XPEarned         int       `json:"xp_earned"`
	SolvedAt         time.Time `json:"solved_at"`
}

// ResultRecord is a past result joined with its problem.
type ResultRecord struct {
	Result
	Question string `json:"question"`
	Category string `json:"category"`
}

// Feedback is returned to the learner after a submission.
type Feedback struct {
	IsCorrect   bool   `json:"is_correct"`
	XPEarned    int    `json:"xp_earned"`
	Explanation string `json:"explanation"`

	// CorrectAnswer is only set when the submission was wrong.
	CorrectAnswer *string    `json:"correct_answer,omitempty"`
	User          *auth.User `json:"user,omitempty"`
}

// # Domain Errors

var (
	ErrProblemNotFound = apperr.NotFound("Problem").WithCode("PROBLEM_NOT_FOUND")
)

// # Repository Contracts

// ProblemRepository defines the persistence contract for problems and results.
type ProblemRepository interface {
	// ListByLesson returns the problems of a lesson, easiest first.
	ListByLesson(context context.Context, lessonID string) ([]*Problem, error)

	// FindAnswerKey returns grading data, or ErrProblemNotFound.
	FindAnswerKey(context context.Context, problemID string) (*AnswerKey, error)

	/*
		Record appends the result row and, when it earned XP, credits the user
		in the same transaction.

		Parameters:
		  - context: context.Context
		  - result: *Result (ID and SolvedAt are filled by the store)

		Returns:
		  - *auth.User: The credited account, nil when nothing was earned
		  - error: Storage failures
	*/
	Record(context context.Context, result *Result) (*auth.User, error)

	// ListResults returns a page of the user's results, newest first, and the total count.
	ListResults(context context.Context, userID string, page pagination.Params) ([]*ResultRecord, int, error)
}
