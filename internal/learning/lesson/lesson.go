// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package lesson manages the ordered lesson catalog and each learner's
progress through it.

Lessons unlock one at a time by order_index. Completing a lesson marks it
done, unlocks its successor and credits the lesson reward in a single
transaction.
*/
package lesson

import (
	"context"
	"time"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/users/auth"
)

// # Domain Entities

// Lesson is a catalog entry.
type Lesson struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	OrderIndex    int       `json:"order_index"`
	XPReward      int       `json:"xp_reward"`
	ProblemsTotal int       `json:"problems_total"`
	CreatedAt     time.Time `json:"created_at"`
}

// Progress is one learner's state for one lesson.
type Progress struct {
	UserID            string     `json:"user_id"`
	LessonID          string     `json:"lesson_id"`
	IsUnlocked        bool       `json:"is_unlocked"`
	IsCompleted       bool       `json:"is_completed"`
	ProgressPercent   int        `json:"progress_percent"`
	ProblemsCompleted int        `json:"problems_completed"`
	ProblemsTotal     int        `json:"problems_total"`
	CompletedAt       *time.Time `json:"completed_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// LessonProgress is a catalog entry merged with the caller's progress.
// Lessons the learner never reached report locked with zero progress.
type LessonProgress struct {
	Lesson
	IsUnlocked        bool       `json:"is_unlocked"`
	IsCompleted       bool       `json:"is_completed"`
	ProgressPercent   int        `json:"progress_percent"`
	ProblemsCompleted int        `json:"problems_completed"`
	CompletedAt       *time.Time `json:"completed_at"`
}

// Completion is the outcome of completing a lesson.
type Completion struct {
	Progress *Progress `json:"progress"`

	// NextLessonID is nil when the completed lesson was the last one.
	NextLessonID *string    `json:"next_lesson_id"`
	XPAwarded    int        `json:"xp_awarded"`
	User         *auth.User `json:"user"`
}

// # Domain Errors

var (
	ErrLessonNotFound = apperr.NotFound("Lesson")
	ErrLessonLocked   = apperr.ValidationError("Lesson is locked").WithCode("LESSON_LOCKED")
)

// # Repository Contracts

// LessonRepository defines the persistence contract for lessons and progress.
type LessonRepository interface {
	// List returns the catalog ordered by order_index.
	List(context context.Context) ([]*Lesson, error)

	// ProgressOf returns every lesson with the user's progress merged in.
	ProgressOf(context context.Context, userID string) ([]*LessonProgress, error)

	// UnlockFirst unlocks the lesson with the smallest order_index.
	// It is a no-op when the catalog is empty or the lesson is already unlocked.
	UnlockFirst(context context.Context, userID string) error

	/*
		Complete marks a lesson completed, unlocks the next lesson and credits
		the lesson reward. All three writes share one transaction.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - lessonID: string

		Returns:
		  - *Completion: Progress, successor and the credited account
		  - error: ErrLessonNotFound, ErrLessonLocked or storage failures
	*/
	Complete(context context.Context, userID, lessonID string) (*Completion, error)
}
