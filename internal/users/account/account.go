// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the learner's own profile and progression state.

It owns the score mutators that act on a single user row: XP credit with the
level-up rule, the hearts clamp, and profile edits. It also exposes the
aggregated statistics view.

# Architecture

  - Entities: Stats (read model). The User entity comes from the auth package.
  - Mutators: every change is a single SQL statement, so concurrent requests
    never lose updates.
  - XP credited here also feeds the weekly leaderboard.
*/
package account

import (
	"context"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/users/auth"
)

// # Domain Entities

// Stats is the read model behind the profile statistics screen.
type Stats struct {
	UserID            string  `json:"user_id"`
	DisplayName       string  `json:"display_name"`
	Level             int     `json:"level"`
	XP                int     `json:"xp"`
	StreakDays        int     `json:"streak_days"`
	Hearts            int     `json:"hearts"`
	LessonsCompleted  int     `json:"lessons_completed"`
	ProblemsAttempted int     `json:"problems_attempted"`
	ProblemsCorrect   int     `json:"problems_correct"`
	AccuracyPercent   float64 `json:"accuracy_percent"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	DisplayName *string
	AvatarURL   *string
}

// IsEmpty reports whether the patch changes nothing.
func (patch ProfilePatch) IsEmpty() bool {
	return patch.DisplayName == nil && patch.AvatarURL == nil
}

// ClampHeartsDelta bounds a hearts change to what can matter. Any delta
// beyond ±MaxHearts lands on the same clamp, so larger values never reach SQL.
func ClampHeartsDelta(delta int) int {
	return max(-constants.MaxHearts, min(constants.MaxHearts, delta))
}

// # Domain Errors

var (
	// ErrInvalidAmount rejects XP credits that are zero, negative or larger
	// than a stored counter can hold.
	ErrInvalidAmount = apperr.ValidationError("XP amount must be positive").WithCode("INVALID_AMOUNT")

	// ErrEmptyPatch rejects a profile update with no fields.
	ErrEmptyPatch = apperr.ValidationError("Nothing to update")
)

// # Repository Contracts

// AccountRepository defines the persistence contract for progression state.
type AccountRepository interface {
	/*
		FindByID retrieves an active user.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: auth.ErrUserNotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		AddXP credits amount and applies at most one level-up.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - amount: int (positive)

		Returns:
		  - *auth.User: The account after the credit
		  - error: auth.ErrUserNotFound or storage failures
	*/
	AddXP(context context.Context, userID string, amount int) (*auth.User, error)

	/*
		UpdateHearts adds delta and clamps the result to [0, MaxHearts].

		Parameters:
		  - context: context.Context
		  - userID: string
		  - delta: int (may be negative)

		Returns:
		  - *auth.User: The account after the change
		  - error: auth.ErrUserNotFound or storage failures
	*/
	UpdateHearts(context context.Context, userID string, delta int) (*auth.User, error)

	/*
		UpdateProfile applies a partial profile change.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - patch: ProfilePatch

		Returns:
		  - *auth.User: The updated account
		  - error: auth.ErrUserNotFound or storage failures
	*/
	UpdateProfile(context context.Context, userID string, patch ProfilePatch) (*auth.User, error)

	/*
		Stats reads the aggregated statistics of a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Stats: Aggregates
		  - error: auth.ErrUserNotFound or storage failures
	*/
	Stats(context context.Context, userID string) (*Stats, error)
}

// WeeklyXPRecorder receives XP credits for the weekly leaderboard.
type WeeklyXPRecorder interface {
	UpdateWeeklyXP(context context.Context, userID string, delta int) error
}
