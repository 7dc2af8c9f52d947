// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package leaderboard ranks learners by the XP they earned in the current week.

Weeks start on Monday in the application time zone. Every XP credit feeds
the entry of the current week and re-materializes the ranks of its league.
Reads of the top list go through a short-lived Redis cache.

# Consistency

The cached list may be up to LeaderboardCacheTTL old. A weekly XP update
deletes the bronze list of the current week, so only other leagues can lag.
*/
package leaderboard

import (
	"context"
	"time"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
)

// # Limits

const (
	DefaultLimit = 50
	MaxLimit     = 100

	// MaxLeagueLength bounds the league query parameter.
	MaxLeagueLength = 20
)

// # Domain Entities

// Entry is one row of the weekly top list.
type Entry struct {
	// Rank is nil until the entry has been ranked.
	Rank        *int    `json:"rank"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	WeeklyXP    int     `json:"weekly_xp"`
}

// Standing is a single user's position in the current week.
type Standing struct {
	// Rank is nil for an entry created by this lookup. It is never 0.
	Rank      *int   `json:"rank"`
	League    string `json:"league"`
	WeeklyXP  int    `json:"weekly_xp"`
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
}

// Week identifies a leaderboard period.
type Week struct {
	Start time.Time
	End   time.Time
}

var errEntryNotFound = apperr.NotFound("Leaderboard entry")

// # Contracts

// Repository defines the persistence contract for leaderboard entries.
type Repository interface {
	// Top returns up to limit entries of a league ordered by rank, unranked last.
	Top(context context.Context, league string, week Week, limit int) ([]*Entry, error)

	// Find returns the user's standing for the week, or a NOT_FOUND error.
	Find(context context.Context, userID string, week Week) (*Standing, error)

	// Create inserts a zero-XP entry. An existing entry is left untouched.
	Create(context context.Context, userID, league string, week Week) error

	/*
		AddWeeklyXP upserts the user's entry with delta in a single statement.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - delta: int
		  - week: Week

		Returns:
		  - string: League of the entry
		  - error: Storage failures
	*/
	AddWeeklyXP(context context.Context, userID string, delta int, week Week) (string, error)

	// Rerank recomputes the materialized ranks of one league and week.
	// It is idempotent; a failed run is repaired by the next one.
	Rerank(context context.Context, league string, week Week) error
}

// Cache stores serialized top lists.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(context context.Context, key string) ([]byte, bool, error)
	Set(context context.Context, key string, value []byte, ttl time.Duration) error
	Delete(context context.Context, key string) error
}
