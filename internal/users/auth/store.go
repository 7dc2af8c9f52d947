// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
// Lookups only ever see active accounts and report a miss as [ErrUserNotFound].
type UserRepository interface {

	/*
		FindByID returns the active account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindEmailAccount returns the password account registered under email.
		Social accounts sharing the email are not considered.

		Parameters:
		  - context: context.Context
		  - email: string (normalized)

		Returns:
		  - *User: Hydrated entity including the password hash
		  - error: ErrUserNotFound or database failures
	*/
	FindEmailAccount(context context.Context, email string) (*User, error)

	/*
		FindByEmail returns the active account holding email, whatever its provider.

		Parameters:
		  - context: context.Context
		  - email: string (normalized)

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByProvider resolves a social identity.

		Parameters:
		  - context: context.Context
		  - provider: Provider
		  - providerUserID: string (the provider's subject)

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database failures
	*/
	FindByProvider(context context.Context, provider Provider, providerUserID string) (*User, error)

	/*
		Create persists a brand-new account. Storage defaults (level, xp,
		hearts, timestamps) are written back into user.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Unique violations (email, provider identity) or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		LinkProvider attaches a social identity to an existing account. The
		password hash is cleared and the avatar is only filled when unset.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - provider: Provider
		  - providerUserID: string
		  - avatarURL: *string (optional)

		Returns:
		  - *User: The account after linking
		  - error: ErrUserNotFound or persistence failures
	*/
	LinkProvider(context context.Context, userID string, provider Provider, providerUserID string, avatarURL *string) (*User, error)

	/*
		TouchLogin records the time of a successful sign-in.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	TouchLogin(context context.Context, userID string, at time.Time) error

	/*
		AdvanceStreak writes a new streak only if last_streak_date still holds
		the value the caller based its decision on.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - expected: *time.Time (last_streak_date as read, nil for never)
		  - streakDays: int
		  - today: time.Time (calendar date)

		Returns:
		  - bool: false when another request changed the streak first
		  - error: Persistence failures
	*/
	AdvanceStreak(context context.Context, userID string, expected *time.Time, streakDays int, today time.Time) (bool, error)
}

// LessonUnlocker opens the first lesson for a freshly created account.
type LessonUnlocker interface {
	UnlockFirstLesson(context context.Context, userID string) error
}

// # Session Data Access

// SessionStore keeps refresh tokens alive. A token is valid exactly as long
// as its record exists.
type SessionStore interface {

	/*
		Save stores a refresh token record for ttl.

		Parameters:
		  - context: context.Context
		  - token: string
		  - record: RefreshRecord
		  - ttl: time.Duration

		Returns:
		  - error: Cache failures
	*/
	Save(context context.Context, token string, record RefreshRecord, ttl time.Duration) error

	/*
		Find returns the record for a refresh token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *RefreshRecord: The stored record
		  - error: ErrInvalidRefreshToken on a miss, cache failures otherwise
	*/
	Find(context context.Context, token string) (*RefreshRecord, error)

	/*
		Delete removes a refresh token. Deleting an unknown token is not an error.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Cache failures
	*/
	Delete(context context.Context, token string) error
}
