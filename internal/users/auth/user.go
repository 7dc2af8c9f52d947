// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core identity entity (User), the refresh-token session record,
and the orchestration of email and social sign-in, including the daily streak
update that runs on every successful login.

# Architecture

Entities defined here are shared with the account package, which owns the
progression mutators (XP, hearts, profile) over the same users table.
*/
package auth

import (
	"time"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
)

// # Domain Entities

// Provider identifies how an account authenticates.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
	ProviderApple  Provider = "apple"
)

// User represents a MathLab learner together with their progression state.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	DisplayName    string     `json:"display_name"`
	PasswordHash   *string    `json:"-"` // Explicitly omitted from JSON for security.
	AuthProvider   Provider   `json:"auth_provider"`
	AuthProviderID *string    `json:"-"`
	Level          int        `json:"level"`
	XP             int        `json:"xp"`
	StreakDays     int        `json:"streak_days"`
	Hearts         int        `json:"hearts"`
	LastStreakDate *time.Time `json:"last_streak_date"`
	CurrentGrade   string     `json:"current_grade"`
	AvatarURL      *string    `json:"avatar_url"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	IsActive       bool       `json:"-"`
}

// HasPassword reports whether the account can sign in with a password.
func (user *User) HasPassword() bool {
	return user.PasswordHash != nil && *user.PasswordHash != ""
}

// Session is the token pair handed to a client after signup or login.
type Session struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRecord is the cache entry that keeps a refresh token alive.
type RefreshRecord struct {
	UserID  string `json:"userId"`
	TokenID string `json:"tokenId"`
}

// # Domain Errors

var (
	// ErrUserNotFound is returned by repositories when no active account matches.
	ErrUserNotFound = apperr.NotFound("User")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password").WithCode("INVALID_CREDENTIALS")

	// ErrDuplicateEmail is returned when signup collides with an active account.
	ErrDuplicateEmail = apperr.Conflict("Email is already registered").WithCode("DUPLICATE_EMAIL")

	// ErrInvalidRefreshToken is returned for unknown, expired or revoked refresh tokens.
	ErrInvalidRefreshToken = apperr.Unauthorized("Invalid or expired refresh token").WithCode("INVALID_REFRESH_TOKEN")

	// ErrUnverifiedEmailLink blocks linking a social identity through an unverified email.
	ErrUnverifiedEmailLink = apperr.Conflict("An account with this email already exists").WithCode("EMAIL_NOT_VERIFIED")

	// ErrUnsupportedProvider is returned for a login provider that is not known.
	ErrUnsupportedProvider = apperr.ValidationError("Unsupported login provider").WithCode("UNSUPPORTED_PROVIDER")

	// ErrPasswordTooLong rejects passwords bcrypt cannot hash.
	ErrPasswordTooLong = apperr.ValidationError("Password must be at most 72 bytes").WithCode("PASSWORD_TOO_LONG")
)

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldDisplayName  = "display_name"
	FieldGrade        = "grade"
	FieldToken        = "token"
	FieldRefreshToken = "refresh_token"
	FieldAccessToken  = "access_token"
)

// # Authentication Constraints

const (
	// MinPasswordLength is enforced at signup only.
	MinPasswordLength = 8

	// MaxDisplayNameLength bounds display names in runes.
	MaxDisplayNameLength = 50

	// MaxGradeLength bounds the free-form grade label.
	MaxGradeLength = 20
)
