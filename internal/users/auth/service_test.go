// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/sec"
	"github.com/taibuivan/mathlab/internal/users/auth"
	"github.com/taibuivan/mathlab/internal/users/social"
	"github.com/taibuivan/mathlab/pkg/pointer"
)

func signup(t *testing.T, h *harness, email string) *auth.Session {
	t.Helper()
	session, err := h.service.SignupWithEmail(context.Background(), auth.SignupInput{
		Email:       email,
		Password:    "correct-horse",
		DisplayName: "Learner",
	})
	require.NoError(t, err)
	return session
}

/*
TestSignupWithEmail_Defaults verifies starting progression and the first lesson unlock.
*/
func TestSignupWithEmail_Defaults(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{})

	session := signup(t, h, "  New@MathLab.app ")

	user := session.User
	assert.Equal(t, "new@mathlab.app", user.Email)
	assert.Equal(t, 5, user.Hearts)
	assert.Equal(t, 1, user.Level)
	assert.Equal(t, 0, user.XP)
	assert.Equal(t, constants.DefaultGrade, user.CurrentGrade)
	assert.Equal(t, auth.ProviderEmail, user.AuthProvider)
	assert.Equal(t, []string{user.ID}, h.unlocker.unlocked)

	assert.NotEmpty(t, session.AccessToken)
	assert.True(t, h.redis.Exists(constants.RedisPrefixRefreshToken+session.RefreshToken))
	assert.Equal(t, 7*24*time.Hour, h.redis.TTL(constants.RedisPrefixRefreshToken+session.RefreshToken))
}

/*
TestSignupWithEmail_Duplicate verifies the unique index is surfaced as DUPLICATE_EMAIL.
*/
func TestSignupWithEmail_Duplicate(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{})
	signup(t, h, "dup@mathlab.app")

	_, err := h.service.SignupWithEmail(context.Background(), auth.SignupInput{
		Email: "DUP@mathlab.app", Password: "another-pass", DisplayName: "Other",
	})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)
}

/*
TestSignupWithEmail_PasswordTooLong verifies bcrypt's input limit surfaces as a validation error.
*/
func TestSignupWithEmail_PasswordTooLong(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{})

	_, err := h.service.SignupWithEmail(context.Background(), auth.SignupInput{
		Email: "long@mathlab.app", Password: strings.Repeat("p", sec.MaxPasswordBytes+1), DisplayName: "Long",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooLong)
	assert.Equal(t, 400, apperr.As(err).HTTPStatus)
}

/*
TestSignupWithEmail_UnlockFailureIsNotFatal verifies the account survives a failed unlock.
*/
func TestSignupWithEmail_UnlockFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{})
	h.unlocker.err = errBoom

	session := signup(t, h, "unlock@mathlab.app")
	assert.NotNil(t, h.users.get(session.User.ID))
}

/*
TestLoginWithEmail_Indistinguishable verifies unknown email and wrong password fail the same way.
*/
func TestLoginWithEmail_Indistinguishable(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{})
	signup(t, h, "known@mathlab.app")

	_, unknownErr := h.service.LoginWithEmail(context.Background(), "ghost@mathlab.app", "whatever1")
	_, wrongErr := h.service.LoginWithEmail(context.Background(), "known@mathlab.app", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, apperr.As(unknownErr).Code, apperr.As(wrongErr).Code)
}

/*
TestSessionLifecycle verifies login, refresh, logout and refresh-after-logout.
*/
func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{})
	signup(t, h, "cycle@mathlab.app")
	ctx := context.Background()

	session, err := h.service.LoginWithEmail(ctx, "Cycle@MathLab.app", "correct-horse")
	require.NoError(t, err)
	require.NotNil(t, session.User.LastLoginAt)

	accessToken, err := h.service.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "access:"+session.User.ID, accessToken)

	require.NoError(t, h.service.Logout(ctx, session.RefreshToken))
	require.NoError(t, h.service.Logout(ctx, session.RefreshToken), "logout is idempotent")

	_, err = h.service.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	_, err = h.service.Refresh(ctx, "")
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

/*
TestRefresh_ExpiredRecord verifies that cache expiry ends the session.
*/
func TestRefresh_ExpiredRecord(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{RefreshTTL: time.Hour})
	session := signup(t, h, "ttl@mathlab.app")

	h.redis.FastForward(2 * time.Hour)

	_, err := h.service.Refresh(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

/*
TestLogin_Streak covers continuation, reset and the same-day no-op.
*/
func TestLogin_Streak(t *testing.T) {
	tests := []struct {
		name       string
		lastDate   *time.Time
		streak     int
		wantStreak int
	}{
		{"first ever login", nil, 0, 1},
		{"logged in yesterday", pointer.To(today.AddDate(0, 0, -1)), 4, 5},
		{"gap of three days", pointer.To(today.AddDate(0, 0, -3)), 9, 1},
		{"already today", pointer.To(today), 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, auth.Settings{})
			session := signup(t, h, "streak@mathlab.app")

			stored := h.users.get(session.User.ID)
			stored.LastStreakDate = tt.lastDate
			stored.StreakDays = tt.streak
			h.users.put(stored)

			result, err := h.service.LoginWithEmail(context.Background(), "streak@mathlab.app", "correct-horse")
			require.NoError(t, err)

			assert.Equal(t, tt.wantStreak, result.User.StreakDays)
			assert.Equal(t, tt.wantStreak, h.users.get(session.User.ID).StreakDays)
			require.NotNil(t, result.User.LastStreakDate)
			assert.True(t, today.Equal(*result.User.LastStreakDate))
		})
	}
}

/*
TestLogin_StreakCountedOnce verifies a second login on the same day does not advance the streak.
*/
func TestLogin_StreakCountedOnce(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{})
	session := signup(t, h, "twice@mathlab.app")

	stored := h.users.get(session.User.ID)
	stored.LastStreakDate = pointer.To(today.AddDate(0, 0, -1))
	stored.StreakDays = 2
	h.users.put(stored)

	for range 2 {
		_, err := h.service.LoginWithEmail(context.Background(), "twice@mathlab.app", "correct-horse")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, h.users.get(session.User.ID).StreakDays)
}

/*
TestLoginWithProvider covers creation, repeat login and the unsupported provider path.
*/
func TestLoginWithProvider(t *testing.T) {
	kakao := fakeProvider{profile: &social.Profile{Subject: "991", DisplayName: "kakao_991"}}
	h := newHarness(t, map[auth.Provider]social.Provider{auth.ProviderKakao: kakao}, auth.Settings{})
	ctx := context.Background()

	first, err := h.service.LoginWithProvider(ctx, auth.ProviderKakao, "kakao-access")
	require.NoError(t, err)
	assert.Equal(t, "kakao_991@mathlab.app", first.User.Email)
	assert.Equal(t, auth.ProviderKakao, first.User.AuthProvider)
	assert.False(t, first.User.HasPassword())
	assert.Equal(t, 1, first.User.StreakDays)
	assert.Len(t, h.unlocker.unlocked, 1)

	second, err := h.service.LoginWithProvider(ctx, auth.ProviderKakao, "kakao-access")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Len(t, h.unlocker.unlocked, 1, "only new accounts unlock the first lesson")

	_, err = h.service.LoginWithProvider(ctx, auth.ProviderGoogle, "token")
	assert.ErrorIs(t, err, auth.ErrUnsupportedProvider)

	_, err = h.service.LoginWithProvider(ctx, auth.ProviderEmail, "token")
	assert.ErrorIs(t, err, auth.ErrUnsupportedProvider)
}

/*
TestLoginWithProvider_LinksEmailAccount verifies linking clears the password and keeps an existing avatar.
*/
func TestLoginWithProvider_LinksEmailAccount(t *testing.T) {
	google := fakeProvider{profile: &social.Profile{
		Subject:     "g-1",
		Email:       "Link@MathLab.app",
		DisplayName: "Linked",
		AvatarURL:   "https://lh3/new.png",
	}}
	h := newHarness(t, map[auth.Provider]social.Provider{auth.ProviderGoogle: google}, auth.Settings{})

	existing := signup(t, h, "link@mathlab.app")
	stored := h.users.get(existing.User.ID)
	stored.AvatarURL = pointer.To("https://cdn/old.png")
	h.users.put(stored)

	session, err := h.service.LoginWithProvider(context.Background(), auth.ProviderGoogle, "id-token")
	require.NoError(t, err)

	assert.Equal(t, existing.User.ID, session.User.ID)
	assert.Equal(t, auth.ProviderGoogle, session.User.AuthProvider)
	assert.False(t, session.User.HasPassword())
	assert.Equal(t, "https://cdn/old.png", *session.User.AvatarURL)
	assert.Len(t, h.unlocker.unlocked, 1, "linking is not a signup")
}

/*
TestLoginWithProvider_VerifiedEmailRequired verifies the hardened linking policy.
*/
func TestLoginWithProvider_VerifiedEmailRequired(t *testing.T) {
	kakao := fakeProvider{profile: &social.Profile{Subject: "7", Email: "victim@mathlab.app"}}
	h := newHarness(t,
		map[auth.Provider]social.Provider{auth.ProviderKakao: kakao},
		auth.Settings{RequireVerifiedEmailLink: true},
	)
	signup(t, h, "victim@mathlab.app")

	_, err := h.service.LoginWithProvider(context.Background(), auth.ProviderKakao, "token")
	assert.ErrorIs(t, err, auth.ErrUnverifiedEmailLink)
}

/*
TestLoginWithProvider_ProviderFailure verifies provider errors reach the caller unchanged.
*/
func TestLoginWithProvider_ProviderFailure(t *testing.T) {
	h := newHarness(t, map[auth.Provider]social.Provider{
		auth.ProviderGoogle: fakeProvider{err: social.ErrTokenRejected},
		auth.ProviderApple:  social.Disabled{},
	}, auth.Settings{})

	_, err := h.service.LoginWithProvider(context.Background(), auth.ProviderGoogle, "forged")
	assert.ErrorIs(t, err, social.ErrTokenRejected)

	_, err = h.service.LoginWithProvider(context.Background(), auth.ProviderApple, "token")
	assert.ErrorIs(t, err, social.ErrProviderDisabled)
}

/*
TestCurrentUser verifies lookup of the authenticated account.
*/
func TestCurrentUser(t *testing.T) {
	h := newHarness(t, nil, auth.Settings{})
	session := signup(t, h, "me@mathlab.app")

	user, err := h.service.CurrentUser(context.Background(), session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@mathlab.app", user.Email)

	_, err = h.service.CurrentUser(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
