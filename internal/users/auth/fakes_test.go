// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/mathlab/internal/platform/calendar"
	"github.com/taibuivan/mathlab/internal/platform/sec"
	"github.com/taibuivan/mathlab/internal/users/auth"
	"github.com/taibuivan/mathlab/internal/users/social"
)

// fakeUsers mimics the users table, including its defaults and unique index.
type fakeUsers struct {
	mu        sync.Mutex
	byID      map[string]*auth.User
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*auth.User{}}
}

func (repo *fakeUsers) snapshot(user *auth.User) *auth.User {
	clone := *user
	return &clone
}

func (repo *fakeUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.byID {
		if user.IsActive && match(user) {
			return repo.snapshot(user), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (repo *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool { return u.ID == id })
}

func (repo *fakeUsers) FindEmailAccount(_ context.Context, email string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool {
		return strings.EqualFold(u.Email, email) && u.AuthProvider == auth.ProviderEmail
	})
}

func (repo *fakeUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool { return strings.EqualFold(u.Email, email) })
}

func (repo *fakeUsers) FindByProvider(_ context.Context, provider auth.Provider, subject string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool {
		return u.AuthProvider == provider && u.AuthProviderID != nil && *u.AuthProviderID == subject
	})
}

func (repo *fakeUsers) Create(_ context.Context, user *auth.User) error {
	if repo.createErr != nil {
		return repo.createErr
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.byID {
		if existing.IsActive && strings.EqualFold(existing.Email, user.Email) {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		}
	}

	now := time.Now()
	user.Level, user.XP, user.StreakDays, user.Hearts = 1, 0, 0, 5
	user.CreatedAt, user.UpdatedAt, user.IsActive = now, now, true
	repo.byID[user.ID] = repo.snapshot(user)
	return nil
}

func (repo *fakeUsers) LinkProvider(_ context.Context, userID string, provider auth.Provider, subject string, avatarURL *string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.byID[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	user.AuthProvider = provider
	user.AuthProviderID = &subject
	user.PasswordHash = nil
	if user.AvatarURL == nil {
		user.AvatarURL = avatarURL
	}
	return repo.snapshot(user), nil
}

func (repo *fakeUsers) TouchLogin(_ context.Context, userID string, at time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.byID[userID]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (repo *fakeUsers) AdvanceStreak(_ context.Context, userID string, expected *time.Time, streakDays int, today time.Time) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.byID[userID]
	if !ok {
		return false, nil
	}
	same := (expected == nil && user.LastStreakDate == nil) ||
		(expected != nil && user.LastStreakDate != nil && expected.Equal(*user.LastStreakDate))
	if !same {
		return false, nil
	}
	user.StreakDays = streakDays
	user.LastStreakDate = &today
	return true, nil
}

// put seeds a stored user directly.
func (repo *fakeUsers) put(user *auth.User) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user.IsActive = true
	repo.byID[user.ID] = repo.snapshot(user)
}

func (repo *fakeUsers) get(id string) *auth.User {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.snapshot(repo.byID[id])
}

type fakeUnlocker struct {
	unlocked []string
	err      error
}

func (unlocker *fakeUnlocker) UnlockFirstLesson(_ context.Context, userID string) error {
	if unlocker.err != nil {
		return unlocker.err
	}
	unlocker.unlocked = append(unlocker.unlocked, userID)
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(userID, _ string) (string, error) {
	return "access:" + userID, nil
}

func (fakeTokens) GenerateRefreshToken(userID, tokenID string) (string, error) {
	return "refresh:" + userID + ":" + tokenID, nil
}

type fakeProvider struct {
	profile *social.Profile
	err     error
}

func (provider fakeProvider) Verify(context.Context, string) (*social.Profile, error) {
	return provider.profile, provider.err
}

var errBoom = errors.New("boom")

// today is the fixed "now" of every service test.
var today = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

type harness struct {
	service  *auth.Service
	users    *fakeUsers
	unlocker *fakeUnlocker
	redis    *miniredis.Miniredis
}

func newHarness(t *testing.T, providers map[auth.Provider]social.Provider, settings auth.Settings) *harness {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if settings.RefreshTTL == 0 {
		settings.RefreshTTL = 7 * 24 * time.Hour
	}

	h := &harness{
		users:    newFakeUsers(),
		unlocker: &fakeUnlocker{},
		redis:    server,
	}
	h.service = auth.NewService(auth.Dependencies{
		Users:     h.users,
		Sessions:  auth.NewSessionStore(client),
		Lessons:   h.unlocker,
		Tokens:    fakeTokens{},
		Hasher:    sec.NewHasher(4),
		Providers: providers,
		Clock:     calendar.Fixed(time.UTC, today.Add(9*time.Hour)),
	}, settings)
	return h
}
