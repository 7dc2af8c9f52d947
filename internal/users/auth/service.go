// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/mathlab/internal/platform/calendar"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/dberr"
	"github.com/taibuivan/mathlab/internal/platform/metrics"
	"github.com/taibuivan/mathlab/internal/platform/sec"
	"github.com/taibuivan/mathlab/internal/users/social"
	"github.com/taibuivan/mathlab/pkg/pointer"
	"github.com/taibuivan/mathlab/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a short-lived signed JWT for API calls.
	GenerateAccessToken(userID, email string) (string, error)

	// GenerateRefreshToken creates a long-lived signed JWT bound to tokenID.
	GenerateRefreshToken(userID, tokenID string) (string, error)
}

// Dependencies groups the collaborators of [Service].
type Dependencies struct {
	Users     UserRepository
	Sessions  SessionStore
	Lessons   LessonUnlocker
	Tokens    TokenProvider
	Hasher    *sec.Hasher
	Providers map[Provider]social.Provider
	Clock     *calendar.Clock
	Metrics   metrics.Recorder
	Logger    *slog.Logger
}

// Settings holds the tunables of [Service].
type Settings struct {
	// RefreshTTL is how long a refresh token record lives in the cache.
	RefreshTTL time.Duration

	// RequireVerifiedEmailLink only links a social identity to an existing
	// account when the provider vouches for the email.
	RequireVerifiedEmailLink bool
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, account
// linking or token issuance must be reviewed with care.
type Service struct {
	userRepository UserRepository
	sessionStore   SessionStore
	lessonUnlocker LessonUnlocker
	tokenProvider  TokenProvider
	hasher         *sec.Hasher
	providers      map[Provider]social.Provider
	clock          *calendar.Clock
	metrics        metrics.Recorder
	logger         *slog.Logger
	settings       Settings
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(deps Dependencies, settings Settings) *Service {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = calendar.New(time.UTC)
	}
	return &Service{
		userRepository: deps.Users,
		sessionStore:   deps.Sessions,
		lessonUnlocker: deps.Lessons,
		tokenProvider:  deps.Tokens,
		hasher:         deps.Hasher,
		providers:      deps.Providers,
		clock:          deps.Clock,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		settings:       settings,
	}
}

// # Registration Flow

// SignupInput holds the data required to enroll a new learner.
type SignupInput struct {
	Email       string
	Password    string
	DisplayName string
	Grade       string
}

/*
SignupWithEmail creates a password account and signs it in.

Description: The first lesson is unlocked as a best-effort side effect. If
that fails the account still exists and the failure is only logged.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *Session: The new user and a token pair
  - error: ErrDuplicateEmail or storage errors
*/
func (service *Service) SignupWithEmail(context context.Context, input SignupInput) (*Session, error) {

	// Prevent storing plain-text passwords.
	hashedPassword, err := service.hasher.HashPassword(input.Password)
	if errors.Is(err, sec.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	grade := strings.TrimSpace(input.Grade)
	if grade == "" {
		grade = constants.DefaultGrade
	}

	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        normalizeEmail(input.Email),
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: &hashedPassword,
		AuthProvider: ProviderEmail,
		CurrentGrade: grade,
	}

	// Uniqueness is enforced by the database, not by a racy pre-check.
	if err := service.userRepository.Create(context, user); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	service.unlockFirstLesson(context, user.ID)
	service.logger.Info("auth_user_signed_up", slog.String("user_id", user.ID), slog.String("provider", string(ProviderEmail)))

	return service.issueSession(context, user)
}

// # Authentication Flow

/*
LoginWithEmail validates a password and signs the user in.

Description: An unknown email and a wrong password produce the same error.
A dummy hash comparison runs for unknown emails so both paths cost the same.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Session: User and token pair
  - error: ErrInvalidCredentials or storage failures
*/
func (service *Service) LoginWithEmail(context context.Context, email, password string) (*Session, error) {
	user, err := service.userRepository.FindEmailAccount(context, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			service.hasher.CompareDummy(password)
			service.metrics.RecordLogin(string(ProviderEmail), metrics.OutcomeFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() || !service.hasher.CheckPasswordHash(password, *user.PasswordHash) {
		service.metrics.RecordLogin(string(ProviderEmail), metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	return service.completeLogin(context, user, ProviderEmail)
}

/*
LoginWithProvider signs a user in with a third-party identity token.

Description: The account is resolved by provider identity first, then by
email (linking the existing account), and is otherwise created. Only a newly
created account gets its first lesson unlocked.

Parameters:
  - context: context.Context
  - provider: Provider (google, kakao, apple)
  - token: string (provider-issued token)

Returns:
  - *Session: User and token pair
  - error: ErrUnsupportedProvider, provider failures or storage failures
*/
func (service *Service) LoginWithProvider(context context.Context, provider Provider, token string) (*Session, error) {
	verifier, ok := service.providers[provider]
	if !ok || provider == ProviderEmail {
		return nil, ErrUnsupportedProvider
	}

	profile, err := verifier.Verify(context, token)
	if err != nil {
		service.metrics.RecordLogin(string(provider), metrics.OutcomeFailure)
		return nil, err
	}

	user, created, err := service.resolveSocialUser(context, provider, profile)
	if err != nil {
		service.metrics.RecordLogin(string(provider), metrics.OutcomeFailure)
		return nil, err
	}

	if created {
		service.unlockFirstLesson(context, user.ID)
		service.logger.Info("auth_user_signed_up", slog.String("user_id", user.ID), slog.String("provider", string(provider)))
	}

	return service.completeLogin(context, user, provider)
}

// resolveSocialUser finds, links or creates the account behind a profile.
func (service *Service) resolveSocialUser(context context.Context, provider Provider, profile *social.Profile) (*User, bool, error) {
	user, err := service.userRepository.FindByProvider(context, provider, profile.Subject)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	avatar := optional(profile.AvatarURL)

	if profile.Email != "" {
		existing, err := service.userRepository.FindByEmail(context, normalizeEmail(profile.Email))
		switch {
		case err == nil:
			if service.settings.RequireVerifiedEmailLink && !profile.EmailVerified {
				return nil, false, ErrUnverifiedEmailLink
			}

			linked, err := service.userRepository.LinkProvider(context, existing.ID, provider, profile.Subject, avatar)
			if err != nil {
				return nil, false, fmt.Errorf("auth_service_link_failed: %w", err)
			}

			service.logger.Info("auth_social_account_linked",
				slog.String("user_id", linked.ID),
				slog.String("provider", string(provider)),
				slog.String("previous_provider", string(existing.AuthProvider)),
			)
			return linked, false, nil

		case !errors.Is(err, ErrUserNotFound):
			return nil, false, err
		}
	}

	email := profile.Email
	if email == "" {
		email = fmt.Sprintf("%s_%s@%s", provider, profile.Subject, constants.SyntheticEmailDomain)
	}
	email = normalizeEmail(email)

	displayName := strings.TrimSpace(profile.DisplayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	user = &User{
		ID:             uuid.New(),
		Email:          email,
		DisplayName:    displayName,
		AuthProvider:   provider,
		AuthProviderID: pointer.To(profile.Subject),
		CurrentGrade:   constants.DefaultGrade,
		AvatarURL:      avatar,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, false, ErrDuplicateEmail
		}
		return nil, false, fmt.Errorf("auth_service_social_signup_failed: %w", err)
	}

	return user, true, nil
}

// completeLogin runs the steps shared by every successful sign-in.
func (service *Service) completeLogin(context context.Context, user *User, provider Provider) (*Session, error) {
	if err := service.userRepository.TouchLogin(context, user.ID, service.clock.Now()); err != nil {
		return nil, fmt.Errorf("auth_service_touch_login_failed: %w", err)
	}

	user, err := service.advanceStreak(context, user)
	if err != nil {
		return nil, err
	}

	session, err := service.issueSession(context, user)
	if err != nil {
		return nil, err
	}

	service.metrics.RecordLogin(string(provider), metrics.OutcomeSuccess)
	return session, nil
}

/*
advanceStreak applies [NextStreak] for today's login.

Description: The write is a compare-and-set on last_streak_date. When a
concurrent login wins the race the fresh row is returned instead, so the
streak is counted once per day.
*/
func (service *Service) advanceStreak(context context.Context, user *User) (*User, error) {
	today := service.clock.Today()

	days, changed := NextStreak(user.LastStreakDate, user.StreakDays, today)
	if !changed {
		return user, nil
	}

	applied, err := service.userRepository.AdvanceStreak(context, user.ID, user.LastStreakDate, days, today)
	if err != nil {
		return nil, fmt.Errorf("auth_service_streak_failed: %w", err)
	}

	if !applied {
		return service.userRepository.FindByID(context, user.ID)
	}

	user.StreakDays = days
	user.LastStreakDate = &today
	return user, nil
}

// # Session Management

// issueSession signs a token pair and registers the refresh token.
func (service *Service) issueSession(context context.Context, user *User) (*Session, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	tokenID := uuid.New()
	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.ID, tokenID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	record := RefreshRecord{UserID: user.ID, TokenID: tokenID}
	if err := service.sessionStore.Save(context, refreshToken, record, service.settings.RefreshTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_save_failed: %w", err)
	}

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

/*
Refresh exchanges a live refresh token for a new access token.

Description: Validity is decided by the session cache alone. The refresh
token is not rotated and its lifetime is not extended.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - string: New access token
  - error: ErrInvalidRefreshToken or cache failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrInvalidRefreshToken
	}

	record, err := service.sessionStore.Find(context, refreshToken)
	if err != nil {
		return "", err
	}

	user, err := service.userRepository.FindByID(context, record.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	return accessToken, nil
}

/*
Logout revokes a refresh token. Unknown tokens are not an error.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Cache failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if err := service.sessionStore.Delete(context, refreshToken); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// CurrentUser returns the active account behind an access token.
func (service *Service) CurrentUser(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

// # Helpers

// unlockFirstLesson is best-effort: the account must survive a failure here.
func (service *Service) unlockFirstLesson(context context.Context, userID string) {
	if service.lessonUnlocker == nil {
		return
	}
	if err := service.lessonUnlocker.UnlockFirstLesson(context, userID); err != nil {
		service.logger.Error("auth_first_lesson_unlock_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return pointer.To(value)
}
