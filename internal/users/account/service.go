// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/metrics"
	"github.com/taibuivan/mathlab/internal/users/auth"
)

// Service manages the learner's own account state.
type Service struct {
	accountRepository AccountRepository
	weeklyXP          WeeklyXPRecorder
	metrics           metrics.Recorder
	logger            *slog.Logger
}

// NewService constructs a new account [Service]. weeklyXP may be nil, in
// which case XP credits do not reach the leaderboard.
func NewService(repository AccountRepository, weeklyXP WeeklyXPRecorder, recorder metrics.Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accountRepository: repository,
		weeklyXP:          weeklyXP,
		metrics:           recorder,
		logger:            logger,
	}
}

// GetMe returns the caller's account.
func (service *Service) GetMe(context context.Context, userID string) (*auth.User, error) {
	return service.accountRepository.FindByID(context, userID)
}

/*
AddXP credits XP to the user and applies the level-up rule.

Description: Reaching level * XPPerLevel total XP raises the level by exactly
one, even if the credit would cover several thresholds. The weekly
leaderboard is fed afterwards on a best-effort basis.

Parameters:
  - context: context.Context
  - userID: string
  - amount: int (must be positive)

Returns:
  - *auth.User: The account after the credit
  - error: ErrInvalidAmount, auth.ErrUserNotFound or storage errors
*/
func (service *Service) AddXP(context context.Context, userID string, amount int) (*auth.User, error) {
	if amount <= 0 || amount > constants.MaxCounterValue {
		return nil, ErrInvalidAmount
	}

	user, err := service.accountRepository.AddXP(context, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("account_service_add_xp_failed: %w", err)
	}

	service.metrics.RecordXP(metrics.SourceManual, amount)
	service.feedLeaderboard(context, userID, amount)

	return user, nil
}

/*
UpdateHearts changes the heart count by delta, clamped to [0, MaxHearts].

Parameters:
  - context: context.Context
  - userID: string
  - delta: int (negative spends hearts)

Returns:
  - *auth.User: The account after the change
  - error: auth.ErrUserNotFound or storage errors
*/
func (service *Service) UpdateHearts(context context.Context, userID string, delta int) (*auth.User, error) {
	user, err := service.accountRepository.UpdateHearts(context, userID, ClampHeartsDelta(delta))
	if err != nil {
		return nil, fmt.Errorf("account_service_update_hearts_failed: %w", err)
	}
	return user, nil
}

/*
UpdateProfile changes the display name and/or avatar.

Description: Display names are trimmed and NFC-normalized so that composed
and decomposed Hangul compare and count the same.

Parameters:
  - context: context.Context
  - userID: string
  - patch: ProfilePatch

Returns:
  - *auth.User: The updated account
  - error: ErrEmptyPatch, auth.ErrUserNotFound or storage errors
*/
func (service *Service) UpdateProfile(context context.Context, userID string, patch ProfilePatch) (*auth.User, error) {
	if patch.DisplayName != nil {
		name := NormalizeDisplayName(*patch.DisplayName)
		patch.DisplayName = &name
	}
	if patch.AvatarURL != nil {
		avatar := strings.TrimSpace(*patch.AvatarURL)
		patch.AvatarURL = &avatar
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	user, err := service.accountRepository.UpdateProfile(context, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_profile_failed: %w", err)
	}

	service.logger.Info("account_profile_updated", slog.String("user_id", userID))
	return user, nil
}

// GetStats returns the aggregated statistics of the caller.
func (service *Service) GetStats(context context.Context, userID string) (*Stats, error) {
	return service.accountRepository.Stats(context, userID)
}

// NormalizeDisplayName trims and NFC-normalizes a display name.
func NormalizeDisplayName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func (service *Service) feedLeaderboard(context context.Context, userID string, amount int) {
	if service.weeklyXP == nil {
		return
	}
	if err := service.weeklyXP.UpdateWeeklyXP(context, userID, amount); err != nil {
		service.logger.Warn("account_weekly_xp_feed_failed",
			slog.String("user_id", userID),
			slog.Int("amount", amount),
			slog.Any("error", err),
		)
	}
}
