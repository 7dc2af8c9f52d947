// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/mathlab/internal/platform/metrics"
	"github.com/taibuivan/mathlab/internal/users/account"
)

// Service implements lesson use cases.
type Service struct {
	lessonRepository LessonRepository
	weeklyXP         account.WeeklyXPRecorder
	metrics          metrics.Recorder
	logger           *slog.Logger
}

// NewService constructs a new lesson [Service].
func NewService(repository LessonRepository, weeklyXP account.WeeklyXPRecorder, recorder metrics.Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		lessonRepository: repository,
		weeklyXP:         weeklyXP,
		metrics:          recorder,
		logger:           logger,
	}
}

// ListLessons returns the whole catalog.
func (service *Service) ListLessons(context context.Context) ([]*Lesson, error) {
	return service.lessonRepository.List(context)
}

// GetProgress returns the catalog merged with the user's progress.
func (service *Service) GetProgress(context context.Context, userID string) ([]*LessonProgress, error) {
	return service.lessonRepository.ProgressOf(context, userID)
}

// UnlockFirstLesson gives a new account access to the first lesson.
func (service *Service) UnlockFirstLesson(context context.Context, userID string) error {
	if err := service.lessonRepository.UnlockFirst(context, userID); err != nil {
		return fmt.Errorf("lesson_service_unlock_first_failed: %w", err)
	}
	return nil
}

/*
CompleteLesson finishes a lesson for the user.

Description: Completion, successor unlock and the XP credit commit or roll
back together. Completing a lesson again repeats the reward. The weekly
leaderboard is fed after the commit on a best-effort basis.

Parameters:
  - context: context.Context
  - userID: string
  - lessonID: string

Returns:
  - *Completion: Updated progress, successor and account
  - error: ErrLessonNotFound, ErrLessonLocked or storage errors
*/
func (service *Service) CompleteLesson(context context.Context, userID, lessonID string) (*Completion, error) {
	completion, err := service.lessonRepository.Complete(context, userID, lessonID)
	if err != nil {
		return nil, err
	}

	service.metrics.RecordXP(metrics.SourceLesson, completion.XPAwarded)
	service.logger.Info("lesson_completed",
		slog.String("user_id", userID),
		slog.String("lesson_id", lessonID),
		slog.Int("xp_awarded", completion.XPAwarded),
	)

	if service.weeklyXP != nil && completion.XPAwarded > 0 {
		if err := service.weeklyXP.UpdateWeeklyXP(context, userID, completion.XPAwarded); err != nil {
			service.logger.Warn("lesson_weekly_xp_feed_failed", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	return completion, nil
}
