// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package problem

import (
	"context"
	"log/slog"

	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/metrics"
	"github.com/taibuivan/mathlab/internal/platform/validate"
	"github.com/taibuivan/mathlab/internal/users/account"
	"github.com/taibuivan/mathlab/pkg/pagination"
	"github.com/taibuivan/mathlab/pkg/uuid"
)

// Validation field names.
const (
	FieldLessonID  = "lessonId"
	FieldProblemID = "problem_id"
	FieldAnswer    = "answer"
	FieldTimeSpent = "time_spent"
	FieldHintsUsed = "hints_used"
)

// Service implements problem use cases.
type Service struct {
	problemRepository ProblemRepository
	weeklyXP          account.WeeklyXPRecorder
	metrics           metrics.Recorder
	logger            *slog.Logger
}

// NewService constructs a new problem [Service].
func NewService(repository ProblemRepository, weeklyXP account.WeeklyXPRecorder, recorder metrics.Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		problemRepository: repository,
		weeklyXP:          weeklyXP,
		metrics:           recorder,
		logger:            logger,
	}
}

// ListProblems returns the problems of a lesson without their answers.
func (service *Service) ListProblems(context context.Context, lessonID string) ([]*Problem, error) {
	return service.problemRepository.ListByLesson(context, lessonID)
}

/*
SubmitAnswer grades a submission, records it and credits any XP earned.

Description: Every submission is recorded, right or wrong. The record and
the XP credit commit together. The weekly leaderboard is fed afterwards on
a best-effort basis.

Parameters:
  - context: context.Context
  - userID: string
  - submission: Submission

Returns:
  - *Feedback: Grade, XP and explanation
  - error: VALIDATION_ERROR, ErrProblemNotFound or storage errors
*/
func (service *Service) SubmitAnswer(context context.Context, userID string, submission Submission) (*Feedback, error) {
	validator := &validate.Validator{}
	validator.Range(FieldTimeSpent, submission.TimeSpentSeconds, 0, constants.MaxCounterValue).
		Range(FieldHintsUsed, submission.HintsUsed, 0, constants.MaxCounterValue)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	key, err := service.problemRepository.FindAnswerKey(context, submission.ProblemID)
	if err != nil {
		return nil, err
	}

	correct := IsCorrect(submission.Answer, key.CorrectAnswer)
	result := &Result{
		ID:               uuid.New(),
		UserID:           userID,
		ProblemID:        key.ProblemID,
		IsCorrect:        correct,
		UserAnswer:       submission.Answer,
		TimeSpentSeconds: submission.TimeSpentSeconds,
		HintsUsed:        submission.HintsUsed,
		XPEarned:         EarnedXP(key.XPReward, correct, submission.HintsUsed),
	}

	user, err := service.problemRepository.Record(context, result)
	if err != nil {
		return nil, err
	}

	feedback := &Feedback{
		IsCorrect:   correct,
		XPEarned:    result.XPEarned,
		Explanation: key.Explanation,
		User:        user,
	}
	if !correct {
		feedback.CorrectAnswer = &key.CorrectAnswer
	}

	if result.XPEarned > 0 {
		service.metrics.RecordXP(metrics.SourceProblem, result.XPEarned)
		if service.weeklyXP != nil {
			if err := service.weeklyXP.UpdateWeeklyXP(context, userID, result.XPEarned); err != nil {
				service.logger.Warn("problem_weekly_xp_feed_failed", slog.String("user_id", userID), slog.Any("error", err))
			}
		}
	}

	return feedback, nil
}

// ListResults returns a page of the user's submission history.
func (service *Service) ListResults(context context.Context, userID string, page pagination.Params) ([]*ResultRecord, pagination.Meta, error) {
	records, total, err := service.problemRepository.ListResults(context, userID, page)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return records, pagination.NewMeta(page.Page, page.Limit, total), nil
}
