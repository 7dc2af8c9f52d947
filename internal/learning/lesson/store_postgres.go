// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/mathlab/internal/platform/database/schema"
	"github.com/taibuivan/mathlab/internal/platform/dberr"
	"github.com/taibuivan/mathlab/internal/platform/postgres"
	"github.com/taibuivan/mathlab/internal/users/account"
)

var (
	lessonColumns   = strings.Join(schema.Lessons.Columns(), ", ")
	progressColumns = strings.Join(schema.LessonProgress.Columns(), ", ")
)

// PostgresLessonRepository implements LessonRepository using pgx.
type PostgresLessonRepository struct {
	pool postgres.DB
}

// NewLessonRepository creates a new PostgreSQL implementation of LessonRepository.
func NewLessonRepository(pool postgres.DB) *PostgresLessonRepository {
	return &PostgresLessonRepository{pool: pool}
}

// List returns every lesson in catalog order.
func (repository *PostgresLessonRepository) List(context context.Context) ([]*Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		lessonColumns, schema.Lessons.Table, schema.Lessons.OrderIndex)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_lesson_repo_list")
	}
	defer rows.Close()

	lessons := []*Lesson{}
	for rows.Next() {
		lesson := &Lesson{}
		if err := rows.Scan(lessonTargets(lesson)...); err != nil {
			return nil, dberr.Wrap(err, "postgres_lesson_repo_list_scan")
		}
		lessons = append(lessons, lesson)
	}

	return lessons, dberr.Wrap(rows.Err(), "postgres_lesson_repo_list_rows")
}

/*
ProgressOf merges the catalog with one user's progress rows.

Description: A LEFT JOIN keeps lessons the user never reached. Their flags
default to false and their counters to zero.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*LessonProgress: One entry per lesson in catalog order
  - error: Database errors
*/
func (repository *PostgresLessonRepository) ProgressOf(context context.Context, userID string) ([]*LessonProgress, error) {
	l, p := schema.Lessons, schema.LessonProgress
	query := fmt.Sprintf(`
		SELECT %s,
		       COALESCE(p.%s, FALSE), COALESCE(p.%s, FALSE),
		       COALESCE(p.%s, 0), COALESCE(p.%s, 0), p.%s
		FROM %s l
		LEFT JOIN %s p ON p.%s = l.%s AND p.%s = $1
		ORDER BY l.%s ASC`,
		schema.Qualify("l", l.Columns()...),
		p.IsUnlocked, p.IsCompleted,
		p.ProgressPercent, p.ProblemsCompleted, p.CompletedAt,
		l.Table,
		p.Table, p.LessonID, l.ID, p.UserID,
		l.OrderIndex,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_lesson_repo_progress")
	}
	defer rows.Close()

	entries := []*LessonProgress{}
	for rows.Next() {
		entry := &LessonProgress{}
		targets := append(lessonTargets(&entry.Lesson),
			&entry.IsUnlocked,
			&entry.IsCompleted,
			&entry.ProgressPercent,
			&entry.ProblemsCompleted,
			&entry.CompletedAt,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, dberr.Wrap(err, "postgres_lesson_repo_progress_scan")
		}
		entries = append(entries, entry)
	}

	return entries, dberr.Wrap(rows.Err(), "postgres_lesson_repo_progress_rows")
}

// UnlockFirst inserts an unlocked progress row for the first lesson.
func (repository *PostgresLessonRepository) UnlockFirst(context context.Context, userID string) error {
	l, p := schema.Lessons, schema.LessonProgress
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT $1, %s, TRUE, %s FROM %s ORDER BY %s ASC LIMIT 1
		ON CONFLICT (%s, %s) DO NOTHING`,
		p.Table, p.UserID, p.LessonID, p.IsUnlocked, p.ProblemsTotal,
		l.ID, l.ProblemsTotal, l.Table, l.OrderIndex,
		p.UserID, p.LessonID,
	)

	if _, err := repository.pool.Exec(context, query, userID); err != nil {
		return dberr.Wrap(err, "postgres_lesson_repo_unlock_first")
	}
	return nil
}

/*
Complete runs the completion workflow in one transaction.

Description: The lesson is looked up first so an unknown ID reports
NOT_FOUND rather than LESSON_LOCKED. The successor upsert only sets
is_unlocked, so an already completed successor stays completed.

Parameters:
  - context: context.Context
  - userID: string
  - lessonID: string

Returns:
  - *Completion: Result of the workflow
  - error: ErrLessonNotFound, ErrLessonLocked, auth.ErrUserNotFound or storage failures
*/
func (repository *PostgresLessonRepository) Complete(context context.Context, userID, lessonID string) (*Completion, error) {
	completion := &Completion{}

	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {

		// 1. Reward and position of the lesson
		var orderIndex int
		lookup := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
			schema.Lessons.XPReward, schema.Lessons.OrderIndex, schema.Lessons.Table, schema.Lessons.ID)
		if err := tx.QueryRow(context, lookup, lessonID).Scan(&completion.XPAwarded, &orderIndex); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrLessonNotFound
			}
			return err
		}

		// 2. Mark completed, only if unlocked
		progress, err := markCompleted(context, tx, userID, lessonID)
		if err != nil {
			return err
		}
		completion.Progress = progress

		// 3. Unlock the successor
		next, err := unlockNext(context, tx, userID, orderIndex)
		if err != nil {
			return err
		}
		completion.NextLessonID = next

		// 4. Credit the reward
		user, err := account.CreditXP(context, tx, userID, completion.XPAwarded)
		if err != nil {
			return err
		}
		completion.User = user

		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_lesson_repo_complete")
	}

	return completion, nil
}

func markCompleted(context context.Context, tx pgx.Tx, userID, lessonID string) (*Progress, error) {
	p := schema.LessonProgress
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = TRUE, %s = 100, %s = NOW(), %s = NOW()
		WHERE %s = $1 AND %s = $2 AND %s
		RETURNING %s`,
		p.Table,
		p.IsCompleted, p.ProgressPercent, p.CompletedAt, p.UpdatedAt,
		p.UserID, p.LessonID, p.IsUnlocked,
		progressColumns,
	)

	progress := &Progress{}
	err := tx.QueryRow(context, query, userID, lessonID).Scan(
		&progress.UserID,
		&progress.LessonID,
		&progress.IsUnlocked,
		&progress.IsCompleted,
		&progress.ProgressPercent,
		&progress.ProblemsCompleted,
		&progress.ProblemsTotal,
		&progress.CompletedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLessonLocked
		}
		return nil, err
	}
	return progress, nil
}

func unlockNext(context context.Context, tx pgx.Tx, userID string, orderIndex int) (*string, error) {
	l, p := schema.Lessons, schema.LessonProgress
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s)
		SELECT $1, %[6]s, TRUE, %[7]s FROM %[8]s WHERE %[9]s > $2 ORDER BY %[9]s ASC LIMIT 1
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET %[4]s = TRUE, %[10]s = NOW()
		RETURNING %[3]s`,
		p.Table, p.UserID, p.LessonID, p.IsUnlocked, p.ProblemsTotal,
		l.ID, l.ProblemsTotal, l.Table, l.OrderIndex,
		p.UpdatedAt,
	)

	var next string
	if err := tx.QueryRow(context, query, userID, orderIndex).Scan(&next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &next, nil
}

func lessonTargets(lesson *Lesson) []any {
	return []any{
		&lesson.ID,
		&lesson.Title,
		&lesson.Description,
		&lesson.Category,
		&lesson.OrderIndex,
		&lesson.XPReward,
		&lesson.ProblemsTotal,
		&lesson.CreatedAt,
	}
}
