// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/learning/lesson"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/database/schema"
	"github.com/taibuivan/mathlab/internal/users/auth"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func progressRow(lessonID string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(schema.LessonProgress.Columns()).
		AddRow("user-1", lessonID, true, true, 100, 0, 10, &now, now)
}

func userRow(level, xp int) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(schema.Users.Columns()).AddRow(
		"user-1", "kim@mathlab.app", "Kim", (*string)(nil), auth.ProviderGoogle, (*string)(nil),
		level, xp, 1, 5, (*time.Time)(nil), "중1",
		(*string)(nil), now, now, (*time.Time)(nil), true,
	)
}

const (
	lookupSQL   = `SELECT xp_reward, order_index FROM lessons WHERE id = \$1`
	completeSQL = `UPDATE user_lesson_progress\s+SET is_completed = TRUE, progress_percent = 100`
	unlockSQL   = `(?s)INSERT INTO user_lesson_progress .+ WHERE order_index > \$2 ORDER BY order_index ASC LIMIT 1\s+ON CONFLICT \(user_id, lesson_id\) DO UPDATE SET is_unlocked = TRUE`
	creditSQL   = `UPDATE users\s+SET xp = xp \+ \$2`
)

/*
TestPostgresLessonRepository_Complete verifies the happy path commits every step.
*/
func TestPostgresLessonRepository_Complete(t *testing.T) {
	mock := newMock(t)
	repo := lesson.NewLessonRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(lookupSQL).WithArgs("lesson-1").
		WillReturnRows(pgxmock.NewRows([]string{"xp_reward", "order_index"}).AddRow(50, 1))
	mock.ExpectQuery(completeSQL).WithArgs("user-1", "lesson-1").
		WillReturnRows(progressRow("lesson-1"))
	mock.ExpectQuery(unlockSQL).WithArgs("user-1", 1).
		WillReturnRows(pgxmock.NewRows([]string{"lesson_id"}).AddRow("lesson-2"))
	mock.ExpectQuery(creditSQL).WithArgs("user-1", 50, constants.XPPerLevel).
		WillReturnRows(userRow(1, 50))
	mock.ExpectCommit()

	completion, err := repo.Complete(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	assert.True(t, completion.Progress.IsCompleted)
	assert.Equal(t, 100, completion.Progress.ProgressPercent)
	require.NotNil(t, completion.NextLessonID)
	assert.Equal(t, "lesson-2", *completion.NextLessonID)
	assert.Equal(t, 50, completion.XPAwarded)
	assert.Equal(t, 50, completion.User.XP)
}

/*
TestPostgresLessonRepository_CompleteLastLesson verifies there is no successor past the end.
*/
func TestPostgresLessonRepository_CompleteLastLesson(t *testing.T) {
	mock := newMock(t)
	repo := lesson.NewLessonRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(lookupSQL).WithArgs("lesson-9").
		WillReturnRows(pgxmock.NewRows([]string{"xp_reward", "order_index"}).AddRow(100, 9))
	mock.ExpectQuery(completeSQL).WithArgs("user-1", "lesson-9").
		WillReturnRows(progressRow("lesson-9"))
	mock.ExpectQuery(unlockSQL).WithArgs("user-1", 9).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(creditSQL).WithArgs("user-1", 100, constants.XPPerLevel).
		WillReturnRows(userRow(2, 150))
	mock.ExpectCommit()

	completion, err := repo.Complete(context.Background(), "user-1", "lesson-9")
	require.NoError(t, err)
	assert.Nil(t, completion.NextLessonID)
	assert.Equal(t, 2, completion.User.Level)
}

/*
TestPostgresLessonRepository_CompleteRollsBack verifies that any failing step
rolls back the whole workflow and surfaces the right error.
*/
func TestPostgresLessonRepository_CompleteRollsBack(t *testing.T) {
	errCredit := errors.New("credit exploded")

	tests := []struct {
		name   string
		expect func(mock pgxmock.PgxPoolIface)
		check  func(t *testing.T, err error)
	}{
		{
			name: "unknown lesson",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(lookupSQL).WithArgs("lesson-1").WillReturnError(pgx.ErrNoRows)
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, lesson.ErrLessonNotFound) },
		},
		{
			name: "locked lesson",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(lookupSQL).WithArgs("lesson-1").
					WillReturnRows(pgxmock.NewRows([]string{"xp_reward", "order_index"}).AddRow(50, 1))
				mock.ExpectQuery(completeSQL).WithArgs("user-1", "lesson-1").WillReturnError(pgx.ErrNoRows)
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, lesson.ErrLessonLocked) },
		},
		{
			name: "xp credit fails after unlock",
			expect: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(lookupSQL).WithArgs("lesson-1").
					WillReturnRows(pgxmock.NewRows([]string{"xp_reward", "order_index"}).AddRow(50, 1))
				mock.ExpectQuery(completeSQL).WithArgs("user-1", "lesson-1").WillReturnRows(progressRow("lesson-1"))
				mock.ExpectQuery(unlockSQL).WithArgs("user-1", 1).
					WillReturnRows(pgxmock.NewRows([]string{"lesson_id"}).AddRow("lesson-2"))
				mock.ExpectQuery(creditSQL).WithArgs("user-1", 50, constants.XPPerLevel).WillReturnError(errCredit)
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, errCredit) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := lesson.NewLessonRepository(mock)

			mock.ExpectBegin()
			tt.expect(mock)
			mock.ExpectRollback()

			completion, err := repo.Complete(context.Background(), "user-1", "lesson-1")
			require.Error(t, err)
			assert.Nil(t, completion)
			tt.check(t, err)
		})
	}
}

/*
TestPostgresLessonRepository_ProgressOf verifies unreached lessons default to locked.
*/
func TestPostgresLessonRepository_ProgressOf(t *testing.T) {
	mock := newMock(t)
	repo := lesson.NewLessonRepository(mock)

	now := time.Now()
	columns := append(schema.Lessons.Columns(), "is_unlocked", "is_completed", "progress_percent", "problems_completed", "completed_at")
	mock.ExpectQuery(`FROM lessons l\s+LEFT JOIN user_lesson_progress p ON p.lesson_id = l.id AND p.user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("lesson-1", "Integers", "Add and subtract", "arithmetic", 1, 50, 10, now, true, true, 100, 10, &now).
			AddRow("lesson-2", "Fractions", "Halves", "arithmetic", 2, 60, 12, now, false, false, 0, 0, (*time.Time)(nil)))

	entries, err := repo.ProgressOf(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsCompleted)
	assert.Equal(t, "Fractions", entries[1].Title)
	assert.False(t, entries[1].IsUnlocked)
	assert.Nil(t, entries[1].CompletedAt)
}

/*
TestPostgresLessonRepository_UnlockFirst verifies the idempotent insert.
*/
func TestPostgresLessonRepository_UnlockFirst(t *testing.T) {
	mock := newMock(t)
	repo := lesson.NewLessonRepository(mock)

	mock.ExpectExec(`(?s)INSERT INTO user_lesson_progress .+ ORDER BY order_index ASC LIMIT 1\s+ON CONFLICT \(user_id, lesson_id\) DO NOTHING`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.UnlockFirst(context.Background(), "user-1"))
}
