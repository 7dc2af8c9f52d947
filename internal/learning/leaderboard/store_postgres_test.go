// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package leaderboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/learning/leaderboard"
	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/platform/calendar"
	"github.com/taibuivan/mathlab/internal/platform/constants"
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

var week = leaderboard.Week{Start: weekStart, End: calendar.WeekEnd(weekStart)}

/*
TestPostgresRepository_AddWeeklyXP verifies the credit is one upsert outside
any transaction, so no other row is locked while it runs.
*/
func TestPostgresRepository_AddWeeklyXP(t *testing.T) {
	mock := newMock(t)
	repo := leaderboard.NewRepository(mock)

	mock.ExpectQuery(`(?s)INSERT INTO leaderboard .+ ON CONFLICT \(user_id, week_start\) DO UPDATE\s+SET weekly_xp = leaderboard.weekly_xp \+ EXCLUDED.weekly_xp`).
		WithArgs(pgxmock.AnyArg(), "user-1", constants.DefaultLeague, 40, week.Start, week.End).
		WillReturnRows(pgxmock.NewRows([]string{"league"}).AddRow("bronze"))

	league, err := repo.AddWeeklyXP(context.Background(), "user-1", 40, week)
	require.NoError(t, err)
	assert.Equal(t, "bronze", league)
}

/*
TestPostgresRepository_AddWeeklyXPFailure verifies storage errors surface.
*/
func TestPostgresRepository_AddWeeklyXPFailure(t *testing.T) {
	mock := newMock(t)
	repo := leaderboard.NewRepository(mock)

	mock.ExpectQuery(`INSERT INTO leaderboard`).WillReturnError(errors.New("connection reset"))

	_, err := repo.AddWeeklyXP(context.Background(), "user-1", 40, week)
	assert.Error(t, err)
}

/*
TestPostgresRepository_Rerank verifies the board lock is taken before the
ranks are rewritten, and that unchanged ranks are skipped.
*/
func TestPostgresRepository_Rerank(t *testing.T) {
	mock := newMock(t)
	repo := leaderboard.NewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("leaderboard:bronze:2026-10-19").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`(?s)ROW_NUMBER\(\) OVER \(ORDER BY weekly_xp DESC, id ASC\).+IS DISTINCT FROM ranked.position`).
		WithArgs("bronze", week.Start).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectCommit()

	require.NoError(t, repo.Rerank(context.Background(), "bronze", week))
}

/*
TestPostgresRepository_RerankRollback verifies a failed rewrite rolls back.
*/
func TestPostgresRepository_RerankRollback(t *testing.T) {
	mock := newMock(t)
	repo := leaderboard.NewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`ROW_NUMBER`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	assert.Error(t, repo.Rerank(context.Background(), "bronze", week))
}

/*
TestPostgresRepository_Find verifies null ranks and the missing-entry error.
*/
func TestPostgresRepository_Find(t *testing.T) {
	mock := newMock(t)
	repo := leaderboard.NewRepository(mock)

	mock.ExpectQuery(`SELECT rank_position, league, weekly_xp FROM leaderboard WHERE user_id = \$1 AND week_start = \$2`).
		WithArgs("user-1", week.Start).
		WillReturnRows(pgxmock.NewRows([]string{"rank_position", "league", "weekly_xp"}).AddRow((*int)(nil), "bronze", 0))
	mock.ExpectQuery(`FROM leaderboard WHERE user_id = \$1`).
		WithArgs("ghost", week.Start).
		WillReturnError(pgx.ErrNoRows)

	standing, err := repo.Find(context.Background(), "user-1", week)
	require.NoError(t, err)
	assert.Nil(t, standing.Rank)
	assert.Equal(t, "2026-10-25", standing.WeekEnd)

	_, err = repo.Find(context.Background(), "ghost", week)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

/*
TestPostgresRepository_Top verifies ordering and argument binding.
*/
func TestPostgresRepository_Top(t *testing.T) {
	mock := newMock(t)
	repo := leaderboard.NewRepository(mock)

	one := 1
	mock.ExpectQuery(`ORDER BY l.rank_position ASC NULLS LAST, l.weekly_xp DESC\s+LIMIT \$3`).
		WithArgs("bronze", week.Start, 100).
		WillReturnRows(pgxmock.NewRows([]string{"rank_position", "id", "display_name", "avatar_url", "weekly_xp"}).
			AddRow(&one, "user-1", "Kim", (*string)(nil), 120).
			AddRow((*int)(nil), "user-2", "Lee", (*string)(nil), 0))

	entries, err := repo.Top(context.Background(), "bronze", week, 100)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, *entries[0].Rank)
	assert.Nil(t, entries[1].Rank)
}
