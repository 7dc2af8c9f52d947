// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/mathlab/internal/platform/calendar"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/database/schema"
	"github.com/taibuivan/mathlab/internal/platform/dberr"
	"github.com/taibuivan/mathlab/internal/platform/postgres"
	"github.com/taibuivan/mathlab/pkg/uuid"
)

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of Repository.
func NewRepository(pool postgres.DB) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Top reads the ranked list of a league for a week.

Parameters:
  - context: context.Context
  - league: string
  - week: Week
  - limit: int

Returns:
  - []*Entry: Ranked entries first, unranked after them by XP
  - error: Database errors
*/
func (repository *PostgresRepository) Top(context context.Context, league string, week Week, limit int) ([]*Entry, error) {
	l, u := schema.Leaderboard, schema.Users
	query := fmt.Sprintf(`
		SELECT l.%s, u.%s, u.%s, u.%s, l.%s
		FROM %s l
		JOIN %s u ON u.%s = l.%s
		WHERE l.%s = $1 AND l.%s = $2
		ORDER BY l.%s ASC NULLS LAST, l.%s DESC
		LIMIT $3`,
		l.RankPosition, u.ID, u.DisplayName, u.AvatarURL, l.WeeklyXP,
		l.Table,
		u.Table, u.ID, l.UserID,
		l.League, l.WeekStart,
		l.RankPosition, l.WeeklyXP,
	)

	rows, err := repository.pool.Query(context, query, league, week.Start, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_leaderboard_repo_top")
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(&entry.Rank, &entry.UserID, &entry.DisplayName, &entry.AvatarURL, &entry.WeeklyXP); err != nil {
			return nil, dberr.Wrap(err, "postgres_leaderboard_repo_top_scan")
		}
		entries = append(entries, entry)
	}

	return entries, dberr.Wrap(rows.Err(), "postgres_leaderboard_repo_top_rows")
}

// Find reads one user's entry for a week.
func (repository *PostgresRepository) Find(context context.Context, userID string, week Week) (*Standing, error) {
	l := schema.Leaderboard
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2`,
		l.RankPosition, l.League, l.WeeklyXP, l.Table, l.UserID, l.WeekStart)

	standing := &Standing{WeekStart: calendar.Key(week.Start), WeekEnd: calendar.Key(week.End)}
	err := repository.pool.QueryRow(context, query, userID, week.Start).
		Scan(&standing.Rank, &standing.League, &standing.WeeklyXP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errEntryNotFound
		}
		return nil, dberr.Wrap(err, "postgres_leaderboard_repo_find")
	}

	return standing, nil
}

// Create inserts an empty entry for the week if none exists.
func (repository *PostgresRepository) Create(context context.Context, userID, league string, week Week) error {
	l := schema.Leaderboard
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, 0, $4, $5)
		ON CONFLICT (%s, %s) DO NOTHING`,
		l.Table, l.ID, l.UserID, l.League, l.WeeklyXP, l.WeekStart, l.WeekEnd,
		l.UserID, l.WeekStart,
	)

	if _, err := repository.pool.Exec(context, query, uuid.New(), userID, league, week.Start, week.End); err != nil {
		return dberr.Wrap(err, "postgres_leaderboard_repo_create")
	}
	return nil
}

/*
AddWeeklyXP credits weekly XP with one atomic upsert.

Description: The statement locks only the caller's row, so concurrent
credits for different learners never wait on each other and concurrent
credits for the same learner serialize on the row without losing updates.
Ranks are left to [PostgresRepository.Rerank].

Parameters:
  - context: context.Context
  - userID: string
  - delta: int
  - week: Week

Returns:
  - string: The entry's league
  - error: Storage failures, in which case nothing was written
*/
func (repository *PostgresRepository) AddWeeklyXP(context context.Context, userID string, delta int, week Week) (string, error) {
	l := schema.Leaderboard
	upsert := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%[3]s, %[6]s) DO UPDATE
		SET %[5]s = %[1]s.%[5]s + EXCLUDED.%[5]s, %[8]s = NOW()
		RETURNING %[4]s`,
		l.Table, l.ID, l.UserID, l.League, l.WeeklyXP, l.WeekStart, l.WeekEnd, l.UpdatedAt,
	)

	var league string
	err := repository.pool.QueryRow(context, upsert,
		uuid.New(), userID, constants.DefaultLeague, delta, week.Start, week.End,
	).Scan(&league)
	if err != nil {
		return "", dberr.Wrap(err, "postgres_leaderboard_repo_add_weekly_xp")
	}

	return league, nil
}

/*
Rerank materializes rank_position for one league and week.

Description: Ranks are row numbers by weekly_xp descending, ties broken by
entry id so the order is stable between runs. A transaction-scoped advisory
lock keyed on (league, week) serializes concurrent reranks of the same board,
so two of them never lock its rows in different orders. Rows whose rank is
unchanged are not rewritten.

Parameters:
  - context: context.Context
  - league: string
  - week: Week

Returns:
  - error: Storage failures; earlier ranks stay in place
*/
func (repository *PostgresRepository) Rerank(context context.Context, league string, week Week) error {
	l := schema.Leaderboard
	rerank := fmt.Sprintf(`
		UPDATE %[1]s AS target
		SET %[2]s = ranked.position
		FROM (
			SELECT %[3]s, ROW_NUMBER() OVER (ORDER BY %[4]s DESC, %[3]s ASC) AS position
			FROM %[1]s
			WHERE %[5]s = $1 AND %[6]s = $2
		) AS ranked
		WHERE target.%[3]s = ranked.%[3]s
		  AND target.%[2]s IS DISTINCT FROM ranked.position`,
		l.Table, l.RankPosition, l.ID, l.WeeklyXP, l.League, l.WeekStart,
	)

	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, rerankLockQuery, rerankLockKey(league, week)); err != nil {
			return err
		}
		_, err := tx.Exec(context, rerank, league, week.Start)
		return err
	})
	return dberr.Wrap(err, "postgres_leaderboard_repo_rerank")
}

const rerankLockQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`

// rerankLockKey names the advisory lock of one board.
func rerankLockKey(league string, week Week) string {
	return constants.RedisPrefixLeaderboard + league + ":" + calendar.Key(week.Start)
}
