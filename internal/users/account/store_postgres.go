// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/database/schema"
	"github.com/taibuivan/mathlab/internal/platform/dberr"
	"github.com/taibuivan/mathlab/internal/platform/postgres"
	"github.com/taibuivan/mathlab/internal/users/auth"
)

// PostgresAccountRepository implements AccountRepository using pgx.
type PostgresAccountRepository struct {
	pool postgres.DB
}

// NewAccountRepository creates a new PostgreSQL implementation of AccountRepository.
func NewAccountRepository(pool postgres.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// creditXPQuery adds XP and levels up once when the new total reaches
// level * XPPerLevel. SET expressions see the old row, so "xp + $2" is the
// new total and "level" the old level.
var creditXPQuery = fmt.Sprintf(`
	UPDATE %[1]s
	SET %[2]s = %[2]s + $2,
	    %[3]s = CASE WHEN %[2]s + $2 >= %[3]s * $3 THEN %[3]s + 1 ELSE %[3]s END,
	    %[4]s = NOW()
	WHERE %[5]s = $1 AND %[6]s
	RETURNING %[7]s`,
	schema.Users.Table, schema.Users.XP, schema.Users.Level, schema.Users.UpdatedAt,
	schema.Users.ID, schema.Users.IsActive, auth.UserColumns,
)

/*
CreditXP is the single XP write path shared by every mutator. It runs on
either the pool or an open transaction.

Parameters:
  - context: context.Context
  - querier: postgres.Querier (pool or pgx.Tx)
  - userID: string
  - amount: int

Returns:
  - *auth.User: The account after the credit
  - error: auth.ErrUserNotFound or storage failures
*/
func CreditXP(context context.Context, querier postgres.Querier, userID string, amount int) (*auth.User, error) {
	user, err := auth.ScanUser(querier.QueryRow(context, creditXPQuery, userID, amount, constants.XPPerLevel))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, err
		}
		return nil, dberr.Wrap(err, "postgres_account_repo_credit_xp")
	}
	return user, nil
}

// FindByID retrieves an active user.
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	return auth.NewUserRepository(repository.pool).FindByID(context, id)
}

// AddXP credits XP outside of any larger transaction.
func (repository *PostgresAccountRepository) AddXP(context context.Context, userID string, amount int) (*auth.User, error) {
	return CreditXP(context, repository.pool, userID, amount)
}

/*
UpdateHearts changes hearts by delta within [0, MaxHearts] in one statement.

Parameters:
  - context: context.Context
  - userID: string
  - delta: int

Returns:
  - *auth.User: The updated account
  - error: Update failures
*/
func (repository *PostgresAccountRepository) UpdateHearts(context context.Context, userID string, delta int) (*auth.User, error) {
	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = GREATEST(0, LEAST($3, %[2]s + $2)), %[3]s = NOW()
		WHERE %[4]s = $1 AND %[5]s
		RETURNING %[6]s`,
		schema.Users.Table, schema.Users.Hearts, schema.Users.UpdatedAt,
		schema.Users.ID, schema.Users.IsActive, auth.UserColumns,
	)

	return repository.returning(context, "postgres_account_repo_update_hearts", query, userID, ClampHeartsDelta(delta), constants.MaxHearts)
}

/*
UpdateProfile modifies the display name and avatar. Nil fields keep their value.

Parameters:
  - context: context.Context
  - userID: string
  - patch: ProfilePatch

Returns:
  - *auth.User: The updated account
  - error: Update failures
*/
func (repository *PostgresAccountRepository) UpdateProfile(context context.Context, userID string, patch ProfilePatch) (*auth.User, error) {
	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = COALESCE($2, %[2]s), %[3]s = COALESCE($3, %[3]s), %[4]s = NOW()
		WHERE %[5]s = $1 AND %[6]s
		RETURNING %[7]s`,
		schema.Users.Table, schema.Users.DisplayName, schema.Users.AvatarURL, schema.Users.UpdatedAt,
		schema.Users.ID, schema.Users.IsActive, auth.UserColumns,
	)

	return repository.returning(context, "postgres_account_repo_update_profile", query, userID, patch.DisplayName, patch.AvatarURL)
}

/*
Stats reads one row of the user_stats view.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Stats: Aggregates
  - error: auth.ErrUserNotFound or database errors
*/
func (repository *PostgresAccountRepository) Stats(context context.Context, userID string) (*Stats, error) {
	view := schema.UserStats
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		view.UserID, view.DisplayName, view.Level, view.XP, view.StreakDays, view.Hearts,
		view.LessonsCompleted, view.ProblemsAttempted, view.ProblemsCorrect, view.AccuracyPercent,
		view.Table, view.UserID,
	)

	stats := &Stats{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&stats.UserID,
		&stats.DisplayName,
		&stats.Level,
		&stats.XP,
		&stats.StreakDays,
		&stats.Hearts,
		&stats.LessonsCompleted,
		&stats.ProblemsAttempted,
		&stats.ProblemsCorrect,
		&stats.AccuracyPercent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "postgres_account_repo_stats")
	}

	return stats, nil
}

func (repository *PostgresAccountRepository) returning(context context.Context, action, query string, args ...any) (*auth.User, error) {
	user, err := auth.ScanUser(repository.pool.QueryRow(context, query, args...))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, err
		}
		return nil, dberr.Wrap(err, action)
	}
	return user, nil
}
