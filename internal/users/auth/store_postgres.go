// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/mathlab/internal/platform/database/schema"
	"github.com/taibuivan/mathlab/internal/platform/dberr"
	"github.com/taibuivan/mathlab/internal/platform/postgres"
)

// UserColumns is the select list matching the scan order of [ScanUser].
var UserColumns = strings.Join(schema.Users.Columns(), ", ")

// ScanUser hydrates a [User] from a row selected with [UserColumns].
// A missing row is reported as [ErrUserNotFound].
func ScanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.AuthProvider,
		&user.AuthProviderID,
		&user.Level,
		&user.XP,
		&user.StreakDays,
		&user.Hearts,
		&user.LastStreakDate,
		&user.CurrentGrade,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
		&user.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool postgres.DB
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool postgres.DB) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
FindByID retrieves an active user by primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s`,
		UserColumns, schema.Users.Table, schema.Users.ID, schema.Users.IsActive)

	return repository.findOne(context, "postgres_user_repo_find_by_id", query, id)
}

/*
FindEmailAccount retrieves the password account for an email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) FindEmailAccount(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE lower(%s) = lower($1) AND %s = $2 AND %s`,
		UserColumns, schema.Users.Table,
		schema.Users.Email, schema.Users.AuthProvider, schema.Users.IsActive,
	)

	return repository.findOne(context, "postgres_user_repo_find_email_account", query, email, ProviderEmail)
}

/*
FindByEmail retrieves an active account by email, regardless of provider.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1) AND %s`,
		UserColumns, schema.Users.Table, schema.Users.Email, schema.Users.IsActive)

	return repository.findOne(context, "postgres_user_repo_find_by_email", query, email)
}

/*
FindByProvider resolves a social identity to its account.

Parameters:
  - context: context.Context
  - provider: Provider
  - providerUserID: string

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByProvider(context context.Context, provider Provider, providerUserID string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = $2 AND %s`,
		UserColumns, schema.Users.Table,
		schema.Users.AuthProvider, schema.Users.AuthProviderID, schema.Users.IsActive,
	)

	return repository.findOne(context, "postgres_user_repo_find_by_provider", query, provider, providerUserID)
}

/*
Create inserts a new account and reads the stored row back into user.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`,
		schema.Users.Table,
		schema.Users.ID, schema.Users.Email, schema.Users.DisplayName, schema.Users.PasswordHash,
		schema.Users.AuthProvider, schema.Users.AuthProviderID, schema.Users.CurrentGrade, schema.Users.AvatarURL,
		UserColumns,
	)

	stored, err := ScanUser(repository.pool.QueryRow(context, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.AuthProvider,
		user.AuthProviderID,
		user.CurrentGrade,
		user.AvatarURL,
	))
	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_create")
	}

	*user = *stored
	return nil
}

/*
LinkProvider switches an account to a social identity.

Description: The password hash is cleared so the account keeps exactly one
credential kind. The avatar is only filled when the account has none.

Parameters:
  - context: context.Context
  - userID: string
  - provider: Provider
  - providerUserID: string
  - avatarURL: *string

Returns:
  - *User: The updated account
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) LinkProvider(context context.Context, userID string, provider Provider, providerUserID string, avatarURL *string) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NULL, %s = COALESCE(%s, $4), %s = NOW()
		WHERE %s = $1 AND %s
		RETURNING %s`,
		schema.Users.Table,
		schema.Users.AuthProvider, schema.Users.AuthProviderID, schema.Users.PasswordHash,
		schema.Users.AvatarURL, schema.Users.AvatarURL, schema.Users.UpdatedAt,
		schema.Users.ID, schema.Users.IsActive,
		UserColumns,
	)

	return repository.findOne(context, "postgres_user_repo_link_provider", query, userID, provider, providerUserID, avatarURL)
}

/*
TouchLogin stamps last_login_at.

Parameters:
  - context: context.Context
  - userID: string
  - at: time.Time

Returns:
  - error: Execution failures
*/
func (repository *PostgresUserRepository) TouchLogin(context context.Context, userID string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $2 WHERE %s = $1`,
		schema.Users.Table, schema.Users.LastLoginAt, schema.Users.UpdatedAt, schema.Users.ID)

	if _, err := repository.pool.Exec(context, query, userID, at); err != nil {
		return dberr.Wrap(err, "postgres_user_repo_touch_login")
	}
	return nil
}

/*
AdvanceStreak performs a compare-and-set on last_streak_date.

Parameters:
  - context: context.Context
  - userID: string
  - expected: *time.Time
  - streakDays: int
  - today: time.Time

Returns:
  - bool: Whether the row was updated
  - error: Execution failures
*/
func (repository *PostgresUserRepository) AdvanceStreak(context context.Context, userID string, expected *time.Time, streakDays int, today time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3::date, %s = NOW()
		WHERE %s = $1 AND %s IS NOT DISTINCT FROM $4::date`,
		schema.Users.Table,
		schema.Users.StreakDays, schema.Users.LastStreakDate, schema.Users.UpdatedAt,
		schema.Users.ID, schema.Users.LastStreakDate,
	)

	tag, err := repository.pool.Exec(context, query, userID, streakDays, today, expected)
	if err != nil {
		return false, dberr.Wrap(err, "postgres_user_repo_advance_streak")
	}
	return tag.RowsAffected() == 1, nil
}

// findOne runs a single-row user query and classifies failures.
func (repository *PostgresUserRepository) findOne(context context.Context, action, query string, args ...any) (*User, error) {
	user, err := ScanUser(repository.pool.QueryRow(context, query, args...))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, dberr.Wrap(err, action)
	}
	return user, nil
}
