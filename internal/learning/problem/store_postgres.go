// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package problem

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/mathlab/internal/platform/database/schema"
	"github.com/taibuivan/mathlab/internal/platform/dberr"
	"github.com/taibuivan/mathlab/internal/platform/postgres"
	"github.com/taibuivan/mathlab/internal/users/account"
	"github.com/taibuivan/mathlab/internal/users/auth"
	"github.com/taibuivan/mathlab/pkg/pagination"
)

// PostgresProblemRepository implements ProblemRepository using pgx.
type PostgresProblemRepository struct {
	pool postgres.DB
}

// NewProblemRepository creates a new PostgreSQL implementation of ProblemRepository.
func NewProblemRepository(pool postgres.DB) *PostgresProblemRepository {
	return &PostgresProblemRepository{pool: pool}
}

/*
ListByLesson returns the public view of a lesson's problems.

Parameters:
  - context: context.Context
  - lessonID: string

Returns:
  - []*Problem: Ordered by difficulty, then creation
  - error: Database errors
*/
func (repository *PostgresProblemRepository) ListByLesson(context context.Context, lessonID string) ([]*Problem, error) {
	p := schema.Problems
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s,
		       COALESCE(%s, '[]'::jsonb), COALESCE(%s, '[]'::jsonb), COALESCE(%s, '{}'), %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s ASC`,
		p.ID, p.LessonID, p.Category, p.Difficulty, p.Question, p.Type,
		p.Options, p.Hints, p.Tags, p.XPReward,
		p.Table,
		p.LessonID,
		p.Difficulty, p.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, lessonID)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_problem_repo_list")
	}
	defer rows.Close()

	problems := []*Problem{}
	for rows.Next() {
		problem := &Problem{}
		err := rows.Scan(
			&problem.ID,
			&problem.LessonID,
			&problem.Category,
			&problem.Difficulty,
			&problem.Question,
			&problem.Type,
			&problem.Options,
			&problem.Hints,
			&problem.Tags,
			&problem.XPReward,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "postgres_problem_repo_list_scan")
		}
		problems = append(problems, problem)
	}

	return problems, dberr.Wrap(rows.Err(), "postgres_problem_repo_list_rows")
}

// FindAnswerKey loads the grading data of a problem.
func (repository *PostgresProblemRepository) FindAnswerKey(context context.Context, problemID string) (*AnswerKey, error) {
	p := schema.Problems
	query := fmt.Sprintf(`SELECT %s, %s, COALESCE(%s, ''), %s FROM %s WHERE %s = $1`,
		p.ID, p.CorrectAnswer, p.Explanation, p.XPReward, p.Table, p.ID)

	key := &AnswerKey{}
	err := repository.pool.QueryRow(context, query, problemID).Scan(
		&key.ProblemID,
		&key.CorrectAnswer,
		&key.Explanation,
		&key.XPReward,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProblemNotFound
		}
		return nil, dberr.Wrap(err, "postgres_problem_repo_find_answer_key")
	}

	return key, nil
}

/*
Record stores a submission and credits its XP atomically.

Parameters:
  - context: context.Context
  - result: *Result

Returns:
  - *auth.User: Credited account or nil
  - error: Storage failures, in which case nothing was written
*/
func (repository *PostgresProblemRepository) Record(context context.Context, result *Result) (*auth.User, error) {
	r := schema.ProblemResults
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING %s`,
		r.Table, r.ID, r.UserID, r.ProblemID, r.IsCorrect, r.UserAnswer,
		r.TimeSpentSeconds, r.HintsUsed, r.XPEarned, r.SolvedAt,
		r.SolvedAt,
	)

	var user *auth.User
	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(context, insert,
			result.ID,
			result.UserID,
			result.ProblemID,
			result.IsCorrect,
			result.UserAnswer,
			result.TimeSpentSeconds,
			result.HintsUsed,
			result.XPEarned,
		).Scan(&result.SolvedAt)
		if err != nil {
			return err
		}

		if result.XPEarned <= 0 {
			return nil
		}

		user, err = account.CreditXP(context, tx, result.UserID, result.XPEarned)
		return err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_problem_repo_record")
	}

	return user, nil
}

/*
ListResults pages through a user's submissions.

Parameters:
  - context: context.Context
  - userID: string
  - page: pagination.Params

Returns:
  - []*ResultRecord: Newest first
  - int: Total number of results of the user
  - error: Database errors
*/
func (repository *PostgresProblemRepository) ListResults(context context.Context, userID string, page pagination.Params) ([]*ResultRecord, int, error) {
	r, p := schema.ProblemResults, schema.Problems

	var total int
	count := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, r.Table, r.UserID)
	if err := repository.pool.QueryRow(context, count, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_problem_repo_count_results")
	}

	query := fmt.Sprintf(`
		SELECT %s, p.%s, p.%s
		FROM %s r
		JOIN %s p ON p.%s = r.%s
		WHERE r.%s = $1
		ORDER BY r.%s DESC
		LIMIT $2 OFFSET $3`,
		schema.Qualify("r", r.Columns()...), p.Question, p.Category,
		r.Table,
		p.Table, p.ID, r.ProblemID,
		r.UserID,
		r.SolvedAt,
	)

	rows, err := repository.pool.Query(context, query, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_problem_repo_list_results")
	}
	defer rows.Close()

	records := []*ResultRecord{}
	for rows.Next() {
		record := &ResultRecord{}
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.ProblemID,
			&record.IsCorrect,
			&record.UserAnswer,
			&record.TimeSpentSeconds,
			&record.HintsUsed,
			&record.XPEarned,
			&record.SolvedAt,
			&record.Question,
			&record.Category,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_problem_repo_list_results_scan")
		}
		records = append(records, record)
	}

	return records, total, dberr.Wrap(rows.Err(), "postgres_problem_repo_list_results_rows")
}
