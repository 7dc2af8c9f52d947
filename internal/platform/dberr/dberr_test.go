// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/platform/dberr"
)

/*
TestWrap verifies the classification of driver errors.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, "NOT_FOUND"},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, http.StatusConflict, "CONFLICT"},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), http.StatusConflict, "CONFLICT"},
		{"connection failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, http.StatusServiceUnavailable, "DEPENDENCY_ERROR"},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, "DEPENDENCY_ERROR"},
		{"integer overflow", &pgconn.PgError{Code: pgerrcode.NumericValueOutOfRange}, http.StatusBadRequest, "OUT_OF_RANGE"},
		{"check violation", &pgconn.PgError{Code: pgerrcode.CheckViolation}, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(tt.err, "test_action"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantStatus, ae.HTTPStatus)
			assert.Equal(t, tt.wantCode, ae.Code)
		})
	}
}

/*
TestWrap_PassThrough verifies that nil and application errors are not rewrapped.
*/
func TestWrap_PassThrough(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))

	locked := apperr.ValidationError("Lesson is locked").WithCode("LESSON_LOCKED")
	assert.Same(t, locked, dberr.Wrap(locked, "complete_lesson"))
}
