// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
)

/*
TestAppError_WithCode verifies that code overrides keep the error class.
*/
func TestAppError_WithCode(t *testing.T) {
	base := apperr.Unauthorized("Invalid email or password")
	specific := base.WithCode("INVALID_CREDENTIALS")

	assert.Equal(t, "UNAUTHORIZED", base.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", specific.Code)
	assert.Equal(t, http.StatusUnauthorized, specific.HTTPStatus)
	assert.Equal(t, base.Message, specific.Message)
}

/*
TestAppError_Chain verifies errors.Is / errors.As through wrapping.
*/
func TestAppError_Chain(t *testing.T) {
	sentinel := apperr.NotFound("Problem").WithCode("PROBLEM_NOT_FOUND")
	wrapped := fmt.Errorf("problem_service_submit_failed: %w", sentinel)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.HasCode(wrapped, "PROBLEM_NOT_FOUND"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusNotFound, ae.HTTPStatus)
}

/*
TestAppError_Dependency verifies cause retention for dependency failures.
*/
func TestAppError_Dependency(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := apperr.Dependency("Session cache", cause)

	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
	assert.Equal(t, "DEPENDENCY_ERROR", err.Code)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "connection refused")
}

/*
TestAppError_IsSentinelWithCause verifies that enriched copies still match their sentinel.
*/
func TestAppError_IsSentinelWithCause(t *testing.T) {
	sentinel := apperr.Unauthorized("Identity provider rejected the token").WithCode("INVALID_PROVIDER_TOKEN")
	enriched := sentinel.WithCause(errors.New("audience mismatch"))

	assert.ErrorIs(t, enriched, sentinel)
	assert.NotErrorIs(t, apperr.Unauthorized("Other"), sentinel)
	assert.NotErrorIs(t, apperr.NotFound("Lesson"), apperr.NotFound("User"))
}
