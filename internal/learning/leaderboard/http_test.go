// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package leaderboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/mathlab/internal/learning/leaderboard"
	"github.com/taibuivan/mathlab/internal/platform/ctxutil"
	"github.com/taibuivan/mathlab/internal/platform/sec"
)

/*
TestHandler_Routes verifies query validation and access control.
*/
func TestHandler_Routes(t *testing.T) {
	h := newHarness(t)
	router := leaderboard.NewHandler(h.service).Routes()

	tests := []struct {
		name     string
		path     string
		auth     bool
		wantCode int
		wantBody string
	}{
		{"defaults", "/weekly", false, http.StatusOK, ""},
		{"explicit league", "/weekly?league=silver&limit=10", false, http.StatusOK, ""},
		{"limit not a number", "/weekly?limit=ten", false, http.StatusBadRequest, ""},
		{"limit too large", "/weekly?limit=101", false, http.StatusBadRequest, ""},
		{"limit zero", "/weekly?limit=0", false, http.StatusBadRequest, ""},
		{"me anonymous", "/me", false, http.StatusUnauthorized, ""},
		{"me creates entry", "/me", true, http.StatusOK, `"rank":null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth {
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(),
					&sec.AuthClaims{UserID: "user-1", Type: sec.TokenTypeAccess}))
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code, recorder.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, recorder.Body.String(), tt.wantBody)
			}
		})
	}
}
