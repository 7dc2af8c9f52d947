// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/platform/ctxutil"
	"github.com/taibuivan/mathlab/internal/platform/metrics"
	"github.com/taibuivan/mathlab/internal/platform/middleware"
	"github.com/taibuivan/mathlab/internal/platform/sec"
)

type fakeVerifier struct {
	claims map[string]*sec.AuthClaims
}

func (verifier fakeVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := verifier.claims[token]; ok {
		return claims, nil
	}
	return nil, sec.ErrInvalidToken
}

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestAuthenticate covers anonymous, valid, invalid and refresh-token requests.
*/
func TestAuthenticate(t *testing.T) {
	verifier := fakeVerifier{claims: map[string]*sec.AuthClaims{
		"access-ok":  {UserID: "user-1", Type: sec.TokenTypeAccess},
		"refresh-ok": {UserID: "user-1", TokenID: "tid", Type: sec.TokenTypeRefresh},
	}}

	var seenUser string
	protected := middleware.Authenticate(verifier)(middleware.RequireAuth(
		http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			seenUser = ctxutil.UserID(request.Context())
			writer.WriteHeader(http.StatusOK)
		}),
	))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"anonymous blocked by RequireAuth", "", http.StatusUnauthorized},
		{"valid access token", "Bearer access-ok", http.StatusOK},
		{"lowercase scheme", "bearer access-ok", http.StatusOK},
		{"refresh token rejected", "Bearer refresh-ok", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenUser = ""
			request := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			protected.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", seenUser)
			}
		})
	}
}

/*
TestRequestID verifies generation and propagation of correlation IDs.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "client-supplied")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-supplied", seen)
}

/*
TestRateLimiter verifies that the burst is enforced per IP.
*/
func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	handler := middleware.NewRateLimiter(ctx, 0.001, 2).Middleware(okHandler)

	send := func(ip string) int {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Real-IP", ip)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

/*
TestCORS verifies origin allow-listing outside development.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(false, []string{"https://app.mathlab.app"})(okHandler)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "https://app.mathlab.app")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "https://app.mathlab.app", recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set("Origin", "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestPanicRecovery verifies that panics become 500 responses.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

/*
TestStructuredLogger_Metrics verifies requests are counted by route pattern.
*/
func TestStructuredLogger_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	router := chi.NewRouter()
	router.Use(middleware.StructuredLogger(slog.Default(), collector))
	router.Get("/lessons/{lessonID}", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/lessons/"+id, nil))
	}

	count, err := testutil.GatherAndCount(reg, "mathlab_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "both requests share one route label")
}
