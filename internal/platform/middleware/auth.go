// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/ctxutil"
	"github.com/taibuivan/mathlab/internal/platform/respond"
	"github.com/taibuivan/mathlab/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// identitySlot lets the outer logging middleware learn who the request was
// authenticated as, since Authenticate derives a new context further in.
type identitySlot struct {
	userID string
}

type identitySlotKey struct{}

func withIdentitySlot(ctx context.Context) (context.Context, *identitySlot) {
	slot := &identitySlot{}
	return context.WithValue(ctx, identitySlotKey{}, slot), slot
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. No header: the request proceeds as anonymous.
//  2. Malformed header, invalid token, or a refresh token: 401.
//  3. Otherwise [*sec.AuthClaims] are injected into the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, tokenStr, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(tokenStr))
			if err != nil || !claims.IsAccess() {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token").WithCode("INVALID_TOKEN"))
				return
			}

			if slot, ok := request.Context().Value(identitySlotKey{}).(*identitySlot); ok {
				slot.userID = claims.UserID
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
