// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
)

const (
	// AppleKeysURL publishes the keys Apple signs identity tokens with.
	AppleKeysURL = "https://appleid.apple.com/auth/keys"
	// AppleIssuer is the iss claim of every Apple identity token.
	AppleIssuer = "https://appleid.apple.com"
)

// appleClaims are the identity token claims we read. email_verified arrives
// as either a boolean or the string "true".
type appleClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
}

// AppleVerifier verifies Sign in with Apple identity tokens.
type AppleVerifier struct {
	clientID string
	keyFunc  jwt.Keyfunc
}

// NewAppleVerifier builds a verifier that tracks Apple's JWKS in the
// background for the lifetime of context.
func NewAppleVerifier(context context.Context, clientID string) (*AppleVerifier, error) {
	jwks, err := keyfunc.NewDefaultCtx(context, []string{AppleKeysURL})
	if err != nil {
		return nil, fmt.Errorf("social_apple_jwks_failed: %w", err)
	}
	return NewAppleVerifierWithKeyfunc(clientID, jwks.Keyfunc), nil
}

// NewAppleVerifierWithKeyfunc builds a verifier around an existing key lookup.
func NewAppleVerifierWithKeyfunc(clientID string, keyFunc jwt.Keyfunc) *AppleVerifier {
	return &AppleVerifier{clientID: clientID, keyFunc: keyFunc}
}

/*
Verify checks an Apple identity token's signature, issuer, audience and expiry.

Apple only sends the user's name on the very first authorization and never
inside the token, so the profile carries no display name.

Parameters:
  - context: context.Context
  - token: string (identity token)

Returns:
  - *Profile: Identity claims
  - error: ErrTokenRejected or a dependency failure
*/
func (verifier *AppleVerifier) Verify(_ context.Context, token string) (*Profile, error) {
	claims := &appleClaims{}
	_, err := jwt.ParseWithClaims(token, claims, verifier.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(AppleIssuer),
		jwt.WithAudience(verifier.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenUnverifiable) && unreachable(err) {
			return nil, apperr.Dependency("Apple", fmt.Errorf("social_apple_keys_failed: %w", err))
		}
		return nil, ErrTokenRejected.WithCause(err)
	}

	if claims.Subject == "" {
		return nil, ErrTokenRejected
	}

	return &Profile{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: truthy(claims.EmailVerified),
	}, nil
}
