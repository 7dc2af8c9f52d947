// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
)

// googleHTTPTimeout bounds fetching Google's signing certificates.
const googleHTTPTimeout = 5 * time.Second

// IDTokenValidator checks a Google ID token against an audience.
// It is satisfied by [*idtoken.Validator].
type IDTokenValidator interface {
	Validate(context context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier verifies Google Sign-In ID tokens issued for our client id.
type GoogleVerifier struct {
	clientID  string
	validator IDTokenValidator
}

// NewGoogleVerifier builds a verifier backed by Google's published certificates.
func NewGoogleVerifier(context context.Context, clientID string) (*GoogleVerifier, error) {
	validator, err := idtoken.NewValidator(context, idtoken.WithHTTPClient(&http.Client{Timeout: googleHTTPTimeout}))
	if err != nil {
		return nil, fmt.Errorf("social_google_validator_failed: %w", err)
	}
	return NewGoogleVerifierWithValidator(clientID, validator), nil
}

// NewGoogleVerifierWithValidator builds a verifier around an existing validator.
func NewGoogleVerifierWithValidator(clientID string, validator IDTokenValidator) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validator: validator}
}

/*
Verify validates the signature, audience and expiry of a Google ID token.

Google accounts always carry an email; a token without one is rejected.

Parameters:
  - context: context.Context
  - token: string (ID token)

Returns:
  - *Profile: Identity claims
  - error: ErrTokenRejected or a dependency failure
*/
func (verifier *GoogleVerifier) Verify(context context.Context, token string) (*Profile, error) {
	payload, err := verifier.validator.Validate(context, token, verifier.clientID)
	if err != nil {
		if unreachable(err) {
			return nil, apperr.Dependency("Google", fmt.Errorf("social_google_validate_failed: %w", err))
		}
		return nil, ErrTokenRejected.WithCause(err)
	}

	profile := &Profile{
		Subject:       payload.Subject,
		Email:         stringClaim(payload.Claims, "email"),
		EmailVerified: boolClaim(payload.Claims, "email_verified"),
		DisplayName:   stringClaim(payload.Claims, "name"),
		AvatarURL:     stringClaim(payload.Claims, "picture"),
	}

	if profile.Subject == "" || profile.Email == "" {
		return nil, ErrTokenRejected
	}

	return profile, nil
}

func stringClaim(claims map[string]any, name string) string {
	value, _ := claims[name].(string)
	return value
}

func boolClaim(claims map[string]any, name string) bool {
	return truthy(claims[name])
}

// truthy accepts both JSON booleans and the string form some providers emit.
func truthy(claim any) bool {
	switch value := claim.(type) {
	case bool:
		return value
	case string:
		return value == "true"
	}
	return false
}
