// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package social verifies third-party identity tokens.

Each provider turns a client-supplied token into a [Profile] using the
provider's own mechanism: a signed ID token for Google and Apple, an opaque
access token exchanged for a profile for Kakao. The auth service only sees
the [Provider] interface.

Failures are classified for the HTTP boundary:

  - the provider refused the token: [ErrTokenRejected] (401)
  - the provider is not configured: [ErrProviderDisabled] (503)
  - the provider could not be reached: a DEPENDENCY_ERROR (503)
*/
package social

import (
	"context"
	"errors"
	"net"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
)

// Profile is the identity asserted by a provider.
type Profile struct {
	// Subject is the provider's stable user id.
	Subject       string
	Email         string
	EmailVerified bool
	DisplayName   string
	AvatarURL     string
}

// Provider verifies a client token and returns the identity behind it.
type Provider interface {
	Verify(context context.Context, token string) (*Profile, error)
}

var (
	// ErrTokenRejected means the provider did not accept the token.
	ErrTokenRejected = apperr.Unauthorized("Identity provider rejected the token").WithCode("INVALID_PROVIDER_TOKEN")

	// ErrProviderDisabled means the server has no configuration for the provider.
	ErrProviderDisabled = apperr.ServiceUnavailable("Login provider is not configured")
)

// Disabled stands in for a provider whose credentials are not configured.
type Disabled struct{}

// Verify always fails with [ErrProviderDisabled].
func (Disabled) Verify(context.Context, string) (*Profile, error) {
	return nil, ErrProviderDisabled
}

// unreachable reports whether err came from the network rather than the provider's verdict.
func unreachable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
