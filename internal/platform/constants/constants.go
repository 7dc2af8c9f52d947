// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, gameplay limits, and cross-cutting keys that are
shared between different layers of the system.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import (
	"math"
	"time"
)

// # Metadata

const (
	AppName    = "mathlab-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderRetryAfter    = "Retry-After"
)

// # Gamification

const (
	// MaxHearts is the upper clamp for a user's hearts.
	MaxHearts = 5

	// XPPerLevel is multiplied by the current level to get the level-up threshold.
	XPPerLevel = 100

	// HintPenaltyPercent is the share of a problem's XP removed per hint used.
	HintPenaltyPercent = 20

	// DefaultGrade is assigned to new accounts.
	DefaultGrade = "중1"

	// DefaultLeague is the league every leaderboard entry starts in.
	DefaultLeague = "bronze"

	// SyntheticEmailDomain is used when a social provider supplies no email.
	SyntheticEmailDomain = "mathlab.app"

	// MaxCounterValue is the largest value an INTEGER column can hold.
	// Client-supplied counters and amounts are bounded by it.
	MaxCounterValue = math.MaxInt32
)

// # JSON Field Identifiers

// Keys of the health probe payloads.
const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixRefreshToken = "auth:refresh_token:"
	RedisPrefixLeaderboard  = "leaderboard:"
)

// # Cache TTLs

const (
	// LeaderboardCacheTTL bounds how stale a cached weekly leaderboard may be.
	LeaderboardCacheTTL = 5 * time.Minute
)
