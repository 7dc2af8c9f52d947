// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, social providers) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// # Configuration Schema

// Config holds all runtime configuration for the MathLab API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Token signing (RS256 key pair)
	JWTPrivKeyPath string        `env:"JWT_PRIVATE_KEY_PATH,required,notEmpty"`
	JWTPubKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`
	JWTIssuer      string        `env:"JWT_ISSUER"      envDefault:"mathlab.app"`
	AccessTTL      time.Duration `env:"JWT_ACCESS_TTL"  envDefault:"15m"`
	RefreshTTL     time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	// BcryptCost is the work factor for password hashing.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// Timezone is the IANA zone that defines a calendar day for streaks
	// and the week boundary for leaderboards.
	Timezone string `env:"APP_TIMEZONE" envDefault:"UTC"`

	// Identity providers. An empty client id disables the provider.
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`
	AppleClientID  string `env:"APPLE_CLIENT_ID"`
	KakaoAPIURL    string `env:"KAKAO_API_URL" envDefault:"https://kapi.kakao.com/v2/user/me"`

	// SocialLinkRequireVerifiedEmail restricts linking a social identity to an
	// existing email account to provider-verified emails.
	SocialLinkRequireVerifiedEmail bool `env:"SOCIAL_LINK_REQUIRE_VERIFIED_EMAIL" envDefault:"false"`

	// Cross-Origin Resource Sharing (comma separated)
	CORSOrigins string `env:"CORS_ORIGINS"`

	// Per-IP rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("config: token TTLs must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location returns the configured application time zone.
// Load has already validated the zone name, so UTC is only a safety net.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORSOrigins into a clean list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
