// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mathlab")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "/keys/private.pem")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
}

/*
TestLoad_Defaults verifies default values for optional settings.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.SocialLinkRequireVerifiedEmail)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_MissingRequired verifies that required variables are enforced.
*/
func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestLoad_Invalid verifies range checks on parsed values.
*/
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bcrypt cost too low", "BCRYPT_COST", "2"},
		{"bcrypt cost too high", "BCRYPT_COST", "40"},
		{"unknown zone", "APP_TIMEZONE", "Mars/Olympus"},
		{"zero ttl", "JWT_ACCESS_TTL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

/*
TestConfig_AllowedOrigins verifies CSV parsing of CORS origins.
*/
func TestConfig_AllowedOrigins(t *testing.T) {
	cfg := &config.Config{CORSOrigins: " https://a.app ,, https://b.app"}
	assert.Equal(t, []string{"https://a.app", "https://b.app"}, cfg.AllowedOrigins())

	empty := &config.Config{}
	assert.Empty(t, empty.AllowedOrigins())
}
