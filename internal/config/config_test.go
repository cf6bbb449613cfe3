package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "user-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_JWT_ISSUER", "issuer-x")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_DAYS", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "issuer-x", cfg.Auth.Issuer)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTokenTTL())
}

func TestLoadRejectsUnknownAlgorithm(t *testing.T) {
	t.Setenv("AUTH_JWT_ALGORITHM", "none")

	_, err := Load()
	assert.Error(t, err)
}

func TestTTLFallbacksOnNonPositiveValues(t *testing.T) {
	auth := AuthConfig{AccessTokenTTLMinutes: 0, RefreshTokenTTLDays: -1}
	assert.Equal(t, 30*time.Minute, auth.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, auth.RefreshTokenTTL())
}

func TestRequestTimeout(t *testing.T) {
	app := AppConfig{RequestTimeoutSeconds: 15}
	assert.Equal(t, 15*time.Second, app.RequestTimeout())

	app.RequestTimeoutSeconds = 0
	assert.Equal(t, time.Duration(0), app.RequestTimeout())
}
