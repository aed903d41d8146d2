package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_TIMEOUT", "")
	t.Setenv("RESTORE_TIMEOUT", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, "/auth/token", cfg.APILoginPath)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 5*time.Second, cfg.RestoreTimeout)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("API_BASE_URL", "http://api:5000/api")
	t.Setenv("API_LOGIN_PATH", "/auth/login")
	t.Setenv("RESTORE_TIMEOUT", "750ms")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api:5000/api", cfg.APIBaseURL)
	assert.Equal(t, "/auth/login", cfg.APILoginPath)
	assert.Equal(t, 750*time.Millisecond, cfg.RestoreTimeout)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("API_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
