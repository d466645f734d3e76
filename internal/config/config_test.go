package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_URL", "postgres://localhost/members")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_EMAILS", " Pastor@Church.org, ,office@church.org")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 2525, cfg.Email.Port)
	assert.Equal(t, []string{"pastor@church.org", "office@church.org"}, cfg.Auth.AdminEmails)
	assert.Equal(t, "./uploads", cfg.Upload.Dir)
	assert.False(t, cfg.GoogleEnabled())
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadInvalidNumber(t *testing.T) {
	setRequired(t)
	t.Setenv("SMTP_PORT", "abc")

	_, err := Load()
	assert.Error(t, err)
}
