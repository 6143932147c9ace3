package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("PASSWORD_TOKEN_TTL_HOURS", "")

	cfg := Load()
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 72*time.Hour, cfg.PasswordTokenTTL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("PASSWORD_TOKEN_TTL_HOURS", "24")
	t.Setenv("APP_BASE_URL", "https://crm.example.com")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, 24*time.Hour, cfg.PasswordTokenTTL)
	assert.Equal(t, "https://crm.example.com", cfg.AppBaseURL)
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	assert.Equal(t, 587, getEnvAsInt("SMTP_PORT", 587))
}
