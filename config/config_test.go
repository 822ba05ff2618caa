package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_SMTPEnvironmentBinds(t *testing.T) {
	// AutomaticEnv only feeds Unmarshal for keys viper already knows about,
	// so each SMTP key needs a default registered even when it is empty.
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("SMTP_FROM", "no-reply@example.com")
	t.Setenv("NOTIFY_EMAIL", "ops@example.com")

	LoadConfig()

	assert.Equal(t, "smtp.example.com", AppConfig.SMTPHost)
	assert.Equal(t, "mailer", AppConfig.SMTPUser)
	assert.Equal(t, "secret", AppConfig.SMTPPassword)
	assert.Equal(t, "no-reply@example.com", AppConfig.SMTPFrom)
	assert.Equal(t, "ops@example.com", AppConfig.NotifyEmail)
	assert.Equal(t, 587, AppConfig.SMTPPort)
}
