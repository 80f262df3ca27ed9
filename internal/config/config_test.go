package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MAIL_NAME", "Editorial Desk")
	t.Setenv("MAIL_ADDRESS", "system@example.com")
	t.Setenv("MAIL_PASSWORD", "secret")
	t.Setenv("IMAP_HOST", "imap.example.com")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("REVIEWER_ADDRESSES", "R1@Example.com, r2@example.com\nr3@example.com")
	t.Setenv("QUORUM", "3")
}

func TestLoadConfigFromEnv(t *testing.T) {
	setValidEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "system@example.com", cfg.MailAddress)
	assert.Equal(t, 993, cfg.IMAPPort)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, 3, cfg.Quorum)
	assert.Equal(t, []string{"r1@example.com", "r2@example.com", "r3@example.com"}, cfg.Reviewers)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
mail_name: Editorial Desk
mail_address: system@example.com
mail_password: secret
imap_host: imap.example.com
imap_port: 143
smtp_host: smtp.example.com
smtp_port: 587
reviewers:
  - r1@example.com
  - r2@example.com
quorum: 2
interval: 5m
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 143, cfg.IMAPPort)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 2, cfg.Quorum)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
mail_address: file@example.com
mail_password: secret
imap_host: imap.example.com
smtp_host: smtp.example.com
reviewers: [r1@example.com]
quorum: 1
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	t.Setenv("MAIL_ADDRESS", "env@example.com")
	t.Setenv("QUORUM", "2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.MailAddress)
	assert.Equal(t, 2, cfg.Quorum)
}

func TestValidateErrors(t *testing.T) {
	setValidEnv(t)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"missing address", "MAIL_ADDRESS", ""},
		{"missing password", "MAIL_PASSWORD", ""},
		{"missing imap host", "IMAP_HOST", ""},
		{"missing smtp host", "SMTP_HOST", ""},
		{"zero quorum", "QUORUM", "0"},
		{"negative quorum", "QUORUM", "-1"},
		{"bad imap port", "IMAP_PORT", "70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv(tt.key, tt.value)
			cfg, err := LoadConfig("")
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateRequiresReviewers(t *testing.T) {
	setValidEnv(t)
	t.Setenv("REVIEWER_ADDRESSES", "")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestMissingConfigFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
