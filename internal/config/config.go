package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// System mailbox identity
	MailName     string `yaml:"mail_name"`
	MailAddress  string `yaml:"mail_address"`
	MailPassword string `yaml:"mail_password"`

	// IMAP settings
	IMAPHost string `yaml:"imap_host"`
	IMAPPort int    `yaml:"imap_port"`

	// SMTP settings
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`

	// Review workflow
	Reviewers []string      `yaml:"reviewers"`
	Quorum    int           `yaml:"quorum"`
	Interval  time.Duration `yaml:"interval"`

	// Operational
	JournalPath string `yaml:"journal_path"`
	LogLevel    string `yaml:"log_level"`
}

// LoadConfig loads configuration from an optional YAML file, then overrides
// from environment variables. Pass an empty path to configure from the
// environment alone.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		IMAPPort: 993,
		SMTPPort: 465,
		Quorum:   1,
		LogLevel: "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	for i, r := range cfg.Reviewers {
		cfg.Reviewers[i] = strings.ToLower(strings.TrimSpace(r))
	}

	return cfg, nil
}

// applyEnv overrides configuration values from environment variables.
func (c *Config) applyEnv() {
	c.MailName = getEnv("MAIL_NAME", c.MailName)
	c.MailAddress = getEnv("MAIL_ADDRESS", c.MailAddress)
	c.MailPassword = getEnv("MAIL_PASSWORD", c.MailPassword)
	c.IMAPHost = getEnv("IMAP_HOST", c.IMAPHost)
	c.IMAPPort = getEnvInt("IMAP_PORT", c.IMAPPort)
	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getEnvInt("SMTP_PORT", c.SMTPPort)
	c.Quorum = getEnvInt("QUORUM", c.Quorum)
	c.JournalPath = getEnv("JOURNAL_PATH", c.JournalPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("REVIEWER_ADDRESSES"); v != "" {
		c.Reviewers = splitAddresses(v)
	}
	if v := os.Getenv("INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Interval = d
		}
	}
}

// splitAddresses splits an address list on newlines and commas.
func splitAddresses(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == '\n' || r == ','
	})
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MailAddress == "" {
		return fmt.Errorf("MAIL_ADDRESS is required")
	}
	if c.MailPassword == "" {
		return fmt.Errorf("MAIL_PASSWORD is required")
	}
	if c.IMAPHost == "" {
		return fmt.Errorf("IMAP_HOST is required")
	}
	if c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}
	if c.IMAPPort < 1 || c.IMAPPort > 65535 {
		return fmt.Errorf("invalid IMAP_PORT")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP_PORT")
	}
	if len(c.Reviewers) == 0 {
		return fmt.Errorf("at least one reviewer address must be configured")
	}
	if c.Quorum < 1 {
		return fmt.Errorf("QUORUM must be a positive integer")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
