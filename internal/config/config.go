package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the tasksync service.
type Config struct {
	// Server settings
	Port int

	// GitHub App settings
	GitHubAppID         string
	GitHubPrivateKey    string
	GitHubWebhookSecret string

	// Tracker settings
	JiraBaseURL  string
	JiraUser     string
	JiraAPIToken string

	// ReportTimezone is the IANA zone used in audit paragraphs.
	ReportTimezone string

	// Dispatcher settings
	DispatcherWorkers           int
	DispatcherQueueSize         int
	DispatcherMaxAttempts       int
	DispatcherRetryInitial      time.Duration
	DispatcherRetryMax          time.Duration
	DispatcherBackoffMultiplier float64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	privateKey := normalizePrivateKey(os.Getenv("GITHUB_PRIVATE_KEY"))

	cfg := &Config{
		Port:                        getEnvInt("PORT", 8000),
		GitHubAppID:                 os.Getenv("GITHUB_APP_ID"),
		GitHubPrivateKey:            privateKey,
		GitHubWebhookSecret:         os.Getenv("GITHUB_WEBHOOK_SECRET"),
		JiraBaseURL:                 strings.TrimSuffix(os.Getenv("JIRA_BASE_URL"), "/"),
		JiraUser:                    os.Getenv("JIRA_USER"),
		JiraAPIToken:                os.Getenv("JIRA_API_TOKEN"),
		ReportTimezone:              getEnv("REPORT_TIMEZONE", "Europe/Istanbul"),
		DispatcherWorkers:           getEnvInt("DISPATCHER_WORKERS", 4),
		DispatcherQueueSize:         getEnvInt("DISPATCHER_QUEUE_SIZE", 16),
		DispatcherMaxAttempts:       getEnvInt("DISPATCHER_MAX_ATTEMPTS", 3),
		DispatcherRetryInitial:      time.Duration(getEnvInt("DISPATCHER_RETRY_SECONDS", 15)) * time.Second,
		DispatcherRetryMax:          time.Duration(getEnvInt("DISPATCHER_RETRY_MAX_SECONDS", 300)) * time.Second,
		DispatcherBackoffMultiplier: getEnvFloat("DISPATCHER_BACKOFF_MULTIPLIER", 2.0),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalizePrivateKey undoes the quoting and escaped newlines that PEM keys
// pick up when stuffed into a single env var.
func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		trimmed = strings.TrimPrefix(trimmed, "\"")
		trimmed = strings.TrimSuffix(trimmed, "\"")
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = strings.TrimPrefix(trimmed, "'")
		trimmed = strings.TrimSuffix(trimmed, "'")
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}

	return trimmed
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	if err := c.validateGitHubCredentials(); err != nil {
		return err
	}
	if err := c.validateJiraCredentials(); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}

	c.applyDispatcherDefaults()
	return c.validateDispatcherConfig()
}

func (c *Config) validateGitHubCredentials() error {
	if c.GitHubAppID == "" {
		return fmt.Errorf("GITHUB_APP_ID is required")
	}
	if c.GitHubPrivateKey == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY is required")
	}
	if c.GitHubWebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET is required")
	}
	return nil
}

func (c *Config) validateJiraCredentials() error {
	if c.JiraBaseURL == "" {
		return fmt.Errorf("JIRA_BASE_URL is required")
	}
	if c.JiraUser == "" {
		return fmt.Errorf("JIRA_USER is required")
	}
	if c.JiraAPIToken == "" {
		return fmt.Errorf("JIRA_API_TOKEN is required")
	}
	return nil
}

func (c *Config) applyDispatcherDefaults() {
	if c.DispatcherWorkers <= 0 {
		c.DispatcherWorkers = 4
	}
	if c.DispatcherQueueSize <= 0 {
		c.DispatcherQueueSize = 16
	}
	if c.DispatcherMaxAttempts <= 0 {
		c.DispatcherMaxAttempts = 3
	}
	if c.DispatcherRetryInitial <= 0 {
		c.DispatcherRetryInitial = 15 * time.Second
	}
	if c.DispatcherRetryMax <= 0 {
		c.DispatcherRetryMax = 5 * time.Minute
	}
	if c.DispatcherBackoffMultiplier < 1 {
		c.DispatcherBackoffMultiplier = 2
	}
}

func (c *Config) validateDispatcherConfig() error {
	if c.DispatcherWorkers <= 0 {
		return fmt.Errorf("DISPATCHER_WORKERS must be greater than 0")
	}
	if c.DispatcherQueueSize <= 0 {
		return fmt.Errorf("DISPATCHER_QUEUE_SIZE must be greater than 0")
	}
	if c.DispatcherMaxAttempts <= 0 {
		return fmt.Errorf("DISPATCHER_MAX_ATTEMPTS must be greater than 0")
	}
	if c.DispatcherRetryInitial <= 0 {
		return fmt.Errorf("DISPATCHER_RETRY_SECONDS must be greater than 0")
	}
	if c.DispatcherRetryMax < c.DispatcherRetryInitial {
		return fmt.Errorf("DISPATCHER_RETRY_MAX_SECONDS must be >= DISPATCHER_RETRY_SECONDS")
	}
	if c.DispatcherBackoffMultiplier < 1 {
		return fmt.Errorf("DISPATCHER_BACKOFF_MULTIPLIER must be >= 1")
	}
	return nil
}

// Location resolves the reporting timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv gets environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
