// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq task scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides settings for the SMTP notification channel.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// SchedulingConfig provides settings for the scheduling orchestrator.
type SchedulingConfig interface {
	// GetScheduleTxTimeout bounds one scheduling transaction. Recurring
	// quotes can require dozens of sequential inserts.
	GetScheduleTxTimeout() time.Duration
	// GetInvoiceDueDays is the default invoice due offset in days.
	GetInvoiceDueDays() int
}

// =============================================================================
// Config Implementation
// =============================================================================

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env               string
	HTTPAddr          string
	DatabaseURL       string
	JWTAccessSecret   string
	CORSAllowAll      bool
	CORSOrigins       []string
	CORSAllowCreds    bool
	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueueName    string
	AsynqConcurrency  int
	EmailEnabled      bool
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	EmailFromName     string
	EmailFromAddress  string
	ScheduleTxTimeout time.Duration
	InvoiceDueDays    int
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	dueDays, err := strconv.Atoi(getEnv("INVOICE_DUE_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVOICE_DUE_DAYS: %w", err)
	}

	concurrency, err := strconv.Atoi(getEnv("ASYNQ_CONCURRENCY", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid ASYNQ_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTAccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:      corsAllowAll,
		CORSOrigins:       corsOrigins,
		CORSAllowCreds:    strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisTLSInsecure:  strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:    getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:  concurrency,
		EmailEnabled:      strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          smtpPort,
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "7Pet"),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),
		ScheduleTxTimeout: mustDuration(getEnv("SCHEDULE_TX_TIMEOUT", "3m")),
		InvoiceDueDays:    dueDays,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// Interface implementations.

func (c *Config) GetEnv() string                        { return c.Env }
func (c *Config) GetDatabaseURL() string                { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string            { return c.JWTAccessSecret }
func (c *Config) GetHTTPAddr() string                   { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool                 { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string              { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool               { return c.CORSAllowCreds }
func (c *Config) GetRedisURL() string                   { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool             { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string             { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int              { return c.AsynqConcurrency }
func (c *Config) GetEmailEnabled() bool                 { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string                   { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                      { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string               { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string               { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string              { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string           { return c.EmailFromAddress }
func (c *Config) GetScheduleTxTimeout() time.Duration   { return c.ScheduleTxTimeout }
func (c *Config) GetInvoiceDueDays() int                { return c.InvoiceDueDays }

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func mustDuration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 3 * time.Minute
	}
	return d
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
