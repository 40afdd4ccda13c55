package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Email      EmailConfig      `yaml:"email"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
	PayOS      PayOSConfig      `yaml:"payos"`
	Membership MembershipConfig `yaml:"membership"`
	Events     EventsConfig     `yaml:"events"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig contains SendGrid settings. An empty API key disables delivery.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
}

// JWTConfig contains the secret used to verify access tokens
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PayOSConfig holds the gateway credentials and callback URLs.
// Every field can be overridden with a PAYOS_* environment variable.
type PayOSConfig struct {
	ClientID                string `yaml:"client_id" envconfig:"CLIENT_ID"`
	APIKey                  string `yaml:"api_key" envconfig:"API_KEY"`
	ChecksumKey             string `yaml:"checksum_key" envconfig:"CHECKSUM_KEY"`
	BaseURL                 string `yaml:"base_url" envconfig:"BASE_URL"`
	ReturnURL               string `yaml:"return_url" envconfig:"RETURN_URL"`
	CancelURL               string `yaml:"cancel_url" envconfig:"CANCEL_URL"`
	WebhookURL              string `yaml:"webhook_url" envconfig:"WEBHOOK_URL"`
	LinkExpiryMinutes       int    `yaml:"link_expiry_minutes" envconfig:"LINK_EXPIRY_MINUTES"`
	HTTPTimeoutSeconds      int    `yaml:"http_timeout_seconds" envconfig:"HTTP_TIMEOUT_SECONDS"`
	ConfirmWebhookOnStartup bool   `yaml:"confirm_webhook_on_startup" envconfig:"CONFIRM_WEBHOOK_ON_STARTUP"`
}

func (p PayOSConfig) HTTPTimeout() time.Duration {
	return time.Duration(p.HTTPTimeoutSeconds) * time.Second
}

func (p PayOSConfig) LinkExpiry() time.Duration {
	return time.Duration(p.LinkExpiryMinutes) * time.Minute
}

// MembershipConfig contains registration lifecycle settings
type MembershipConfig struct {
	DefaultTermMonths   int `yaml:"default_term_months"`
	RenewalReminderDays int `yaml:"renewal_reminder_days"`
}

// EventsConfig contains the message broker settings. An empty URL disables publishing.
type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireRegistrations  string `yaml:"expire_registrations"`
	SendRenewalReminders string `yaml:"send_renewal_reminders"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.overrideWithEnv()
	if err := envconfig.Process("PAYOS", &cfg.PayOS); err != nil {
		return nil, fmt.Errorf("failed to read PAYOS environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.FromEmail = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Events
	if val := os.Getenv("AMQP_URL"); val != "" {
		c.Events.AMQPURL = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if err := c.PayOS.validate(); err != nil {
		return err
	}

	if c.Membership.DefaultTermMonths <= 0 {
		c.Membership.DefaultTermMonths = 12
	}
	if c.Membership.RenewalReminderDays <= 0 {
		c.Membership.RenewalReminderDays = 7
	}

	if c.Events.Exchange == "" {
		c.Events.Exchange = "clubhub.registrations"
	}

	if c.Scheduler.ExpireRegistrations == "" {
		c.Scheduler.ExpireRegistrations = "0 0 1 * * *" // 1 AM daily
	}
	if c.Scheduler.SendRenewalReminders == "" {
		c.Scheduler.SendRenewalReminders = "0 0 9 * * *" // 9 AM daily
	}

	return nil
}

func (p *PayOSConfig) validate() error {
	if p.ClientID == "" {
		return fmt.Errorf("payos client id is required")
	}
	if p.APIKey == "" {
		return fmt.Errorf("payos api key is required")
	}
	if p.ChecksumKey == "" {
		return fmt.Errorf("payos checksum key is required")
	}
	if p.BaseURL == "" {
		p.BaseURL = "https://api-merchant.payos.vn"
	}
	for name, raw := range map[string]string{"base url": p.BaseURL, "return url": p.ReturnURL, "cancel url": p.CancelURL} {
		if raw == "" {
			return fmt.Errorf("payos %s is required", name)
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid payos %s: %w", name, err)
		}
	}
	if p.ConfirmWebhookOnStartup && p.WebhookURL == "" {
		return fmt.Errorf("payos webhook url is required when confirm_webhook_on_startup is set")
	}
	if p.LinkExpiryMinutes <= 0 {
		p.LinkExpiryMinutes = 15
	}
	if p.HTTPTimeoutSeconds <= 0 {
		p.HTTPTimeoutSeconds = 15
	}
	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
