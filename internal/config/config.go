// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, the inventory store,
// the threshold monitor, and the outbound notification channels.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	InventoryFile   string
	ActivityLogFile string

	LowStockThreshold int
	MonitorInterval   time.Duration
	DailyReportAt     string // "HH:MM" local time
	NotifyTimeout     time.Duration

	WhatsApp WhatsAppConfig
	Email    EmailConfig
	Advisor  AdvisorConfig
}

// WhatsAppConfig holds Twilio credentials for the WhatsApp channel.
type WhatsAppConfig struct {
	Enabled    bool
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Enabled   bool
	Server    string
	Port      int
	Sender    string
	Password  string
	Recipient string
}

// AdvisorConfig holds settings for the hosted-model advisor.
type AdvisorConfig struct {
	Enabled bool
	APIKey  string
	Model   string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// atoienv reads an integer variable; a set-but-unparsable value is an error
// rather than a silent fallback to the default.
func atoienv(key string, def int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func boolenv(key string, def bool) (bool, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func durenvs(key string, defSec int) (time.Duration, error) {
	sec, err := atoienv(key, defSec)
	if err != nil {
		return 0, err
	}
	return time.Duration(sec) * time.Second, nil
}

// ParseClock parses an "HH:MM" string into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Load collects configuration from environment with defaults and validates
// it once; malformed numbers or booleans and missing credentials for an
// enabled channel are fatal.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		InventoryFile:   getenv("INVENTORY_FILE", "inventory.json"),
		ActivityLogFile: getenv("ACTIVITY_LOG_FILE", "activity_log.jsonl"),

		DailyReportAt: getenv("DAILY_REPORT_AT", "09:00"),

		WhatsApp: WhatsAppConfig{
			AccountSID: getenv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getenv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getenv("TWILIO_WHATSAPP_NUMBER", ""),
			ToNumber:   getenv("RECIPIENT_WHATSAPP_NUMBER", ""),
		},
		Email: EmailConfig{
			Server:    getenv("SMTP_SERVER", "smtp.gmail.com"),
			Sender:    getenv("SMTP_EMAIL", ""),
			Password:  getenv("SMTP_PASSWORD", ""),
			Recipient: getenv("RECIPIENT_EMAIL", ""),
		},
		Advisor: AdvisorConfig{
			APIKey: getenv("GEMINI_API_KEY", ""),
			Model:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
	}
	var err error
	if cfg.ShutdownTimeout, err = durenvs("SHUTDOWN_TIMEOUT", 15); err != nil {
		return Config{}, err
	}
	if cfg.LowStockThreshold, err = atoienv("LOW_STOCK_THRESHOLD", 10); err != nil {
		return Config{}, err
	}
	if cfg.MonitorInterval, err = durenvs("MONITOR_INTERVAL", 60); err != nil {
		return Config{}, err
	}
	if cfg.NotifyTimeout, err = durenvs("NOTIFY_TIMEOUT", 10); err != nil {
		return Config{}, err
	}
	if cfg.WhatsApp.Enabled, err = boolenv("WHATSAPP_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.Email.Enabled, err = boolenv("EMAIL_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.Email.Port, err = atoienv("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.Advisor.Enabled, err = boolenv("ADVISOR_ENABLED", false); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.InventoryFile == "" {
		return fmt.Errorf("INVENTORY_FILE is required")
	}
	if c.ActivityLogFile == "" {
		return fmt.Errorf("ACTIVITY_LOG_FILE is required")
	}
	if c.LowStockThreshold <= 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must be > 0, got %d", c.LowStockThreshold)
	}
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be > 0")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be > 0")
	}
	if _, _, err := ParseClock(c.DailyReportAt); err != nil {
		return fmt.Errorf("DAILY_REPORT_AT: %w", err)
	}
	if c.WhatsApp.Enabled {
		if c.WhatsApp.AccountSID == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID is required when WHATSAPP_ENABLED=true")
		}
		if c.WhatsApp.AuthToken == "" {
			return fmt.Errorf("TWILIO_AUTH_TOKEN is required when WHATSAPP_ENABLED=true")
		}
		if c.WhatsApp.FromNumber == "" {
			return fmt.Errorf("TWILIO_WHATSAPP_NUMBER is required when WHATSAPP_ENABLED=true")
		}
		if c.WhatsApp.ToNumber == "" {
			return fmt.Errorf("RECIPIENT_WHATSAPP_NUMBER is required when WHATSAPP_ENABLED=true")
		}
	}
	if c.Email.Enabled {
		if c.Email.Server == "" {
			return fmt.Errorf("SMTP_SERVER is required when EMAIL_ENABLED=true")
		}
		if c.Email.Port <= 0 {
			return fmt.Errorf("SMTP_PORT must be > 0 when EMAIL_ENABLED=true")
		}
		if c.Email.Sender == "" {
			return fmt.Errorf("SMTP_EMAIL is required when EMAIL_ENABLED=true")
		}
		if c.Email.Password == "" {
			return fmt.Errorf("SMTP_PASSWORD is required when EMAIL_ENABLED=true")
		}
		if c.Email.Recipient == "" {
			return fmt.Errorf("RECIPIENT_EMAIL is required when EMAIL_ENABLED=true")
		}
	}
	if c.Advisor.Enabled && c.Advisor.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when ADVISOR_ENABLED=true")
	}
	return nil
}
