package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const tokenSecretPath = "/run/secrets/telegram_bot_token"

// Config holds process-wide settings read from the environment
type Config struct {
	TelegramToken string

	// DBDriver is either "sqlite3" or "postgres"
	DBDriver string
	// DBDSN is a file path for sqlite3 or a connection string for postgres
	DBDSN string

	Location *time.Location

	LogLevel  string
	LogPretty bool

	SchedulerEnabled      bool
	NotificationStartHour int
	NotificationEndHour   int
	WakeReminderAfter     time.Duration
	// BedtimeReminderHour < 0 disables the bedtime nudge
	BedtimeReminderHour int
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:         botToken(tokenSecretPath),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:                 getEnv("DB_DSN", "data/sleepbot.db"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogPretty:             getBool("LOG_PRETTY", false),
		SchedulerEnabled:      getBool("ENABLE_SCHEDULER", true),
		NotificationStartHour: getInt("NOTIFICATION_START_HOUR", 8),
		NotificationEndHour:   getInt("NOTIFICATION_END_HOUR", 22),
		WakeReminderAfter:     time.Duration(getInt("WAKE_REMINDER_AFTER_HOURS", 12)) * time.Hour,
		BedtimeReminderHour:   getInt("BEDTIME_REMINDER_HOUR", -1),
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.New("telegram token not found: neither docker secret nor TELEGRAM_BOT_TOKEN is set")
	}
	if c.DBDriver != "sqlite3" && c.DBDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if !validHour(c.NotificationStartHour) || !validHour(c.NotificationEndHour) {
		return errors.New("notification hours must be within 0-23")
	}
	if c.NotificationStartHour > c.NotificationEndHour {
		return errors.New("NOTIFICATION_START_HOUR must not be after NOTIFICATION_END_HOUR")
	}
	if c.BedtimeReminderHour > 23 {
		return errors.New("BEDTIME_REMINDER_HOUR must be within 0-23 or negative to disable")
	}
	if c.WakeReminderAfter <= 0 {
		return errors.New("WAKE_REMINDER_AFTER_HOURS must be positive")
	}
	return nil
}

func botToken(secretPath string) string {
	if data, err := os.ReadFile(secretPath); err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token
		}
	}
	return strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
