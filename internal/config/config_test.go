package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "data/sleepbot.db", cfg.DBDSN)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, 12*time.Hour, cfg.WakeReminderAfter)
	assert.Equal(t, -1, cfg.BedtimeReminderHour)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/sleep")
	t.Setenv("TIMEZONE", "Europe/Moscow")
	t.Setenv("ENABLE_SCHEDULER", "false")
	t.Setenv("WAKE_REMINDER_AFTER_HOURS", "10")
	t.Setenv("BEDTIME_REMINDER_HOUR", "22")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, 10*time.Hour, cfg.WakeReminderAfter)
	assert.Equal(t, 22, cfg.BedtimeReminderHour)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"TELEGRAM_BOT_TOKEN": ""}},
		{"bad driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"inverted window", map[string]string{"NOTIFICATION_START_HOUR": "20", "NOTIFICATION_END_HOUR": "6"}},
		{"hour out of range", map[string]string{"NOTIFICATION_END_HOUR": "24"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", "token")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestBotToken_PrefersSecretFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")

	secret := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(secret, []byte(" from-secret \n"), 0o600))

	assert.Equal(t, "from-secret", botToken(secret))
	assert.Equal(t, "from-env", botToken(filepath.Join(t.TempDir(), "missing")))
}
