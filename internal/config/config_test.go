package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pujana-systems/stockwatch/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	// A missing explicit config file is an error; load defaults instead
	// by writing an empty file.
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	cfg, err = config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "15s", cfg.Server.ReadTimeout)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "https://api.twilio.com", cfg.WhatsApp.APIBaseURL)
	assert.Equal(t, 5, cfg.Alerts.DefaultThreshold)
	assert.Equal(t, 9, cfg.Scheduler.DailyHour)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Contains(t, cfg.Storage.Path, "stockwatch.db")
}

func TestLoad_FromFile(t *testing.T) {
	content := `
storage:
  path: /var/lib/stockwatch/data.db
server:
  listen: ":9090"
smtp:
  host: smtp.example.com
  port: 465
  sender: alerts@example.com
  password: hunter2
whatsapp:
  account_sid: AC123
  auth_token: token
  from_number: "+14155238886"
alerts:
  default_threshold: 10
scheduler:
  daily_hour: 6
logging:
  level: debug
  format: text
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/stockwatch/data.db", cfg.Storage.Path)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "alerts@example.com", cfg.SMTP.Sender)
	assert.Equal(t, "AC123", cfg.WhatsApp.AccountSID)
	assert.Equal(t, "+14155238886", cfg.WhatsApp.FromNumber)
	assert.Equal(t, 10, cfg.Alerts.DefaultThreshold)
	assert.Equal(t, 6, cfg.Scheduler.DailyHour)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644))

	t.Setenv("STOCKWATCH_LOGGING_LEVEL", "debug")
	t.Setenv("STOCKWATCH_SCHEDULER_DAILY_HOUR", "3")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Scheduler.DailyHour)
}

func TestLoad_InvalidDailyHour(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  daily_hour: 24\n"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily_hour")
}
