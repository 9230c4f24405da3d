package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequired sets the minimum environment for a postgres config.
// t.Setenv restores previous values on cleanup.
func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("ADMIN_IDS", "1,2")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "test_db_password")
}

// clearOptional unsets optional variables so defaults apply
func clearOptional(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "SQLITE_PATH", "POLL_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestLoad_WithDefaults(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, []int64{1, 2}, cfg.AdminIDs)
	assert.Equal(t, 10*time.Second, cfg.PollTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "feedback", cfg.Database.Name)
	assert.Equal(t, "feedback", cfg.Database.User)
	assert.Equal(t, "./data/feedback.db", cfg.Database.SQLitePath)
}

func TestLoad_SQLiteNeedsNoPassword(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("SQLITE_PATH", "/tmp/bot.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/bot.db", cfg.Database.SQLitePath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		contains string
	}{
		{name: "missing bot token", key: "BOT_TOKEN", value: "", contains: "BOT_TOKEN"},
		{name: "missing admin ids", key: "ADMIN_IDS", value: "", contains: "ADMIN_IDS"},
		{name: "malformed admin ids", key: "ADMIN_IDS", value: "1,abc", contains: "parse env"},
		{name: "negative admin id", key: "ADMIN_IDS", value: "-5", contains: "ADMIN_IDS"},
		{name: "missing db password", key: "DB_PASSWORD", value: "", contains: "DB_PASSWORD"},
		{name: "unknown driver", key: "DB_DRIVER", value: "mysql", contains: "DB_DRIVER"},
		{name: "bad timeout", key: "POLL_TIMEOUT", value: "soon", contains: "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			clearOptional(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
