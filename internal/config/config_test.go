package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), `
api:
  url: "http://localhost:9999"
  key: "ABCDEFGHIJKLMNOPQRSTUVWXYZ012345"
  timeout: 10s
  rate_limit: 1.5

database:
  host: "localhost"
  port: 5432
  name: "testdb"
  user: "testuser"
  password: "testpass"
  ssl_mode: "disable"
  max_connections: 10
  connection_timeout: 5

logging:
  level: "debug"
  format: "text"

collector:
  enabled: true
  sites: ["1", "2"]
  lookback_days: 3
`)

	config, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "http://localhost:9999", config.API.URL)
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ012345", config.API.Key)
	assert.Equal(t, 10*time.Second, config.API.Timeout)
	assert.Equal(t, 1.5, config.API.RateLimit)
	assert.Equal(t, 3, config.API.RateBurst)
	assert.Equal(t, "localhost", config.Database.Host)
	assert.Equal(t, "testdb", config.Database.Name)
	assert.Equal(t, "disable", config.Database.SSLMode)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.True(t, config.Collector.Enabled)
	assert.Equal(t, []string{"1", "2"}, config.Collector.Sites)
	assert.Equal(t, 3, config.Collector.LookbackDays)
	assert.Equal(t, "15 * * * *", config.Collector.Schedule)
	assert.Equal(t, "continue", config.Export.ErrorPolicy)
}

func TestLoadWithEnvOverride(t *testing.T) {
	t.Setenv("APP_DATABASE_HOST", "envhost")
	t.Setenv("APP_DATABASE_PORT", "5433")
	t.Setenv("SOLARMON_API_KEY", "0123456789ABCDEFGHIJKLMNOPQRSTUV")

	configPath := writeConfig(t, t.TempDir(), `
database:
  host: $APP_DATABASE_HOST
  port: $APP_DATABASE_PORT
  name: "testdb"
api:
  key: "from-file"
`)

	config, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "envhost", config.Database.Host)
	assert.Equal(t, 5433, config.Database.Port)
	assert.Equal(t, "0123456789ABCDEFGHIJKLMNOPQRSTUV", config.API.Key)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	// godotenv does not override variables that are already set
	t.Setenv("SOLARMON_TEST_DB_NAME", "")
	require.NoError(t, os.Unsetenv("SOLARMON_TEST_DB_NAME"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SOLARMON_TEST_DB_NAME=fromdotenv\n"), 0644))
	configPath := writeConfig(t, dir, `
database:
  name: ${SOLARMON_TEST_DB_NAME}
`)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "fromdotenv", config.Database.Name)
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://monitoringapi.solaredge.com", config.API.URL)
	assert.Equal(t, 30*time.Second, config.API.Timeout)
	assert.Equal(t, 5432, config.Database.Port)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "HOUR", config.Collector.TimeUnit)
	assert.Equal(t, ".", config.Export.Dir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", ConnectionTimeout: 5}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable connect_timeout=5", d.DSN())
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		level   logrus.Level
		wantErr bool
	}{
		{"json", LoggingConfig{Level: "debug", Format: "json"}, logrus.DebugLevel, false},
		{"text", LoggingConfig{Level: "warn", Format: "text"}, logrus.WarnLevel, false},
		{"bad level", LoggingConfig{Level: "loud"}, 0, true},
		{"bad format", LoggingConfig{Level: "info", Format: "xml"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := tt.cfg.NewLogger()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.level, logger.GetLevel())
		})
	}
}
