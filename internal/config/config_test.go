package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  mode: development
database:
  host: db
  name: clinic
jwt:
  secret: s3cret
clinic:
  timezone: Europe/Madrid
outbox:
  retry_attempts: 3
  retry_delay: 10s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 3, cfg.Outbox.RetryAttempts)
	assert.Equal(t, 10*time.Second, cfg.Outbox.RetryDelay)
	assert.Equal(t, 50, cfg.Outbox.BatchSize)
	assert.Equal(t, "appointment-notifications", cfg.Redis.Channel)

	loc, err := cfg.Clinic.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
database:
  host: db
`)
	t.Setenv("DENTAL_DATABASE_HOST", "override")
	t.Setenv("DENTAL_JWT_SECRET", "from-env")
	t.Setenv("DENTAL_OUTBOX_BATCH_SIZE", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "override", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7, cfg.Outbox.BatchSize)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: x\nclinic:\n  timezone: Mars/Olympus\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", c.DSN())
}
