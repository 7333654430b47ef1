package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "")
	path := writeConfig(t, `
database:
  host: db
  port: 5432
  user: app
  name: tours
kafka:
  brokers: ["k1:9092"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, 7, cfg.Booking.InvoiceDueDays)
	assert.Equal(t, "QUAD", cfg.Booking.DefaultRoomType)
	assert.Equal(t, 12, cfg.Booking.LoyaltyValidityMonths)
	assert.Equal(t, "@every 5m", cfg.Worker.SweepSchedule())
	assert.Equal(t, "host=db port=5432 user=app password= dbname=tours sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "s3cret")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	path := writeConfig(t, `
database:
  driver: memory
worker:
  expiration_schedule: "0 */10 * * * *"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "0 */10 * * * *", cfg.Worker.SweepSchedule())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "database: [not, a, map]"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "database:\n  driver: sqlite\n"))
	assert.ErrorContains(t, err, "unknown database driver")

	_, err = LoadConfig(writeConfig(t, "booking:\n  admin_fee_per_pax: -1\n"))
	assert.ErrorContains(t, err, "admin_fee_per_pax")
}
