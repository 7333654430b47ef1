package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address     string   `yaml:"address"`
	SwaggerDir  string   `yaml:"swagger_dir"`
	CORSOrigins []string `yaml:"cors_origins"`

	// RateLimit is a per-client limit in limiter format, e.g. "100-M". Empty disables it.
	RateLimit string `yaml:"rate_limit"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
	Migrate  bool   `yaml:"migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
	PublishRetries     int      `yaml:"publish_retries"`
}

type BookingConfig struct {
	HoldTTLMinutes        int     `yaml:"hold_ttl_minutes"`
	AdminFeePerPax        float64 `yaml:"admin_fee_per_pax"`
	InvoiceDueDays        int     `yaml:"invoice_due_days"`
	DefaultRoomType       string  `yaml:"default_room_type"`
	DeparturesCacheTTL    int     `yaml:"departures_cache_ttl_seconds"`
	RosterLockTTLSeconds  int     `yaml:"roster_lock_ttl_seconds"`
	LoyaltyValidityMonths int     `yaml:"loyalty_validity_months"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`

	// ExpirationSchedule is a cron spec that overrides ExpirationSweepMinutes when set.
	ExpirationSchedule string `yaml:"expiration_schedule"`
}

// SweepSchedule is the cron spec of the expiry sweep.
func (w WorkerConfig) SweepSchedule() string {
	if w.ExpirationSchedule != "" {
		return w.ExpirationSchedule
	}
	return fmt.Sprintf("@every %dm", w.ExpirationSweepMinutes)
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// LoadConfig reads the YAML file at path. Values from a .env file in the working directory
// and from the process environment override the secrets and broker list.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

// Validate fills in defaults and rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory {
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Booking.InvoiceDueDays == 0 {
		c.Booking.InvoiceDueDays = 7
	}
	if c.Booking.DefaultRoomType == "" {
		c.Booking.DefaultRoomType = "QUAD"
	}
	if c.Booking.DeparturesCacheTTL == 0 {
		c.Booking.DeparturesCacheTTL = 30
	}
	if c.Booking.RosterLockTTLSeconds == 0 {
		c.Booking.RosterLockTTLSeconds = 30
	}
	if c.Booking.LoyaltyValidityMonths == 0 {
		c.Booking.LoyaltyValidityMonths = 12
	}
	if c.Booking.AdminFeePerPax < 0 {
		return fmt.Errorf("admin_fee_per_pax must not be negative")
	}
	if c.Worker.ExpirationSweepMinutes == 0 {
		c.Worker.ExpirationSweepMinutes = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	return nil
}
