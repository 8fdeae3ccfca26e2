package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StorageBackendFile     = "file"
	StorageBackendPostgres = "postgres"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
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
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// Enabled reports whether events should be published at all.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.BookingTopic != ""
}

type BookingConfig struct {
	TotalSeats       int   `yaml:"total_seats"`
	FirstTicketID    int64 `yaml:"first_ticket_id"`
	FirstPassengerID int64 `yaml:"first_passenger_id"`
}

type StorageConfig struct {
	Backend         string `yaml:"backend"`
	FilePath        string `yaml:"file_path"`
	SnapshotKey     string `yaml:"snapshot_key"`
	CacheEnabled    bool   `yaml:"cache_enabled"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	LoadOnStart     bool   `yaml:"load_on_start"`
	AutosaveSeconds int    `yaml:"autosave_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Booking.TotalSeats == 0 {
		c.Booking.TotalSeats = 20
	}
	if c.Booking.FirstTicketID == 0 {
		c.Booking.FirstTicketID = 1000
	}
	if c.Booking.FirstPassengerID == 0 {
		c.Booking.FirstPassengerID = 1
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageBackendFile
	}
	if c.Storage.FilePath == "" {
		c.Storage.FilePath = "data/booking_snapshot.json"
	}
	if c.Storage.SnapshotKey == "" {
		c.Storage.SnapshotKey = "train-booking"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	var problems []string

	if c.Booking.TotalSeats < 0 {
		problems = append(problems, fmt.Sprintf("booking.total_seats must be positive, got: %d", c.Booking.TotalSeats))
	}
	if c.Booking.FirstTicketID < 0 || c.Booking.FirstPassengerID < 0 {
		problems = append(problems, "booking id seeds cannot be negative")
	}
	switch c.Storage.Backend {
	case StorageBackendFile, StorageBackendPostgres:
	default:
		problems = append(problems, fmt.Sprintf("storage.backend must be %q or %q, got: %q", StorageBackendFile, StorageBackendPostgres, c.Storage.Backend))
	}
	if c.Storage.AutosaveSeconds < 0 {
		problems = append(problems, fmt.Sprintf("storage.autosave_seconds cannot be negative, got: %d", c.Storage.AutosaveSeconds))
	}
	if c.Storage.CacheEnabled && c.Redis.Addr == "" {
		problems = append(problems, "storage.cache_enabled requires redis.addr")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		problems = append(problems, fmt.Sprintf("log.format must be json or console, got: %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
