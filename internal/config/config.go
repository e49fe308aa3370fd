package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for swim-timer
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Race     RaceConfig
	Feed     FeedConfig
	Publish  PublishConfig
	Redis    RedisConfig
	Database DatabaseConfig
	S3       S3Config
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level slog.Level
}

// RaceConfig holds roster and category configuration
type RaceConfig struct {
	RosterPath   string
	RaceCategory string
	BracketsFile string
}

// FeedConfig holds live feed configuration
type FeedConfig struct {
	Interval time.Duration
}

// PublishConfig holds publish worker configuration
type PublishConfig struct {
	Interval time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	Prefix   string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Enabled       bool
	DSN           string
	MigrationsDir string
	MaxOpenConns  int
	MaxIdleConns  int
}

// S3Config holds object storage configuration
type S3Config struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Load loads configuration from environment variables, reading a .env file first if present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Log: LogConfig{
			Level: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
		},
		Race: RaceConfig{
			RosterPath:   getEnv("ROSTER_PATH", "swimmers.csv"),
			RaceCategory: getEnv("RACE_CATEGORY", ""),
			BracketsFile: getEnv("BRACKETS_FILE", ""),
		},
		Feed: FeedConfig{
			Interval: getEnvAsDuration("FEED_INTERVAL", 500*time.Millisecond),
		},
		Publish: PublishConfig{
			Interval: getEnvAsDuration("PUBLISH_INTERVAL", 5*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "swim-timer"),
		},
		Database: DatabaseConfig{
			Enabled:       getEnvAsBool("DATABASE_ENABLED", false),
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", ""),
			MaxOpenConns:  getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 5),
			MaxIdleConns:  getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 1),
		},
		S3: S3Config{
			Enabled:         getEnvAsBool("S3_ENABLED", false),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "auto"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("S3_PREFIX", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Race.RosterPath == "" {
		return fmt.Errorf("roster path is required")
	}

	if c.Feed.Interval <= 0 {
		return fmt.Errorf("feed interval must be positive")
	}

	if c.Publish.Interval <= 0 {
		return fmt.Errorf("publish interval must be positive")
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required when the database is enabled")
	}

	if c.S3.Enabled && (c.S3.Bucket == "" || c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "") {
		return fmt.Errorf("s3 bucket and credentials are required when s3 is enabled")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value, exists := os.LookupEnv(key); exists {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err == nil {
			return level
		}
	}
	return defaultValue
}
