package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DataSourceRemote   = "remote"
	DataSourceDatabase = "database"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	Hyacinth  HyacinthConfig
	Ingestion IngestionConfig
	Kafka     KafkaConfig
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// HyacinthConfig holds the remote attendance API settings
type HyacinthConfig struct {
	BaseURL       string
	APIKey        string
	DepartmentID  string
	ClientTimeout time.Duration
}

type IngestionConfig struct {
	DataSource       string
	RefreshInterval  time.Duration
	RefreshRangeDays int
	FetchConcurrency int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func Load() (*Config, error) {
	// A missing .env is fine, the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbEnabled, err := strconv.ParseBool(getEnv("DB_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_ENABLED: %w", err)
	}

	config.Database = DatabaseConfig{
		Enabled:  dbEnabled,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Remote attendance API
	clientTimeout, err := time.ParseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_CLIENT_TIMEOUT: %w", err)
	}

	config.Hyacinth = HyacinthConfig{
		BaseURL:       getEnv("HYACINTH_BASE_URL", ""),
		APIKey:        getEnv("HYACINTH_API_KEY", ""),
		DepartmentID:  getEnv("HYACINTH_DEPARTMENT_ID", ""),
		ClientTimeout: clientTimeout,
	}

	// Ingestion
	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	rangeDays, err := strconv.Atoi(getEnv("REFRESH_RANGE_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_RANGE_DAYS: %w", err)
	}
	concurrency, err := strconv.Atoi(getEnv("FETCH_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_CONCURRENCY: %w", err)
	}

	config.Ingestion = IngestionConfig{
		DataSource:       strings.ToLower(getEnv("DATA_SOURCE", DataSourceRemote)),
		RefreshInterval:  refreshInterval,
		RefreshRangeDays: rangeDays,
		FetchConcurrency: concurrency,
	}

	// Kafka (optional)
	config.Kafka = KafkaConfig{
		Brokers: getEnvSlice("KAFKA_BROKERS"),
		Topic:   getEnv("KAFKA_TOPIC", "attendance.classified"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Ingestion.DataSource {
	case DataSourceRemote:
		if c.Hyacinth.APIKey == "" {
			return fmt.Errorf("HYACINTH_API_KEY is required when DATA_SOURCE=remote")
		}
		if c.Hyacinth.DepartmentID == "" {
			return fmt.Errorf("HYACINTH_DEPARTMENT_ID is required when DATA_SOURCE=remote")
		}
	case DataSourceDatabase:
		if !c.Database.Enabled {
			return fmt.Errorf("DB_ENABLED must be true when DATA_SOURCE=database")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: remote, database")
	}

	if c.Database.Enabled && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Ingestion.RefreshRangeDays < 1 || c.Ingestion.RefreshRangeDays > 60 {
		return fmt.Errorf("REFRESH_RANGE_DAYS must be between 1 and 60")
	}
	if c.Ingestion.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1")
	}
	if c.Ingestion.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be at least 1s")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
