package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Uploads       UploadConfig
	OCR           OCRConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// UploadConfig controls receipt file storage and retention.
type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
	RetentionAge time.Duration
}

// OCRConfig controls the tesseract invocation.
type OCRConfig struct {
	Tesseract       string
	Lang            string
	PSM             int
	RetryPSM        int
	RetryTextLength int
	Timeout         time.Duration
	MaxConcurrent   int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "localhost"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "bill-tracker"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Uploads: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeBytes: int64(getEnvAsInt("UPLOAD_MAX_SIZE_MB", 50)) << 20,
			RetentionAge: getEnvAsDuration("UPLOAD_RETENTION", 90*24*time.Hour),
		},
		OCR: OCRConfig{
			Tesseract:       getEnv("OCR_TESSERACT_PATH", "tesseract"),
			Lang:            getEnv("OCR_LANG", "eng"),
			PSM:             getEnvAsInt("OCR_PSM", 6),
			RetryPSM:        getEnvAsInt("OCR_RETRY_PSM", 3),
			RetryTextLength: getEnvAsInt("OCR_RETRY_TEXT_LENGTH", 50),
			Timeout:         getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
			MaxConcurrent:   getEnvAsInt("OCR_MAX_CONCURRENT", 2),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
