// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	URI      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// UploadConfig holds settings for the external upload service: where stored
// files are served from, where delete calls go, and how they are authenticated.
type UploadConfig struct {
	// PublicBaseURL is prepended to stored filenames on read paths and
	// stripped back off before remote delete calls.
	PublicBaseURL string
	// ServerURL is the upload service origin for DELETE /delete/{filename}.
	ServerURL string
	// JWTSecret signs the short-lived service tokens sent with delete calls.
	JWTSecret string
	// RequestTimeout bounds every call to the upload service.
	RequestTimeout time.Duration
	// ReconcileSchedule is the cron expression for draining queued file
	// deletions.
	ReconcileSchedule string
}

// Config holds the complete application configuration
type Config struct {
	Server   *ServerConfig
	Database *DatabaseConfig
	Upload   *UploadConfig
	Debug    bool
}

// DefaultServerConfig provides default server settings
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           3000,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Port:    5432,
		SSLMode: "require",
	}
}

// DefaultUploadConfig provides default upload service settings
func DefaultUploadConfig() *UploadConfig {
	return &UploadConfig{
		RequestTimeout:    10 * time.Second,
		ReconcileSchedule: "@every 1m",
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Silent failure if no .env exists, which is fine
	_ = godotenv.Load()

	serverConfig := DefaultServerConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}
	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := DefaultDatabaseConfig()

	// Prioritize DATABASE_URL if provided
	if uri := os.Getenv("DATABASE_URL"); uri != "" {
		dbConfig.URI = uri
		dbConfig.SSLMode = sslModeFromURI(uri)
	} else {
		// Fallback to individual variables if DATABASE_URL is not set
		dbConfig.Host = getEnvOrDefault("DB_HOST", "localhost")

		if portStr := os.Getenv("DB_PORT"); portStr != "" {
			if port, err := strconv.Atoi(portStr); err == nil {
				dbConfig.Port = port
			}
		}

		dbConfig.User = os.Getenv("DB_USER")
		if dbConfig.User == "" {
			return nil, fmt.Errorf("DB_USER environment variable is required when DATABASE_URL is not set")
		}

		dbConfig.Password = os.Getenv("DB_PASS")
		if dbConfig.Password == "" {
			return nil, fmt.Errorf("DB_PASS environment variable is required when DATABASE_URL is not set")
		}

		dbConfig.Name = getEnvOrDefault("DB_NAME", "takkatuli")
		dbConfig.SSLMode = getEnvOrDefault("DB_SSL_MODE", "require")

		dbConfig.URI = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			dbConfig.User,
			dbConfig.Password,
			dbConfig.Host,
			dbConfig.Port,
			dbConfig.Name,
			dbConfig.SSLMode,
		)
	}

	uploadConfig := DefaultUploadConfig()

	uploadConfig.PublicBaseURL = os.Getenv("UPLOAD_URL")
	if uploadConfig.PublicBaseURL == "" {
		return nil, fmt.Errorf("UPLOAD_URL environment variable is required")
	}
	uploadConfig.ServerURL = os.Getenv("UPLOAD_SERVER")
	if uploadConfig.ServerURL == "" {
		return nil, fmt.Errorf("UPLOAD_SERVER environment variable is required")
	}
	uploadConfig.JWTSecret = os.Getenv("SERVICE_JWT_SECRET")
	if uploadConfig.JWTSecret == "" {
		return nil, fmt.Errorf("SERVICE_JWT_SECRET environment variable is required")
	}

	if timeoutStr := os.Getenv("UPLOAD_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			uploadConfig.RequestTimeout = timeout
		}
	}
	if schedule := os.Getenv("FILE_RECONCILE_SCHEDULE"); schedule != "" {
		uploadConfig.ReconcileSchedule = schedule
	}

	config := &Config{
		Server:   serverConfig,
		Database: dbConfig,
		Upload:   uploadConfig,
		Debug:    os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to extract sslmode from a DSN, defaults to "require"
func sslModeFromURI(uri string) string {
	if strings.Contains(uri, "sslmode=") {
		parts := strings.Split(uri, "?")
		if len(parts) > 1 {
			queryParams := strings.Split(parts[1], "&")
			for _, param := range queryParams {
				kv := strings.SplitN(param, "=", 2)
				if len(kv) == 2 && kv[0] == "sslmode" {
					return kv[1]
				}
			}
		}
	}
	return "require"
}
