// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL (location directory)
	PostgresURI string

	// Reference data
	PrefixDataPath string

	// Sync job
	SyncDatasetPath string
	SyncWorkers     int

	// Diagnostics
	RawDumpLimit int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "flightspotter"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=postgres dbname=flightspotter port=5432"),

		PrefixDataPath: getEnv("PREFIX_DATA_PATH", "data/registration_prefixes.json"),

		SyncDatasetPath: getEnv("SYNC_DATASET_PATH", "data/aircraft_database.csv"),
		SyncWorkers:     getEnvAsInt("SYNC_WORKERS", 8),

		RawDumpLimit: getEnvAsInt("RAW_DUMP_LIMIT", 5),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
