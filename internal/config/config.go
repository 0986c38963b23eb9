// Package config provides configuration management for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Storage backends understood by the repository factory
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the complete application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Redis   RedisConfig
}

// ServerConfig holds HTTP server and runtime settings
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
	// Location is the wall clock every room status is computed in
	Location        *time.Location
	RefreshInterval time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig selects and configures the repository backend
type StorageConfig struct {
	Backend    string
	SQLitePath string
}

// RedisConfig holds Redis/Valkey configuration
type RedisConfig struct {
	// URI is prioritized if provided, otherwise individual connection parameters are used
	URI       string
	Host      string
	Port      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	// AppointmentTTL is how long an appointment is kept after its day ends (0 means no expiration)
	AppointmentTTL time.Duration
	// Location decides when an appointment's day ends
	Location *time.Location
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	server, err := GetServerConfig()
	if err != nil {
		return Config{}, err
	}

	storage := GetStorageConfig()
	switch storage.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", storage.Backend)
	}

	redisConfig := GetRedisConfig()
	redisConfig.Location = server.Location

	return Config{
		Server:  server,
		Storage: storage,
		Redis:   redisConfig,
	}, nil
}

// GetServerConfig loads server configuration from environment variables
func GetServerConfig() (ServerConfig, error) {
	locName := getEnv("TZ_LOCATION", "Europe/Oslo")
	loc, err := time.LoadLocation(locName)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("failed to load location %q: %w", locName, err)
	}

	return ServerConfig{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "production"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Location:        loc,
		RefreshInterval: getEnvDuration("STATUS_REFRESH_INTERVAL", time.Minute),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}, nil
}

// GetStorageConfig loads the repository backend selection
func GetStorageConfig() StorageConfig {
	backend := strings.ToLower(getEnv("STORAGE_BACKEND", ""))
	if backend == "" {
		// Older deployments only set REDIS_ENABLED
		backend = BackendMemory
		if getEnvBool("REDIS_ENABLED", false) {
			backend = BackendRedis
		}
	}

	return StorageConfig{
		Backend:    backend,
		SQLitePath: getEnv("SQLITE_PATH", "roomboard.db"),
	}
}

// GetRedisConfig loads Redis/Valkey configuration from environment variables
func GetRedisConfig() RedisConfig {
	ttlHours := getEnvInt("APPOINTMENT_TTL_HOURS", 24*14)

	return RedisConfig{
		URI:            getEnv("REDIS_URI_ROOMBOARD", ""),
		Host:           getEnv("REDIS_HOST_ROOMBOARD", getEnv("REDIS_ADDRESS", "localhost")),
		Port:           getEnv("REDIS_PORT_ROOMBOARD", "6379"),
		Username:       getEnv("REDIS_USERNAME_ROOMBOARD", ""),
		Password:       getEnv("REDIS_PASSWORD_ROOMBOARD", getEnv("REDIS_PASSWORD", "")),
		DB:             getEnvInt("REDIS_DB", 0),
		KeyPrefix:      getEnv("REDIS_KEY_PREFIX", "roomboard:"),
		AppointmentTTL: time.Duration(ttlHours) * time.Hour,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool retrieves a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
