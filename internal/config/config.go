package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	DBMaxOpenConns int
	DBMaxIdleConns int
	MigrationsPath string

	// JWT
	JWTSecret string

	// OperatorAPIKey guards category and rule administration.
	OperatorAPIKey string

	// Personalization cache
	PersonalizationCacheTTL  time.Duration
	PersonalizationCacheSize int

	// Bulk categorization
	BulkMaxWorkers         int
	BulkDefaultConfidence  float64
	BulkRateLimitPerMinute int
	BulkRateBurst          int
	JobStore               string
	JobRetention           time.Duration
	JobSweepSchedule       string
	JobMaxInMemory         int
}

// Job store backends.
const (
	JobStoreMemory   = "memory"
	JobStoreDatabase = "database"
)

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "smartbudget"),
		DBPassword: getEnv("DB_PASSWORD", "smartbudget"),
		DBName:     getEnv("DB_NAME", "smartbudget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 10),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		// JWT
		JWTSecret:      getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		OperatorAPIKey: os.Getenv("OPERATOR_API_KEY"),

		PersonalizationCacheTTL:  getDuration("PERSONALIZATION_CACHE_TTL", 5*time.Minute),
		PersonalizationCacheSize: getInt("PERSONALIZATION_CACHE_SIZE", 10000),

		BulkMaxWorkers:         getInt("BULK_MAX_WORKERS", 4),
		BulkDefaultConfidence:  getFloat("BULK_DEFAULT_CONFIDENCE_THRESHOLD", 0.7),
		BulkRateLimitPerMinute: getInt("BULK_RATE_LIMIT_PER_MINUTE", 6),
		BulkRateBurst:          getInt("BULK_RATE_BURST", 2),
		JobStore:               getEnv("JOB_STORE", JobStoreMemory),
		JobRetention:           getDuration("JOB_RETENTION", 24*time.Hour),
		JobSweepSchedule:       getEnv("JOB_SWEEP_SCHEDULE", "@every 10m"),
		JobMaxInMemory:         getInt("JOB_MAX_IN_MEMORY", 1000),
	}

	if config.BulkDefaultConfidence < 0 || config.BulkDefaultConfidence > 1 {
		log.Printf("Warning: BULK_DEFAULT_CONFIDENCE_THRESHOLD %v outside [0,1], falling back to 0.7\n", config.BulkDefaultConfidence)
		config.BulkDefaultConfidence = 0.7
	}
	if config.JobStore != JobStoreMemory && config.JobStore != JobStoreDatabase {
		log.Printf("Warning: unknown JOB_STORE '%s', falling back to %s\n", config.JobStore, JobStoreMemory)
		config.JobStore = JobStoreMemory
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return f
}
