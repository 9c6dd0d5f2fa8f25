package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency    int
	RateLimitBackoffS int
	HTTPTimeoutS      int

	BaseURL      string
	NominatimURL string

	CSVOutputPath string
	LogDir        string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "otodom_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency:    getEnvInt("MAX_CONCURRENCY", 10),
		RateLimitBackoffS: getEnvInt("RATE_LIMIT_BACKOFF_S", 300),
		HTTPTimeoutS:      getEnvInt("HTTP_TIMEOUT_S", 30),

		BaseURL:      getEnv("OTODOM_BASE_URL", "https://www.otodom.pl"),
		NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/flats.csv"),
		LogDir:        getEnv("LOG_DIR", "./logs"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// RateLimitBackoff is the mandatory cooldown after a 403 response.
func (c *Config) RateLimitBackoff() time.Duration {
	return time.Duration(c.RateLimitBackoffS) * time.Second
}

// HTTPTimeout is the per-request timeout for all outbound requests.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutS) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
