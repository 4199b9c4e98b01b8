package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// TableSource is a file path, an http(s) URL, or a database DSN
	// (postgres:// / mysql:// / mariadb://).
	TableSource string
	TableName   string

	RegularVisitThreshold int
	RetentionFactor       float64

	MaxConcurrency int
	MaxRetries     int
	RetryBaseMs    int

	SummaryCSVPath string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		TableSource: getEnv("TABLE_SOURCE", "./data/customer_orders.csv"),
		TableName:   getEnv("TABLE_NAME", "order_lines"),

		RegularVisitThreshold: getEnvInt("REGULAR_VISIT_THRESHOLD", 3),
		RetentionFactor:       getEnvFloat("RETENTION_FACTOR", 1.2),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RetryBaseMs:    getEnvInt("RETRY_BASE_MS", 500),

		SummaryCSVPath: getEnv("SUMMARY_CSV_PATH", "./output/customer_summaries.csv"),
	}
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

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
