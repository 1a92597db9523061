package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatasetURL    = "https://raw.githubusercontent.com/AnaOttavi/Data_Visualization_Project/master/dataset.csv"
	defaultBackgroundURL = "https://raw.githubusercontent.com/AnaOttavi/Data_Visualization_Project/master/seattle.jpg"
)

// Dataset sources accepted by DATASET_SOURCE.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatasetURL         string
	DatasetSource      string
	BackgroundImageURL string
	FetchTimeout       time.Duration

	HTTPAddr string
	LogLevel string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int

	MaxConcurrency int
	ExportDir      string
	ChromeBin      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		DatasetURL:         getEnv("DATASET_URL", defaultDatasetURL),
		DatasetSource:      getEnv("DATASET_SOURCE", SourceCSV),
		BackgroundImageURL: getEnv("BACKGROUND_IMAGE_URL", defaultBackgroundURL),
		FetchTimeout:       time.Duration(getEnvInt("FETCH_TIMEOUT_SEC", 60)) * time.Second,

		HTTPAddr: getEnv("HTTP_ADDR", ":8050"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "dashboard"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "dashboard123"),
		PostgresDB:       getEnv("POSTGRES_DB", "housing_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 10),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		ExportDir:      getEnv("EXPORT_DIR", "./output"),
		ChromeBin:      getEnv("CHROME_BIN", ""),
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
