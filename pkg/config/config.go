package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Embedding EmbeddingConfig
	Sync      SyncConfig
	Search    SearchConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EmbeddingConfig holds credentials and tuning for the remote embedding
// endpoint. AccountID and APIToken are both required; their absence is
// surfaced as a per-call configuration error, never a crash.
type EmbeddingConfig struct {
	AccountID      string
	APIToken       string
	BaseURL        string
	Model          string
	Dimension      int
	BatchSize      int // texts per network call
	MaxRetries     int // extra attempts after the first
	BaseBackoff    time.Duration
	RequestTimeout time.Duration
	RequestsPerSec float64
}

type SyncConfig struct {
	BatchSize int // rows per processing batch
}

type SearchConfig struct {
	DefaultThreshold float64
	DefaultLimit     int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine: plain environment variables work for Docker/K8s

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	dimension, _ := strconv.Atoi(getEnv("EMBEDDING_DIMENSION", "768"))
	embedBatch, _ := strconv.Atoi(getEnv("EMBEDDING_BATCH_SIZE", "100"))
	maxRetries, _ := strconv.Atoi(getEnv("EMBEDDING_MAX_RETRIES", "2"))
	baseBackoffMs, _ := strconv.Atoi(getEnv("EMBEDDING_BASE_BACKOFF_MS", "500"))
	requestTimeout, _ := strconv.Atoi(getEnv("EMBEDDING_REQUEST_TIMEOUT", "30"))
	requestsPerSec, _ := strconv.ParseFloat(getEnv("EMBEDDING_REQUESTS_PER_SEC", "5"), 64)
	syncBatch, _ := strconv.Atoi(getEnv("SYNC_BATCH_SIZE", "50"))
	threshold, _ := strconv.ParseFloat(getEnv("SEARCH_DEFAULT_THRESHOLD", "0.3"), 64)
	limit, _ := strconv.Atoi(getEnv("SEARCH_DEFAULT_LIMIT", "10"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "agrihire"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Embedding: EmbeddingConfig{
			AccountID:      getEnv("EMBEDDING_ACCOUNT_ID", ""),
			APIToken:       getEnv("EMBEDDING_API_TOKEN", ""),
			BaseURL:        getEnv("EMBEDDING_BASE_URL", "https://api.cloudflare.com/client/v4"),
			Model:          getEnv("EMBEDDING_MODEL", "@cf/baai/bge-base-en-v1.5"),
			Dimension:      dimension,
			BatchSize:      embedBatch,
			MaxRetries:     maxRetries,
			BaseBackoff:    time.Duration(baseBackoffMs) * time.Millisecond,
			RequestTimeout: time.Duration(requestTimeout) * time.Second,
			RequestsPerSec: requestsPerSec,
		},
		Sync: SyncConfig{
			BatchSize: syncBatch,
		},
		Search: SearchConfig{
			DefaultThreshold: threshold,
			DefaultLimit:     limit,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
