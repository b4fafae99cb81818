package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	NER      NERConfig
	Geo      GeoConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds record-store configuration. DSN selects the backend:
// a postgres:// URL opens a pgx pool, anything else is treated as a SQLite path.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
}

// OCRConfig holds text-recognizer configuration
type OCRConfig struct {
	ModelURL      string // primary OCR inference endpoint
	ModelToken    string
	ModelTimeout  time.Duration
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string
	TessdataDir   string
	MinTextLen    int // primary output at or below this length triggers fallback
}

// NERConfig holds entity-recognizer configuration
type NERConfig struct {
	PrimaryURL   string
	SecondaryURL string
	Token        string
	Timeout      time.Duration
}

// GeoConfig holds external place/postal lookup configuration
type GeoConfig struct {
	PostalBaseURL string
	PlaceBaseURL  string
	Timeout       time.Duration
}

// IngestConfig holds inbox watcher configuration
type IngestConfig struct {
	InboxDir  string // empty disables the watcher
	Workers   int
	QueueSize int
	Debounce  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "receipts.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			ModelURL:      getEnv("OCR_MODEL_URL", ""),
			ModelToken:    getEnv("OCR_MODEL_TOKEN", ""),
			ModelTimeout:  getEnvAsDuration("OCR_MODEL_TIMEOUT", 30*time.Second),
			Tesseract:     getEnv("TESSERACT_CMD", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			MinTextLen:    getEnvAsInt("OCR_MIN_TEXT_LEN", 10),
		},
		NER: NERConfig{
			PrimaryURL:   getEnv("NER_PRIMARY_URL", ""),
			SecondaryURL: getEnv("NER_SECONDARY_URL", ""),
			Token:        getEnv("NER_TOKEN", ""),
			Timeout:      getEnvAsDuration("NER_TIMEOUT", 15*time.Second),
		},
		Geo: GeoConfig{
			PostalBaseURL: getEnv("POSTAL_LOOKUP_URL", "https://api.postalpincode.in/pincode"),
			PlaceBaseURL:  getEnv("PLACE_LOOKUP_URL", ""),
			Timeout:       getEnvAsDuration("GEO_TIMEOUT", 5*time.Second),
		},
		Ingest: IngestConfig{
			InboxDir:  getEnv("INBOX_DIR", ""),
			Workers:   getEnvAsInt("INBOX_WORKERS", 4),
			QueueSize: getEnvAsInt("INBOX_QUEUE_SIZE", 256),
			Debounce:  getEnvAsDuration("INBOX_DEBOUNCE", 500*time.Millisecond),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.OCR.ModelURL == "" && c.OCR.Tesseract == "" {
		return NewAppError("CONFIG_ERROR", "at least one OCR engine must be configured", ErrInvalidInput)
	}
	return nil
}
