package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	OCR      OCRConfig
	Registro RegistroConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string
	MaxUploadBytes int64
	RatePerSecond  float64
	RateBurst      int
}

// DatabaseConfig holds audit-store configuration
type DatabaseConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// OCRConfig holds text-acquisition configuration. Binary locations are
// injected here rather than hard-coded so deployments can point at their own
// poppler/tesseract installs.
type OCRConfig struct {
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	PSM           int
	MaxPages      int
}

// RegistroConfig holds the external registration service configuration
type RegistroConfig struct {
	AuthURL     string
	RegistroURL string
	Usuario     string
	Clave       string
	Timeout     time.Duration
	TokenTTL    time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8000"),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 20<<20),
			RatePerSecond:  getEnvAsFloat64("RATE_LIMIT_PER_SECOND", 10),
			RateBurst:      getEnvAsInt("RATE_LIMIT_BURST", 30),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", "facturas.db"),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Pdftoppm:      getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "spa"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			PSM:           getEnvAsInt("OCR_PSM", 11),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Registro: RegistroConfig{
			AuthURL:     getEnv("AUTH_URL", ""),
			RegistroURL: getEnv("REGISTRO_URL", ""),
			Usuario:     getEnv("USUARIO", ""),
			Clave:       getEnv("CLAVE", ""),
			Timeout:     getEnvAsDuration("REGISTRO_TIMEOUT", 30*time.Second),
			TokenTTL:    getEnvAsDuration("REGISTRO_TOKEN_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
	if c.Registro.AuthURL == "" {
		return NewAppError("CONFIG_ERROR", "AUTH_URL is required", ErrInvalidInput)
	}
	if c.Registro.RegistroURL == "" {
		return NewAppError("CONFIG_ERROR", "REGISTRO_URL is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
