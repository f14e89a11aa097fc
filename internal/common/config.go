package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	OCR        OCRConfig
	Pipeline   PipelineConfig
	Classifier ClassifierConfig
	LogLevel   string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr    string
	MaxUploadMB int64
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm    string // binary name or absolute path; if empty -> "pdftoppm"
	Languages   string // tesseract -l value, e.g. "eng+fra+deu"
	TessdataDir string
	DPI         int
	MaxPages    int
	Timeout     time.Duration
}

// PipelineConfig holds per-tier extraction behavior
type PipelineConfig struct {
	TierTimeout   time.Duration // wall-clock budget per extraction tier
	MinPDFTextLen int           // below this, a PDF text layer counts as scanned
	TempDir       string        // uploaded bytes spill here, removed after processing
}

// ClassifierConfig holds external reasoning service configuration
type ClassifierConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	RatePerSec  float64
	Burst       int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
			MaxUploadMB: int64(getEnvAsInt("MAX_UPLOAD_MB", 25)),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Languages:   getEnv("OCR_LANGS", "eng+fra+deu+spa+ita+por+nld+pol+ara+heb+tha+vie"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			DPI:         getEnvAsInt("OCR_DPI", 300),
			MaxPages:    getEnvAsInt("OCR_MAX_PAGES", 10),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			TierTimeout:   getEnvAsDuration("TIER_TIMEOUT", 20*time.Second),
			MinPDFTextLen: getEnvAsInt("MIN_PDF_TEXT_LEN", 32),
			TempDir:       getEnv("UPLOAD_TMP_DIR", ""),
		},
		Classifier: ClassifierConfig{
			BaseURL:     getEnv("CLASSIFIER_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("CLASSIFIER_API_KEY", ""),
			Model:       getEnv("CLASSIFIER_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("CLASSIFIER_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("CLASSIFIER_TIMEOUT", 45*time.Second),
			RatePerSec:  getEnvAsFloat64("CLASSIFIER_RATE_PER_SEC", 2),
			Burst:       getEnvAsInt("CLASSIFIER_BURST", 4),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadMB <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_MB must be positive", ErrInvalidInput)
	}
	if c.Pipeline.TierTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "TIER_TIMEOUT must be positive", ErrInvalidInput)
	}
	return nil
}
