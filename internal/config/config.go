// Package config loads pipeline configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ssoetl/internal/logger"
)

// OCR backend names accepted by OCR_BACKEND.
const (
	OCRBackendVision     = "vision"
	OCRBackendDocumentAI = "documentai"
	OCRBackendNone       = "none"
)

// Config is the immutable run configuration. It is loaded once in main and
// passed into the pipeline entry point; nothing reads the environment after
// Load returns.
type Config struct {
	// Output
	OutputPath   string
	KeepRawWater bool

	// Text acquisition
	MinTextChars   int
	PDFTextTimeout time.Duration

	// Per-document worker pool
	Workers int

	// OCR
	OCRBackend    string
	OCRTimeout    time.Duration
	OCRMaxRetries int
	OCRRateEvery  time.Duration
	OCRRateBurst  int

	// Google Cloud (Document AI backend)
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// ArcGIS REST source
	ArcGISBaseURL  string
	ArcGISTimeout  time.Duration
	ArcGISPageSize int

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	config := &Config{
		OutputPath:   envStr("SSO_OUTPUT_PATH", "parsed_sso_data.csv"),
		KeepRawWater: envBool("SSO_KEEP_RAW_WATER", false),

		MinTextChars:   envInt("SSO_MIN_TEXT_CHARS", 100),
		PDFTextTimeout: envDur("SSO_PDFTOTEXT_TIMEOUT", 15*time.Second),

		Workers: envInt("SSO_WORKERS", 4),

		OCRBackend:    envStr("OCR_BACKEND", OCRBackendVision),
		OCRTimeout:    envDur("OCR_TIMEOUT", 60*time.Second),
		OCRMaxRetries: envInt("OCR_MAX_RETRIES", 2),
		OCRRateEvery:  envDur("OCR_RATE_EVERY", 500*time.Millisecond),
		OCRRateBurst:  envInt("OCR_RATE_BURST", 2),

		GoogleCloudProject:    envStr("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   envStr("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: envStr("DOCUMENT_AI_PROCESSOR_ID", ""),

		ArcGISBaseURL:  envStr("SSO_API_BASE_URL", ""),
		ArcGISTimeout:  envDur("SSO_API_TIMEOUT", 30*time.Second),
		ArcGISPageSize: envInt("SSO_API_PAGE_SIZE", 2000),

		LogLevel:      envStr("LOG_LEVEL", "info"),
		LogFormat:     envStr("LOG_FORMAT", "console"),
		LogTimeFormat: envStr("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:     envStr("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCRBackend {
	case OCRBackendVision, OCRBackendDocumentAI, OCRBackendNone:
	default:
		return fmt.Errorf("OCR_BACKEND must be one of %q, %q, %q",
			OCRBackendVision, OCRBackendDocumentAI, OCRBackendNone)
	}
	if c.OCRBackend == OCRBackendDocumentAI && c.DocumentAIProcessorID == "" {
		return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required when OCR_BACKEND=documentai")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config.
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
