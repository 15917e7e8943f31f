package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "parsed_sso_data.csv", cfg.OutputPath)
	assert.False(t, cfg.KeepRawWater)
	assert.Equal(t, 100, cfg.MinTextChars)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, OCRBackendVision, cfg.OCRBackend)
	assert.Equal(t, 60*time.Second, cfg.OCRTimeout)
	assert.Equal(t, 2000, cfg.ArcGISPageSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SSO_OUTPUT_PATH", "/tmp/out.csv.gz")
	t.Setenv("SSO_KEEP_RAW_WATER", "true")
	t.Setenv("SSO_WORKERS", "8")
	t.Setenv("SSO_MIN_TEXT_CHARS", "250")
	t.Setenv("OCR_BACKEND", "none")
	t.Setenv("OCR_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out.csv.gz", cfg.OutputPath)
	assert.True(t, cfg.KeepRawWater)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 250, cfg.MinTextChars)
	assert.Equal(t, OCRBackendNone, cfg.OCRBackend)
	assert.Equal(t, 90*time.Second, cfg.OCRTimeout)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("OCR_BACKEND", "tesseract")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDocumentAIRequiresProcessor(t *testing.T) {
	t.Setenv("OCR_BACKEND", "documentai")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "proc-123")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "proc-123", cfg.DocumentAIProcessorID)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SSO_WORKERS", "-3")
	t.Setenv("OCR_TIMEOUT", "soon")
	t.Setenv("SSO_KEEP_RAW_WATER", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 60*time.Second, cfg.OCRTimeout)
	assert.False(t, cfg.KeepRawWater)
}
