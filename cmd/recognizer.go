package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ssoetl/internal/config"
	"ssoetl/internal/ocr"
)

// buildRecognizer assembles the configured OCR backend, wrapped with retry
// and rate limiting. Returns a nil recognizer (and nil closer) when OCR is
// disabled.
func buildRecognizer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ocr.Recognizer, func(), error) {
	var (
		inner  ocr.Recognizer
		closer func()
		err    error
	)

	switch cfg.OCRBackend {
	case config.OCRBackendNone:
		log.Info().Msg("optical recognition disabled")
		return nil, nil, nil

	case config.OCRBackendVision:
		var svc *ocr.GoogleVisionRecognizer
		svc, err = ocr.NewGoogleVisionRecognizer(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create vision recognizer: %w", err)
		}
		inner = svc
		closer = func() {
			if cerr := svc.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("failed to close vision client")
			}
		}

	case config.OCRBackendDocumentAI:
		var svc *ocr.DocumentAIRecognizer
		svc, err = ocr.NewDocumentAIRecognizer(ctx, ocr.DocumentAIConfig{
			ProjectID:   cfg.GoogleCloudProject,
			Location:    cfg.GoogleCloudLocation,
			ProcessorID: cfg.DocumentAIProcessorID,
			Timeout:     cfg.OCRTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create document ai recognizer: %w", err)
		}
		inner = svc
		closer = func() {
			if cerr := svc.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("failed to close document ai client")
			}
		}

	default:
		return nil, nil, fmt.Errorf("unknown OCR backend %q", cfg.OCRBackend)
	}

	wrapped := ocr.WithRateLimit(
		ocr.WithRetry(inner, cfg.OCRMaxRetries, time.Second),
		cfg.OCRRateEvery,
		cfg.OCRRateBurst,
	)
	return wrapped, closer, nil
}
