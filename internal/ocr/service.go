// Package ocr provides optical character recognition for scanned SSO report
// PDFs that carry no digital text layer.
//
// Recognition is an injected capability: the pipeline depends only on the
// Recognizer interface, so tests run against a fake and production wiring
// picks Google Cloud Vision or Document AI from configuration. Both backends
// accept whole PDFs, which keeps page rasterization on the service side.
//
// Required environment variables for the Google backends:
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account JSON file, OR
//   - GOOGLE_CREDENTIALS: inline JSON credentials string
package ocr

import (
	"context"
	"io"
	"time"
)

// Recognizer extracts text from a scanned PDF document.
type Recognizer interface {
	// Recognize submits the PDF and returns the concatenated text of all
	// pages in reading order.
	Recognize(ctx context.Context, pdf io.Reader) (*Result, error)
}

// Result contains recognized text with processing metadata.
type Result struct {
	// Text is the recognized text from all pages, concatenated in reading order.
	Text string `json:"text"`

	// PageCount is the number of pages that were processed.
	PageCount int `json:"page_count"`

	// Confidence is the average confidence across detected text (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// ProcessedAt is when recognition completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long recognition took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}
