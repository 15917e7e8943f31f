// Package acquire turns one report document into page-ordered text, using the
// native PDF text layer first and optical recognition as the fallback.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ssoetl/internal/logger"
	"ssoetl/internal/ocr"
	"ssoetl/pkg/models"
)

// ErrDocumentUnreadable is returned when the byte stream is not a parseable
// document. The caller excludes the document from further processing and
// counts it; there is no retry.
var ErrDocumentUnreadable = errors.New("document unreadable")

// ExtractedText is the page-ordered text of one document.
type ExtractedText struct {
	// Pages holds per-page text for native extraction, or a single element
	// with the full recognized text when OCR was used.
	Pages []string

	// Source records which extraction path produced the text.
	Source models.TextSource

	// FooterTimestamp is the filing-system stamp parsed from page footers,
	// nil when no stamp was found.
	FooterTimestamp *time.Time

	// RecognitionFailed is true when the native layer was unusable and the
	// recognition call also failed; Pages is empty in that case and the
	// document proceeds with all extractable fields null.
	RecognitionFailed bool
}

// Text returns the concatenated page text.
func (e *ExtractedText) Text() string {
	return strings.Join(e.Pages, "\n")
}

// Extractor acquires text for one document at a time.
type Extractor struct {
	recognizer  ocr.Recognizer
	minChars    int
	textTimeout time.Duration
	log         zerolog.Logger
}

// NewExtractor builds an Extractor. recognizer may be nil to disable the OCR
// fallback; minChars is the usable-character threshold below which the native
// text layer is treated as a scan.
func NewExtractor(recognizer ocr.Recognizer, minChars int, textTimeout time.Duration) *Extractor {
	if minChars <= 0 {
		minChars = 100
	}
	if textTimeout <= 0 {
		textTimeout = 15 * time.Second
	}
	return &Extractor{
		recognizer:  recognizer,
		minChars:    minChars,
		textTimeout: textTimeout,
		log:         logger.WithComponent("acquire"),
	}
}

// Acquire produces the ExtractedText for the document at path. The only error
// it returns is ErrDocumentUnreadable (wrapped); every downstream degradation
// (empty text layer, failed recognition) is represented on the result instead.
func (e *Extractor) Acquire(ctx context.Context, path string) (*ExtractedText, error) {
	pageCount, err := validatePDF(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentUnreadable, path, err)
	}

	pages := make([]string, 0, pageCount)
	for p := 1; p <= pageCount; p++ {
		pageCtx, cancel := context.WithTimeout(ctx, e.textTimeout)
		text, err := textForPage(pageCtx, path, p)
		cancel()
		if err != nil {
			// A single bad page does not fail the document.
			e.log.Debug().Str("file", path).Int("page", p).Err(err).Msg("native text extraction failed for page")
			text = ""
		}
		pages = append(pages, text)
	}

	result := &ExtractedText{Pages: pages, Source: models.TextSourceNative}
	if usableChars(result.Text()) >= e.minChars {
		result.FooterTimestamp = ParseFooterTimestamp(result.Text())
		return result, nil
	}

	// Empty or unusable text layer: treat as a scanned image.
	result.Pages = nil
	result.Source = models.TextSourceNone

	if e.recognizer == nil {
		return result, nil
	}

	recognized, err := e.recognize(ctx, path)
	if err != nil {
		e.log.Warn().Str("file", path).Err(err).Msg("recognition failed, proceeding with empty text")
		result.RecognitionFailed = true
		return result, nil
	}

	result.Pages = []string{recognized.Text}
	result.Source = models.TextSourceRecognized
	result.FooterTimestamp = ParseFooterTimestamp(recognized.Text)
	return result, nil
}

func (e *Extractor) recognize(ctx context.Context, path string) (*ocr.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result, err := e.recognizer.Recognize(ctx, f)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, ocr.ErrEmptyDocument
	}
	return result, nil
}

// usableChars counts non-whitespace runes, the measure the threshold applies to.
func usableChars(text string) int {
	n := 0
	for _, r := range text {
		if !isSpace(r) {
			n++
		}
	}
	return n
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
