package ocr

import (
	"errors"
	"fmt"
)

// Common recognition errors.
var (
	// ErrPDFTooLarge is returned when the PDF exceeds the synchronous
	// processing size limit of the recognition service.
	ErrPDFTooLarge = errors.New("PDF file size exceeds the maximum limit")

	// ErrInvalidPDF is returned when the provided data is not a valid PDF.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrRecognitionFailed is returned when the recognition service fails to
	// process the document (network failure, quota, service error).
	ErrRecognitionFailed = errors.New("recognition failed")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS is configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")

	// ErrTooManyPages is returned when the PDF has more pages than the
	// service accepts for synchronous processing.
	ErrTooManyPages = errors.New("PDF has too many pages for synchronous processing")

	// ErrEmptyDocument is returned when the service found no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")
)

// OCRError wraps errors with context about the recognition failure.
type OCRError struct {
	// Op is the operation that failed (e.g. "Recognize").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is matches against the underlying error.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps err as an OCRError unless it already is one.
func WrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return &OCRError{Op: op, Err: err, Details: details}
}
