package ocr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/time/rate"
)

// WithRetry wraps a recognizer with a small fixed number of retries and
// doubling backoff. Non-transient failures (bad input, empty document) are
// returned immediately.
func WithRetry(inner Recognizer, maxRetries int, backoff time.Duration) Recognizer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &retryingRecognizer{inner: inner, maxRetries: maxRetries, backoff: backoff}
}

type retryingRecognizer struct {
	inner      Recognizer
	maxRetries int
	backoff    time.Duration
}

func (r *retryingRecognizer) Recognize(ctx context.Context, pdf io.Reader) (*Result, error) {
	// Buffer once so every attempt sees the full document.
	pdfBytes, err := io.ReadAll(pdf)
	if err != nil {
		return nil, WrapError("Recognize", err, "failed to read PDF data")
	}

	var lastErr error
	wait := r.backoff
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}

		result, err := r.inner.Recognize(ctx, bytes.NewReader(pdfBytes))
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidPDF),
		errors.Is(err, ErrPDFTooLarge),
		errors.Is(err, ErrTooManyPages),
		errors.Is(err, ErrEmptyDocument),
		errors.Is(err, ErrMissingCredentials),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// WithRateLimit wraps a recognizer with a token-bucket limiter so concurrent
// workers cannot exceed the recognition service's request budget.
func WithRateLimit(inner Recognizer, every time.Duration, burst int) Recognizer {
	if every <= 0 {
		every = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	return &limitedRecognizer{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(every), burst),
	}
}

type limitedRecognizer struct {
	inner   Recognizer
	limiter *rate.Limiter
}

func (l *limitedRecognizer) Recognize(ctx context.Context, pdf io.Reader) (*Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Recognize(ctx, pdf)
}
