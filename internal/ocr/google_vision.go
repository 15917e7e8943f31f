package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB).
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of pages Vision accepts for
	// synchronous file annotation. SSO report filings rarely exceed it.
	MaxPagesSync = 5
)

// GoogleVisionRecognizer implements Recognizer using the Cloud Vision API's
// document text detection on inline PDF content.
type GoogleVisionRecognizer struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionRecognizer creates a recognizer with credentials from the
// environment. It expects GOOGLE_CREDENTIALS inline JSON or
// GOOGLE_APPLICATION_CREDENTIALS, falling back to application default
// credentials.
func NewGoogleVisionRecognizer(ctx context.Context) (*GoogleVisionRecognizer, error) {
	const op = "NewGoogleVisionRecognizer"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionRecognizer{client: client}, nil
}

// NewGoogleVisionRecognizerWithClient creates a recognizer with an explicit
// client (for testing).
func NewGoogleVisionRecognizerWithClient(client *vision.ImageAnnotatorClient) *GoogleVisionRecognizer {
	return &GoogleVisionRecognizer{client: client}
}

// Recognize extracts text from a PDF document.
func (g *GoogleVisionRecognizer) Recognize(ctx context.Context, pdf io.Reader) (*Result, error) {
	const op = "Recognize"
	startTime := time.Now()

	pdfBytes, err := io.ReadAll(pdf)
	if err != nil {
		return nil, WrapError(op, err, "failed to read PDF data")
	}

	if len(pdfBytes) > MaxFileSizeBytes {
		return nil, WrapError(op, ErrPDFTooLarge, fmt.Sprintf("file size: %d bytes", len(pdfBytes)))
	}

	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return nil, WrapError(op, ErrInvalidPDF, "missing PDF header")
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, WrapError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}

	if len(resp.Responses) == 0 {
		return nil, WrapError(op, ErrRecognitionFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	result, err := collectFileResponse(fileResp)
	if err != nil {
		return nil, WrapError(op, err, "failed to process Vision API response")
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	return result, nil
}

// collectFileResponse concatenates per-page annotations in reading order.
func collectFileResponse(fileResp *visionpb.AnnotateFileResponse) (*Result, error) {
	if len(fileResp.Responses) == 0 {
		return nil, ErrEmptyDocument
	}

	pageCount := len(fileResp.Responses)
	if pageCount > MaxPagesSync {
		return nil, WrapError("collectFileResponse", ErrTooManyPages, fmt.Sprintf("document has %d pages", pageCount))
	}

	var allText strings.Builder
	var confidenceSum float32
	var confidenceCount int

	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, fmt.Errorf("error processing page %d: %s", pageIdx+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			continue
		}

		if allText.Len() > 0 {
			allText.WriteString("\n")
		}
		allText.WriteString(page.FullTextAnnotation.Text)

		for _, annotation := range page.TextAnnotations {
			if annotation.Confidence > 0 {
				confidenceSum += annotation.Confidence
				confidenceCount++
			}
		}
	}

	extracted := allText.String()
	if strings.TrimSpace(extracted) == "" {
		return nil, ErrEmptyDocument
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	return &Result{
		Text:       extracted,
		PageCount:  pageCount,
		Confidence: avgConfidence,
	}, nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionRecognizer) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
