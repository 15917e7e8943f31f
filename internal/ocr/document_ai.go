package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfig holds the processor coordinates for the Document AI backend.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
	Timeout     time.Duration
}

// DocumentAIRecognizer implements Recognizer using a Document AI OCR
// processor. It is the alternative to the Vision backend for deployments that
// already run Document AI.
type DocumentAIRecognizer struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
}

// NewDocumentAIRecognizer creates a recognizer with credentials from the
// environment and an explicit processor configuration.
func NewDocumentAIRecognizer(ctx context.Context, config DocumentAIConfig) (*DocumentAIRecognizer, error) {
	const op = "NewDocumentAIRecognizer"

	if config.ProjectID == "" {
		return nil, WrapError(op, ErrMissingCredentials, "project id is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapError(op, ErrRecognitionFailed, "processor id is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapError(op, err, fmt.Sprintf("failed to create Document AI client for location %s", config.Location))
	}

	return &DocumentAIRecognizer{client: client, config: config}, nil
}

// NewDocumentAIRecognizerWithClient creates a recognizer with an explicit
// client (for testing).
func NewDocumentAIRecognizerWithClient(config DocumentAIConfig, client *documentai.DocumentProcessorClient) *DocumentAIRecognizer {
	return &DocumentAIRecognizer{client: client, config: config}
}

// Recognize extracts text from a PDF document via the OCR processor.
func (d *DocumentAIRecognizer) Recognize(ctx context.Context, pdf io.Reader) (*Result, error) {
	const op = "Recognize"
	startTime := time.Now()

	pdfBytes, err := io.ReadAll(pdf)
	if err != nil {
		return nil, WrapError(op, err, "failed to read PDF data")
	}

	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return nil, WrapError(op, ErrInvalidPDF, "missing PDF header")
	}

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: d.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := d.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, WrapError(op, ErrRecognitionFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}
	if resp.Document == nil || resp.Document.Text == "" {
		return nil, WrapError(op, ErrEmptyDocument, "no text in Document AI response")
	}

	processedAt := time.Now()
	return &Result{
		Text:               resp.Document.Text,
		PageCount:          len(resp.Document.Pages),
		ProcessedAt:        processedAt,
		ProcessingDuration: processedAt.Sub(startTime),
	}, nil
}

func (d *DocumentAIRecognizer) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		d.config.ProjectID, d.config.Location, d.config.ProcessorID)
}

// Close closes the underlying Document AI client.
func (d *DocumentAIRecognizer) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
