package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ssoetl/internal/config"
	"ssoetl/internal/logger"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [pdf-file]",
	Short: "Run optical recognition on a single PDF",
	Long: `Send one PDF through the configured recognition backend and print the
extracted text. Useful for checking what the pipeline would see for a
scanned filing before running a full parse.

Backend selection and credentials follow the same environment variables as
the parse command (OCR_BACKEND, GOOGLE_APPLICATION_CREDENTIALS or
GOOGLE_CREDENTIALS, and for Document AI: GOOGLE_CLOUD_PROJECT,
GOOGLE_CLOUD_LOCATION, DOCUMENT_AI_PROCESSOR_ID).`,
	Example: `  # Print recognized text to stdout
  ssoetl ocr scanned_filing.pdf

  # JSON output with confidence and timing
  ssoetl ocr scanned_filing.pdf --json`,
	Args: cobra.ExactArgs(1),
	RunE: runOCRCommand,
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().Bool("json", false, "Output as JSON with recognition metadata")
	ocrCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runOCRCommand(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.OCRBackend == config.OCRBackendNone {
		return fmt.Errorf("OCR_BACKEND is %q; set it to %q or %q",
			config.OCRBackendNone, config.OCRBackendVision, config.OCRBackendDocumentAI)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	pdfPath := args[0]
	f, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", pdfPath, err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	recognizer, closeRecognizer, err := buildRecognizer(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closeRecognizer != nil {
		defer closeRecognizer()
	}

	log.Info().Str("file", pdfPath).Str("backend", cfg.OCRBackend).Msg("starting recognition")
	result, err := recognizer.Recognize(ctx, f)
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Println(result.Text)
	return nil
}
