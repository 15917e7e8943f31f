package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ssoetl/internal/acquire"
	"ssoetl/internal/config"
	"ssoetl/internal/export"
	"ssoetl/internal/logger"
	"ssoetl/internal/pipeline"
	"ssoetl/internal/report"
	"ssoetl/pkg/models"
)

var parseCmd = &cobra.Command{
	Use:   "parse [pdf-dir]",
	Short: "Parse a folder of SSO report PDFs into a de-duplicated dataset",
	Long: `Walk a folder of SSO report PDFs, extract the reported fields from each,
de-duplicate by incident id (keeping the newest copy by footer timestamp),
disambiguate waterbody names shared across utilities, and write the result.

The output format follows the file extension: .csv, .csv.gz or .xlsx.
Scanned filings without a usable text layer are sent to the configured
optical recognition backend (OCR_BACKEND=vision|documentai|none).`,
	Example: `  # Parse a folder into CSV
  ssoetl parse ./filings -o sso_data.csv

  # Compressed output, raw waterbody names retained
  ssoetl parse ./filings -o sso_data.csv.gz --keep-raw-water

  # XLSX workbook with per-permittee volume analytics on stdout
  ssoetl parse ./filings -o sso_data.xlsx --analytics`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", "", "Output path (.csv, .csv.gz or .xlsx; default from SSO_OUTPUT_PATH)")
	parseCmd.Flags().Bool("keep-raw-water", false, "Retain the raw receiving-water name in a separate column")
	parseCmd.Flags().Int("workers", 0, "Worker pool size (default from SSO_WORKERS)")
	parseCmd.Flags().Bool("analytics", false, "Print volume analytics after the QA summary")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = cfg.OutputPath
	}
	keepRaw, _ := cmd.Flags().GetBool("keep-raw-water")
	keepRaw = keepRaw || cfg.KeepRawWater
	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.Workers
	}
	showAnalytics, _ := cmd.Flags().GetBool("analytics")

	pdfDir := args[0]
	if info, err := os.Stat(pdfDir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", pdfDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recognizer, closeRecognizer, err := buildRecognizer(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closeRecognizer != nil {
		defer closeRecognizer()
	}

	extractor := acquire.NewExtractor(recognizer, cfg.MinTextChars, cfg.PDFTextTimeout)
	runner := pipeline.New(extractor, workers)

	result, err := runner.RunDir(ctx, pdfDir)
	if err != nil {
		return err
	}

	if err := writeFinalRecords(result.Records, outputPath, keepRaw); err != nil {
		return err
	}
	log.Info().Str("output", outputPath).Int("records", len(result.Records)).Msg("dataset written")

	fmt.Println("QA summary")
	if err := result.Summary.Write(os.Stdout); err != nil {
		return err
	}
	if showAnalytics {
		printAnalytics(result)
	}
	return nil
}

// writeFinalRecords picks the serializer from the output extension.
func writeFinalRecords(records []models.FinalRecord, path string, keepRaw bool) error {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return export.WriteXLSXFile(records, path, keepRaw)
	}
	return export.WriteCSVFile(records, path, keepRaw)
}

func printAnalytics(result *pipeline.Result) {
	overall := report.OverallVolume(result.Records)
	fmt.Printf("\nVolume (usable records: %d, total gallons: %d)\n", overall.Count, overall.Total)

	fmt.Println("\nBy permittee")
	for _, g := range report.VolumeByPermittee(result.Records) {
		fmt.Printf("  %-40s %12d gal in %d spills\n", g.GroupKey, g.Total, g.Count)
	}

	fmt.Println("\nBy month")
	for _, g := range report.VolumeByMonth(result.Records) {
		fmt.Printf("  %s  %12d gal in %d spills\n", g.GroupKey, g.Total, g.Count)
	}

	fmt.Println("\nBy receiving water")
	for _, g := range report.VolumeByWater(result.Records) {
		fmt.Printf("  %-40s %12d gal in %d spills\n", g.GroupKey, g.Total, g.Count)
	}

	fmt.Println("\nLargest spills")
	for _, r := range report.TopSpills(result.Records, 10) {
		fmt.Printf("  %-14s %12d gal  %s\n", r.Key, r.Volume.Gallons, r.ReceivingWaterDisplay)
	}
}
