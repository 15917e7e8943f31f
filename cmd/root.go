package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ssoetl/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "ssoetl",
	Short: "ssoetl - sanitary sewer overflow report pipeline",
	Long: `ssoetl turns a folder of sanitary sewer overflow (SSO) report PDFs into a
clean, de-duplicated dataset.

Reports are read through their native text layer when one exists and fall
back to optical recognition for scanned filings. Extracted records are
de-duplicated by incident id, shared waterbody names are tagged per utility,
and the result is written as CSV or XLSX together with a QA summary.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ssoetl - sanitary sewer overflow report pipeline")
		fmt.Println("Use --help to see available commands and options.")
	},
}

// Execute runs the root command.
func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
