package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "Malaysia MyInvois e-invoice compliance and submission pipeline",
	Long: `einvoice converts internal sales documents into LHDN-compliant
e-invoices, validates them against the MyInvois field catalogue, submits
them through the MyInvois API and tracks their lifecycle.

Examples:
  # Run the API server
  einvoice serve --addr :8080

  # Validate canonical document files offline
  einvoice validate invoice.json`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
