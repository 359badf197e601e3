// Package cli implements the iuran command line.
package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/krama-desa/iuran/internal/config"
	"github.com/krama-desa/iuran/internal/kramaapi"
	"github.com/krama-desa/iuran/internal/metrics"
	"github.com/krama-desa/iuran/pkg/logging"
)

// newRootCmd builds the command tree.
func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "iuran",
		Short: "Iuran krama billing dashboard",
		Long: `iuran serves the staff dashboard for looking up a krama's outstanding
tagihan and recording payment against the village backend.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file (default $IURAN_CONFIG)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStaffCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newJournalCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig reads the configuration named by the --config flag and sets up
// logging from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Log.Level)
	return cfg, nil
}

func newAPIClient(cfg *config.Config, collector *metrics.Collector) (*kramaapi.Client, error) {
	return kramaapi.New(kramaapi.Config{
		BaseURL:           cfg.API.BaseURL,
		MembersPath:       cfg.API.MembersPath,
		PaymentsPath:      cfg.API.PaymentsPath,
		HTTPClient:        &http.Client{Timeout: cfg.API.Timeout},
		DefaultMethod:     cfg.API.DefaultMethod,
		DefaultNote:       cfg.API.DefaultNote,
		DefaultRecordedBy: cfg.API.DefaultRecordedBy,
		Metrics:           collector,
	})
}
