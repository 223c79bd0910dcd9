package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"txpipeline/internal/deploy"
	"txpipeline/lib/configutil"
	"txpipeline/lib/serviceutil"
	"txpipeline/lib/telemetry"

	"github.com/spf13/cobra"
)

const serviceName = "txpipeline"

var (
	configFile string
	verbose    bool

	cfg Config
	tel telemetry.Telemetry

	// swapped in tests
	registry       = deploy.DefaultRegistry()
	setupTelemetry = telemetry.SetupFromEnv
)

var rootCmd = &cobra.Command{
	Use:           "txpipeline",
	Short:         "txpipeline fetches the transactions dataset and deploys it to local disk, S3 or Postgres.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		err := configutil.LoadDotenv()
		if err != nil {
			return err
		}
		cfg, err = configutil.Load(configFile, defaultConfig())
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		tel, err = setupTelemetry(cmd.Context(), serviceName)
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no telemetry.json5 found, telemetry disabled")
			return nil
		}
		if err != nil {
			slog.Warn("failed to set up telemetry", "err", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "txpipeline.json5", "The config file, merged with its .local variant and TXPIPELINE_* variables.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and HTTP dumps.")
}

// run executes the command line and flushes telemetry whether or not the
// command failed.
func run(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)

	shutdownErr := tel.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to shut down telemetry", "err", shutdownErr)
	}
	tel = telemetry.Telemetry{}
	return err
}

func ExecuteContext(ctx context.Context) {
	err := run(ctx)
	if err != nil {
		serviceutil.Fatal("txpipeline failed", err)
	}
}
