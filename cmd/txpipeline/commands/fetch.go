package commands

import (
	"fmt"
	"log/slog"
	devenv "txpipeline/dev/env"
	"txpipeline/internal/fetch"
	"txpipeline/lib/restyutil"

	"github.com/spf13/cobra"
)

var (
	fetchApiUrl  string
	fetchRawFile string
	fetchDataset string
	fetchName    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the transactions envelope and write one csv file per page.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		apiUrl := stringFlag(cmd, "api-url", fetchApiUrl, cfg.Api.BaseUrl)
		rawFile := stringFlag(cmd, "raw", fetchRawFile, cfg.RawFile)
		datasetDir := stringFlag(cmd, "dataset", fetchDataset, cfg.DatasetDir)

		var output restyutil.InstrumentOutput
		if verbose {
			output = httpDumpOutput("fetch")
		}

		client, err := fetch.NewClient(fetch.ClientOptions{
			BaseUrl: apiUrl,
			Timeout: cfg.Api.Timeout(),
			Output:  output,
		})
		if err != nil {
			return err
		}
		raw, err := client.FetchTransactions(ctx)
		if err != nil {
			return err
		}

		res, err := fetch.Materialize(ctx, raw, fetch.MaterializeOptions{
			RawPath:    rawFile,
			DatasetDir: datasetDir,
			Name:       fetchName,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %d page files to %s\n", res.RawPath, len(res.Files), datasetDir)
		return nil
	},
}

// httpDumpOutput returns nil when the workspace state directory cannot be
// resolved, in which case exchanges are only traced.
func httpDumpOutput(name string) restyutil.InstrumentOutput {
	dir, err := devenv.ResolvePath(fmt.Sprintf("<dev_state>/resty/%s", name))
	if err != nil {
		slog.Debug("http dumps disabled", "err", err)
		return nil
	}
	out, err := restyutil.NewFilesystemOutput(dir)
	if err != nil {
		slog.Warn("http dumps disabled", "err", err)
		return nil
	}
	slog.Debug("dumping http exchanges", "dir", out.Dir())
	return out
}

// stringFlag prefers an explicitly set flag over the configured value.
func stringFlag(cmd *cobra.Command, name, flagValue, configured string) string {
	if cmd.Flags().Changed(name) || configured == "" {
		return flagValue
	}
	return configured
}

func intFlag(cmd *cobra.Command, name string, flagValue, configured int) int {
	if cmd.Flags().Changed(name) || configured == 0 {
		return flagValue
	}
	return configured
}

func init() {
	fetchCmd.Flags().StringVar(&fetchApiUrl, "api-url", "http://localhost:8080", "Base url of the transactions API.")
	fetchCmd.Flags().StringVar(&fetchRawFile, "raw", "transactions.json", "Where the raw API response is written.")
	fetchCmd.Flags().StringVar(&fetchDataset, "dataset", "dataset", "Directory the page files are written to, recreated on every run.")
	fetchCmd.Flags().StringVar(&fetchName, "name", "transactions", "Page file prefix.")
	rootCmd.AddCommand(fetchCmd)
}
