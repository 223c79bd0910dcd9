package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"txpipeline/internal/deploy"
	"txpipeline/lib/ledger"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	deployOutputType string
	deployDataset    string
)

var successMessages = map[deploy.OutputType]string{
	deploy.OutputLocal: "Stored as a csv",
	deploy.OutputS3:    "Successfully uploaded to S3",
	deploy.OutputPG:    "Successfully uploaded to Postgres",
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Clean and summarize the dataset, then write it to exactly one destination.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		target, err := deploy.ParseOutputType(deployOutputType)
		if err != nil {
			return err
		}
		datasetDir := stringFlag(cmd, "dataset", deployDataset, cfg.DatasetDir)

		start := time.Now()
		report, err := runDeploy(ctx, target, datasetDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printBanner(out, target, time.Since(start))
		printSummary(out, report)
		return nil
	},
}

type deployResult struct {
	deploy.Report
	bundle deploy.Bundle
}

func runDeploy(ctx context.Context, target deploy.OutputType, datasetDir string) (result deployResult, err error) {
	if cfg.Ledger.Enabled() {
		var store *ledger.Store
		store, err = ledger.Open(cfg.Ledger)
		if err != nil {
			return deployResult{}, err
		}
		defer store.Close()

		var rec ledger.Record
		rec, err = store.Begin(ctx, string(target))
		if err != nil {
			return deployResult{}, err
		}
		defer func() {
			_, finishErr := store.Finish(ctx, rec, result.Pages, result.Rows, err)
			if finishErr != nil {
				slog.WarnContext(ctx, "failed to record deploy", "id", rec.ID, "err", finishErr)
			}
		}()
	}

	bundle, err := deploy.Load(ctx, datasetDir)
	if err != nil {
		return deployResult{}, err
	}
	result.bundle = bundle

	sink, closeSink, err := registry.Open(ctx, target, cfg.Outputs)
	if err != nil {
		return result, err
	}
	defer func() {
		closeErr := closeSink()
		if closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	result.Report, err = deploy.Run(ctx, sink, bundle)
	return result, err
}

func printBanner(out io.Writer, target deploy.OutputType, elapsed time.Duration) {
	line := strings.Repeat("-", 17)
	fmt.Fprintln(out, line)
	fmt.Fprintln(out, "SUCCESS")
	fmt.Fprintln(out, line)
	fmt.Fprintln(out, successMessages[target])
	fmt.Fprintf(out, "Elapsed time: %.2fs\n", elapsed.Seconds())
}

func printSummary(out io.Writer, result deployResult) {
	fmt.Fprintf(out, "%d rows from %d pages written to %s\n", result.Rows, result.Pages, result.Location)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Country", "Average outstanding", "Total completed", "Critical rate", "Error rate"})
	for _, row := range result.bundle.Summary {
		t.AppendRow(table.Row{
			row.Country,
			fmt.Sprintf("%.2f", row.AverageOutstanding),
			fmt.Sprintf("%.2f", row.TotalCompleted),
			fmt.Sprintf("%.4f", row.CriticalRate),
			fmt.Sprintf("%.4f", row.ErrorRate),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func init() {
	deployCmd.Flags().StringVar(&deployOutputType, "output-type", "", fmt.Sprintf("Destination of the dataset, one of %v.", deploy.OutputTypes))
	deployCmd.Flags().StringVar(&deployDataset, "dataset", "dataset", "Directory holding the page files written by fetch.")
	deployCmd.MarkFlagRequired("output-type")
	rootCmd.AddCommand(deployCmd)
}
