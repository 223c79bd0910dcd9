package commands

import (
	"errors"
	"time"
	"txpipeline/lib/ledger"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent deploys recorded in the ledger.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Ledger.Enabled() {
			return errors.New("the ledger is disabled, set ledger.file or ledger.url in the config")
		}
		store, err := ledger.Open(cfg.Ledger)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Output", "Status", "Pages", "Rows", "Started", "Took", "Error"})
		for _, rec := range records {
			took := ""
			if !rec.FinishedAt.IsZero() {
				took = rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond).String()
			}
			t.AppendRow(table.Row{
				rec.ID,
				rec.OutputType,
				rec.Status,
				rec.Pages,
				rec.Rows,
				rec.StartedAt.Format(time.DateTime),
				took,
				rec.Error,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of deploys to list.")
	rootCmd.AddCommand(historyCmd)
}
