package commands

import (
	"log/slog"
	"txpipeline/internal/pages"
	"txpipeline/internal/txapi"
	"txpipeline/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	servePort        int
	serveRows        int
	serveRowsPerPage int
	serveSeed        uint64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a synthetic transactions API for fetch to read from.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := intFlag(cmd, "port", servePort, cfg.Serve.Port)
		rows := intFlag(cmd, "rows", serveRows, cfg.Serve.Rows)
		rowsPerPage := intFlag(cmd, "rows-per-page", serveRowsPerPage, cfg.Serve.RowsPerPage)
		seed := serveSeed
		if !cmd.Flags().Changed("seed") && cfg.Serve.Seed != 0 {
			seed = cfg.Serve.Seed
		}

		generated := txapi.Generate(txapi.GenerateOptions{Rows: rows, Seed: seed})
		paged, err := txapi.Paginate(generated, rowsPerPage)
		if err != nil {
			return err
		}
		handler, err := txapi.NewHandler(pages.Encode(paged))
		if err != nil {
			return err
		}

		slog.Info("serving transactions", "port", port, "rows", len(generated), "pages", len(paged))
		return serviceutil.StartHttpServer(cmd.Context(), port, handler)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "The port to listen on.")
	serveCmd.Flags().IntVar(&serveRows, "rows", txapi.DefaultRows, "Number of transactions to generate.")
	serveCmd.Flags().IntVar(&serveRowsPerPage, "rows-per-page", txapi.DefaultRowsPerPage, "Transactions per page.")
	serveCmd.Flags().Uint64Var(&serveSeed, "seed", 0, "Seed of the generator, the same seed always serves the same data.")
	rootCmd.AddCommand(serveCmd)
}
