package commands

import (
	"time"
	"txpipeline/internal/deploy"
	"txpipeline/internal/txapi"
	"txpipeline/lib/ledger"
)

type ApiConfig struct {
	BaseUrl        string `json:"base_url" env:"TXPIPELINE_API_URL"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"TXPIPELINE_API_TIMEOUT_SECONDS"`
}

func (c ApiConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ServeConfig struct {
	Port        int    `json:"port" env:"TXPIPELINE_SERVE_PORT"`
	Rows        int    `json:"rows" env:"TXPIPELINE_SERVE_ROWS"`
	RowsPerPage int    `json:"rows_per_page" env:"TXPIPELINE_SERVE_ROWS_PER_PAGE"`
	Seed        uint64 `json:"seed" env:"TXPIPELINE_SERVE_SEED"`
}

type Config struct {
	Api ApiConfig `json:"api"`
	// raw API response written by fetch
	RawFile string `json:"raw_file" env:"TXPIPELINE_RAW_FILE"`
	// page files written by fetch and read by deploy
	DatasetDir string        `json:"dataset_dir" env:"TXPIPELINE_DATASET_DIR"`
	Outputs    deploy.Config `json:"outputs"`
	Ledger     ledger.Config `json:"ledger"`
	Serve      ServeConfig   `json:"serve"`
}

func defaultConfig() Config {
	return Config{
		Api: ApiConfig{
			BaseUrl:        "http://localhost:8080",
			TimeoutSeconds: 30,
		},
		RawFile:    "transactions.json",
		DatasetDir: "dataset",
		Outputs: deploy.Config{
			Local: deploy.LocalConfig{Dir: "out"},
			PG:    deploy.PGConfig{BatchSize: 1000},
		},
		Serve: ServeConfig{
			Port:        8080,
			Rows:        txapi.DefaultRows,
			RowsPerPage: txapi.DefaultRowsPerPage,
		},
	}
}
