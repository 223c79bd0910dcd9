package deploy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"txpipeline/internal/pages"
	"txpipeline/internal/transform"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const SummaryFile = "final_dataset.csv"

// Record is a cleaned transaction and the page it was read from.
type Record struct {
	Page int
	transform.Transaction
}

// Bundle is everything a sink writes: the page files as they are on disk,
// the cleaned records and the per-country summary.
type Bundle struct {
	DatasetDir string
	Pages      []pages.Page
	Records    []Record
	Summary    []transform.CountrySummary
}

func (b Bundle) SummaryCSV() ([]byte, error) {
	var buf bytes.Buffer
	err := transform.WriteSummaryCSV(&buf, b.Summary)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads the dataset directory, cleans every transaction and computes
// the summary.
func Load(ctx context.Context, datasetDir string) (Bundle, error) {
	ctx, span := tracer.Start(ctx, "deploy:Load")
	defer span.End()

	pgs, err := pages.ReadDir(datasetDir)
	if err != nil {
		span.SetStatus(codes.Error, "read dataset")
		return Bundle{}, fmt.Errorf("read dataset: %w", err)
	}

	var raw []transform.Transaction
	var pageOf []int
	for _, p := range pgs {
		txs, err := transform.ParseCSV(bytes.NewReader(p.CSV))
		if err != nil {
			span.SetStatus(codes.Error, "parse page")
			return Bundle{}, fmt.Errorf("parse %s: %w", p.File, err)
		}
		raw = append(raw, txs...)
		for range txs {
			pageOf = append(pageOf, p.Number)
		}
	}

	cleaned := transform.Clean(raw)
	records := make([]Record, len(cleaned))
	for i, tx := range cleaned {
		records[i] = Record{Page: pageOf[i], Transaction: tx}
	}

	span.SetAttributes(
		attribute.Int("pages", len(pgs)),
		attribute.Int("rows", len(records)),
	)
	slog.DebugContext(ctx, "loaded dataset", "dir", datasetDir, "pages", len(pgs), "rows", len(records))

	return Bundle{
		DatasetDir: datasetDir,
		Pages:      pgs,
		Records:    records,
		Summary:    transform.Summarize(cleaned),
	}, nil
}
