package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"txpipeline/internal/pages"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrUnsafeDatasetDir = errors.New("unsafe dataset directory")

var meter = otel.Meter("internal/fetch")
var pagesWritten, _ = meter.Int64Counter("fetch.pages_written")

type MaterializeOptions struct {
	// where the raw response is written, e.g. transactions.json
	RawPath string
	// directory holding one file per page, recreated on every run
	DatasetDir string
	// page file prefix, defaults to pages.DefaultName
	Name string
}

type Result struct {
	RawPath string
	Files   []string
}

// Materialize persists the raw response verbatim, then writes the decoded
// pages into the dataset directory.
func Materialize(ctx context.Context, raw []byte, opts MaterializeOptions) (Result, error) {
	ctx, span := tracer.Start(ctx, "fetch:Materialize")
	defer span.End()

	name := opts.Name
	if name == "" {
		name = pages.DefaultName
	}

	err := checkDatasetDir(opts.RawPath, opts.DatasetDir)
	if err != nil {
		span.SetStatus(codes.Error, "unsafe dataset dir")
		return Result{}, err
	}

	if dir := filepath.Dir(opts.RawPath); dir != "." {
		err := os.MkdirAll(dir, 0777)
		if err != nil {
			span.SetStatus(codes.Error, "create raw dir")
			return Result{}, err
		}
	}
	err = os.WriteFile(opts.RawPath, raw, 0666)
	if err != nil {
		span.SetStatus(codes.Error, "write raw response")
		return Result{}, fmt.Errorf("write raw response: %w", err)
	}

	decoded, err := pages.Decode(raw)
	if err != nil {
		span.SetStatus(codes.Error, "decode response")
		return Result{}, err
	}

	files, err := pages.WriteDir(opts.DatasetDir, name, decoded)
	if err != nil {
		span.SetStatus(codes.Error, "write dataset")
		return Result{}, fmt.Errorf("write dataset: %w", err)
	}

	pagesWritten.Add(ctx, int64(len(files)))
	span.SetAttributes(attribute.Int("pages", len(files)))
	slog.InfoContext(ctx, "materialized dataset", "raw", opts.RawPath, "dir", opts.DatasetDir, "pages", len(files))

	return Result{RawPath: opts.RawPath, Files: files}, nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	if dir == path {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// the dataset directory is wiped before the pages are written, so it may not
// hold the raw response or the working directory
func checkDatasetDir(rawPath, datasetDir string) error {
	if datasetDir == "" {
		return fmt.Errorf("%w: no directory given", ErrUnsafeDatasetDir)
	}
	dataset, err := filepath.Abs(datasetDir)
	if err != nil {
		return err
	}
	raw, err := filepath.Abs(rawPath)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	if within(dataset, raw) {
		return fmt.Errorf("%w: %s would delete the raw response %s", ErrUnsafeDatasetDir, dataset, raw)
	}
	if within(dataset, cwd) {
		return fmt.Errorf("%w: %s contains the working directory", ErrUnsafeDatasetDir, dataset)
	}
	return nil
}
