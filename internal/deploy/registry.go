package deploy

import (
	"context"
	"fmt"
)

type LocalConfig struct {
	Dir string `json:"dir" env:"TXPIPELINE_LOCAL_DIR"`
}

// Config holds the settings of every destination, only the selected one is
// read.
type Config struct {
	Local LocalConfig `json:"local"`
	S3    S3Config    `json:"s3"`
	PG    PGConfig    `json:"pg"`
}

// Factory builds a sink and a function releasing whatever it holds.
type Factory func(ctx context.Context, cfg Config) (Sink, func() error, error)

type Registry map[OutputType]Factory

func DefaultRegistry() Registry {
	return Registry{
		OutputLocal: newLocalSink,
		OutputS3:    newS3Sink,
		OutputPG:    newPGSink,
	}
}

// Open builds the sink for `target` only, no other destination is touched.
func (r Registry) Open(ctx context.Context, target OutputType, cfg Config) (Sink, func() error, error) {
	factory, ok := r[target]
	if !ok {
		return nil, nil, fmt.Errorf("%w %q", ErrUnsupportedOutputType, target)
	}
	sink, closer, err := factory(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s sink: %w", target, err)
	}
	if closer == nil {
		closer = func() error { return nil }
	}
	return sink, closer, nil
}

func newLocalSink(_ context.Context, cfg Config) (Sink, func() error, error) {
	return LocalSink{Dir: cfg.Local.Dir}, nil, nil
}

func newS3Sink(ctx context.Context, cfg Config) (Sink, func() error, error) {
	client, err := NewS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, nil, err
	}
	return S3Sink{Client: client, Bucket: cfg.S3.Bucket, Prefix: cfg.S3.Prefix}, nil, nil
}

func newPGSink(_ context.Context, cfg Config) (Sink, func() error, error) {
	db, err := OpenPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, nil, err
	}
	return PGSink{DB: db, BatchSize: cfg.PG.BatchSize}, func() error {
		return CloseDatabase(db)
	}, nil
}
