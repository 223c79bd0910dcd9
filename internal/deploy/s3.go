package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"txpipeline/internal/pages"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Bucket string `json:"bucket" env:"TXPIPELINE_S3_BUCKET"`
	// key prefix, "exports/2024" puts pages under exports/2024/dataset/
	Prefix   string `json:"prefix" env:"TXPIPELINE_S3_PREFIX"`
	Region   string `json:"region" env:"TXPIPELINE_S3_REGION"`
	Endpoint string `json:"endpoint" env:"TXPIPELINE_S3_ENDPOINT"`
	// when empty the default AWS credential chain is used
	AccessKeyID     string `json:"access_key_id" env:"TXPIPELINE_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key" env:"TXPIPELINE_S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `json:"use_path_style" env:"TXPIPELINE_S3_USE_PATH_STYLE"`
}

// ObjectPutter is the part of *s3.Client the sink needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// S3Sink uploads the dataset directory under <prefix>/dataset/, every file
// the local sink would copy, and the summary as <prefix>/final_dataset.csv.
// A bundle without a dataset directory uploads its pages only.
type S3Sink struct {
	Client ObjectPutter
	Bucket string
	Prefix string
}

func (S3Sink) Name() OutputType {
	return OutputS3
}

func (s S3Sink) key(parts ...string) string {
	prefix := strings.Trim(s.Prefix, "/")
	return path.Join(append([]string{prefix}, parts...)...)
}

func (s S3Sink) put(ctx context.Context, key string, body []byte) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.Bucket, key, err)
	}
	return nil
}

func (s S3Sink) putDataset(ctx context.Context, bundle Bundle) (int, error) {
	if bundle.DatasetDir == "" {
		for _, p := range bundle.Pages {
			name := p.File
			if name == "" {
				name = pages.FileName(pages.DefaultName, p.Number)
			}
			err := s.put(ctx, s.key(datasetSubdir, name), p.CSV)
			if err != nil {
				return 0, err
			}
		}
		return len(bundle.Pages), nil
	}

	files, err := datasetFiles(ctx, bundle.DatasetDir)
	if err != nil {
		return 0, fmt.Errorf("list dataset: %w", err)
	}
	for _, rel := range files {
		body, err := os.ReadFile(filepath.Join(bundle.DatasetDir, filepath.FromSlash(rel)))
		if err != nil {
			return 0, err
		}
		err = s.put(ctx, s.key(datasetSubdir, rel), body)
		if err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

func (s S3Sink) Write(ctx context.Context, bundle Bundle) (Report, error) {
	if s.Bucket == "" {
		return Report{}, fmt.Errorf("s3 bucket is not configured")
	}

	files, err := s.putDataset(ctx, bundle)
	if err != nil {
		return Report{}, err
	}

	summary, err := bundle.SummaryCSV()
	if err != nil {
		return Report{}, err
	}
	err = s.put(ctx, s.key(SummaryFile), summary)
	if err != nil {
		return Report{}, err
	}
	files++

	return Report{
		Location: fmt.Sprintf("s3://%s/%s", s.Bucket, strings.Trim(s.Prefix, "/")),
		Pages:    len(bundle.Pages),
		Rows:     len(bundle.Records),
		Files:    files,
	}, nil
}
