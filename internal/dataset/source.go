package dataset

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/clipstats/clipstats/internal/config"
)

// Fetch reads a dump from a local path or an s3://bucket/key URL. S3
// access uses the credentials carried by the dataset config.
func Fetch(ctx context.Context, cfg config.DatasetConfig, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("dump source is required")
	}
	if strings.HasPrefix(source, "s3://") {
		return fetchS3(ctx, cfg, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read dump file: %w", err)
	}
	return data, nil
}

func fetchS3(ctx context.Context, cfg config.DatasetConfig, source string) ([]byte, error) {
	parsed, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse s3 source: %w", err)
	}
	bucket := parsed.Host
	key := strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 source %q must name a bucket and key", source)
	}
	if strings.TrimSpace(cfg.S3Endpoint) == "" {
		return nil, fmt.Errorf("s3 endpoint is required for source %q", source)
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: strings.TrimSpace(cfg.S3Region),
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	object, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch s3 object: %w", err)
	}
	defer func() { _ = object.Close() }()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("read s3 object: %w", err)
	}
	return data, nil
}
