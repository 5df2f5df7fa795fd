package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"supaops/internal/config"
	"supaops/pkg/logx"
)

// S3Uploader uploads snapshots to an S3-compatible object store (MinIO, AWS
// S3, etc.). It is safe for concurrent use.
type S3Uploader struct {
	client *minio.Client
	bucket string
	prefix string
	log    logx.Logger
}

// NewS3Uploader validates the target settings, builds the client and ensures
// the bucket exists (creates it if missing).
func NewS3Uploader(cfg config.S3TargetConfig, log logx.Logger) (*S3Uploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3: endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3: credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("s3: check bucket: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("s3: create bucket: %w", err)
		}
	}

	return &S3Uploader{client: cli, bucket: cfg.Bucket, prefix: cfg.Prefix, log: log}, nil
}

func (u *S3Uploader) Name() string { return "s3:" + u.bucket }

func (u *S3Uploader) Upload(ctx context.Context, filename string, data []byte) error {
	key := u.prefix + filename
	info, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("s3: upload %s: %w", key, err)
	}
	u.log.Info("uploaded to s3",
		logx.String("bucket", u.bucket),
		logx.String("key", key),
		logx.Int64("bytes", info.Size))
	return nil
}
