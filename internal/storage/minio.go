package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docshare/internal/config"
)

// minioUploader implements the Uploader interface using an S3-compatible
// backend (MinIO, AWS S3, etc.). It is safe for concurrent use by multiple
// goroutines. Object keys are documents/<uuid><ext>; the returned URL points
// at the bucket path directly, so the bucket is expected to allow public
// reads the way an unsigned-upload media host does.
type minioUploader struct {
	client *minio.Client
	bucket string
	scheme string
	host   string
}

// NewMinIO creates a new S3-compatible uploader backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (Uploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	mu := &minioUploader{client: cli, bucket: cfg.Bucket, scheme: scheme, host: cfg.Endpoint}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return mu, nil
}

// Upload streams the blob under a generated key and returns its permanent URL.
func (m *minioUploader) Upload(ctx context.Context, r io.Reader, filename string, opt UploadOptions) (string, error) {
	ext := filepath.Ext(filename)
	key := filepath.ToSlash(filepath.Join("documents", uuid.New().String()+ext))

	putOpts := minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: map[string]string{"original-filename": filename},
	}
	if _, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, putOpts); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	u := url.URL{
		Scheme: m.scheme,
		Host:   m.host,
		Path:   "/" + m.bucket + "/" + key,
	}
	return u.String(), nil
}
