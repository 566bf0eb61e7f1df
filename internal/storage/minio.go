package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

const (
	defaultBucket = "canvas-uploads"
	urlExpiry     = 1 * time.Hour
)

// ErrNotConfigured is returned by NewMinIOHostFromEnv when MINIO_ENDPOINT is unset
var ErrNotConfigured = errors.New("object storage not configured")

// MinIOHost stores canvas images in a bucket and hands out presigned GET URLs
type MinIOHost struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	now    func() time.Time
}

// NewMinIOHostFromEnv connects using MINIO_ENDPOINT, MINIO_ACCESS_KEY,
// MINIO_SECRET_KEY, MINIO_BUCKET and MINIO_USE_SSL, creating the bucket
// when it does not exist.
func NewMinIOHostFromEnv(ctx context.Context) (*MinIOHost, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		return nil, ErrNotConfigured
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = defaultBucket
	}

	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		log.Info().Str("bucket", bucket).Msg("created canvas bucket")
	}

	return &MinIOHost{
		client: client,
		bucket: bucket,
		expiry: urlExpiry,
		now:    time.Now,
	}, nil
}

// Name returns the host label
func (h *MinIOHost) Name() string {
	return "minio"
}

// Upload stores the image and returns a presigned URL to it
func (h *MinIOHost) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image")
	}

	objectName := ObjectName(h.now(), uuid.NewString(), contentType)
	_, err := h.client.PutObject(ctx, h.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url, err := h.client.PresignedGetObject(ctx, h.bucket, objectName, h.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	log.Debug().Str("bucket", h.bucket).Str("object", objectName).Int("bytes", len(data)).Msg("canvas uploaded")
	return url.String(), nil
}

// canvasExtensions maps the canvas formats the preprocessor can decode
var canvasExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// ObjectName builds the object path canvas/YYYY/MM/{id}{ext}. Content type
// parameters are ignored and unknown types get ".bin".
func ObjectName(now time.Time, id, contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	ext, ok := canvasExtensions[strings.ToLower(strings.TrimSpace(mediaType))]
	if !ok {
		ext = ".bin"
	}
	return fmt.Sprintf("canvas/%d/%02d/%s%s", now.Year(), now.Month(), id, ext)
}
