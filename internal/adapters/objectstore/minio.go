package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

// Config holds configuration for the S3-compatible object store backing event
// images.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL is the externally reachable prefix stored objects are
	// served from, e.g. "https://cdn.example.com/events".
	PublicBaseURL string
}

type minioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewMinioStore returns a FileStore backed by an S3-compatible endpoint.
func NewMinioStore(cfg Config) (domain.FileStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &minioStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *minioStore) Upload(ctx context.Context, objectName, contentType string, r io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectName, err)
	}
	return s.publicBaseURL + "/" + objectName, nil
}

type disabledStore struct{}

// NewDisabledStore returns a FileStore that rejects every upload. Used when no
// object store is configured; events then simply have no image.
func NewDisabledStore() domain.FileStore {
	return &disabledStore{}
}

func (disabledStore) Upload(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", domain.ErrUploadsDisabled
}
