package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"pet-adoption-hub/internal/platform/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store implementa blob.Store sobre un bucket MinIO/S3.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string // scheme://endpoint/bucket/
	log     logger.Logger
}

// New crea el cliente y el bucket si no existe.
func New(ctx context.Context, opts Options, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNop()
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", opts.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", opts.Bucket, err)
		}
		log.Info("bucket created", map[string]any{"bucket": opts.Bucket})
	}

	return &Store{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: publicBaseURL(opts.Endpoint, opts.Bucket, opts.UseSSL),
		log:     log.With(map[string]any{"component": "blob"}),
	}, nil
}

func publicBaseURL(endpoint, bucket string, useSSL bool) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, strings.TrimSuffix(endpoint, "/"), bucket)
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	s.log.Debug("object stored", map[string]any{"key": info.Key, "size": info.Size})
	return s.baseURL + escapeKey(key), nil
}

// Remove ignora URLs que no apuntan a este bucket (imágenes externas).
func (s *Store) Remove(ctx context.Context, objectURL string) error {
	key, ok := s.keyFromURL(objectURL)
	if !ok {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// escapeKey escapa cada segmento y conserva los "/".
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *Store) keyFromURL(objectURL string) (string, bool) {
	if !strings.HasPrefix(objectURL, s.baseURL) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(objectURL, s.baseURL))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
