package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// ObjectStore keeps rendered report artifacts.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}

type gcsStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
}

func NewObjectStore(ctx context.Context, log *logger.Logger, cfg StoreConfig) (ObjectStore, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("report bucket: %w", domain.ErrNotConfigured)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	storeLog := log.With("service", "ObjectStore")
	storeLog.Info("Object storage initialized", "mode", cfg.Mode, "bucket", cfg.Bucket, "prefix", cfg.Prefix, "emulator_host", cfg.EmulatorHost)
	return &gcsStore{log: storeLog, client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func newStorageClient(ctx context.Context, cfg StoreConfig) (*storage.Client, error) {
	if cfg.Mode == StorageModeGCSEmulator {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (s *gcsStore) objectKey(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *gcsStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	name := s.objectKey(key)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	if contentType == "" {
		contentType = ContentTypeForKey(name)
	}
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	s.log.Debug("Stored object", "bucket", s.bucket, "key", name, "bytes", len(data))
	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

func (s *gcsStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	r, err := s.client.Bucket(s.bucket).Object(s.objectKey(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("object %q: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open GCS object %q: %w", key, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *gcsStore) Close() error { return s.client.Close() }

func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
