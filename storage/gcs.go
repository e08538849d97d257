package storage

import (
	"context"
	"errors"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStore implements Store using Google Cloud Storage. Folders are object name
// prefixes ending in "/".
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// GCSStoreConfig holds configuration for GCSStore
type GCSStoreConfig struct {
	Bucket string
}

// NewGCSStore creates a new GCS backed store. Without opts the client is
// authenticated with application default credentials.
func NewGCSStore(ctx context.Context, cfg GCSStoreConfig, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Exists implements Store. An exhausted listing is GCS's only "not found" signal.
func (s *GCSStore) Exists(ctx context.Context, p string) (bool, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{
		Prefix: folderPrefix(p),
	})

	_, err := it.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// DeleteRecursive implements Store
func (s *GCSStore) DeleteRecursive(ctx context.Context, p string) error {
	bucket := s.client.Bucket(s.bucket)
	it := bucket.Objects(ctx, &gcs.Query{
		Prefix: folderPrefix(p),
	})

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}

		err = bucket.Object(attrs.Name).Delete(ctx)
		if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("gcs delete failed for %s: %w", attrs.Name, err)
		}
	}
}

// Put implements Store
func (s *GCSStore) Put(ctx context.Context, p string, content []byte) error {
	w := s.client.Bucket(s.bucket).Object(Join(p)).NewWriter(ctx)
	w.ContentType = ContentType(p)

	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write failed: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close failed: %w", err)
	}

	return nil
}

// Close closes the GCS client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
