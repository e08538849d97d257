package storage

import (
	"context"
	"fmt"
)

// StoreTypeT is the type of storage backend
type StoreTypeT string

const (
	// StoreTypeFS stores folders on the local filesystem
	StoreTypeFS StoreTypeT = "fs"

	// StoreTypeS3 stores folders in an S3 bucket
	StoreTypeS3 StoreTypeT = "s3"

	// StoreTypeGCS stores folders in a Google Cloud Storage bucket
	StoreTypeGCS StoreTypeT = "gcs"
)

// Config selects and configures a backend
type Config struct {
	// Type of backend, defaults to StoreTypeFS
	Type StoreTypeT

	// DataDir is the FSStore root directory
	DataDir string

	// S3 configures S3Store
	S3 S3StoreConfig

	// GCS configures GCSStore
	GCS GCSStoreConfig
}

// NewStore creates the backend selected by cfg.Type
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case StoreTypeFS, "":
		if len(cfg.DataDir) == 0 {
			return nil, fmt.Errorf("data directory is required for fs storage")
		}
		return NewFSStore(cfg.DataDir)
	case StoreTypeS3:
		if len(cfg.S3.Bucket) == 0 {
			return nil, fmt.Errorf("bucket is required for S3 storage")
		}
		if len(cfg.S3.Region) == 0 {
			cfg.S3.Region = "us-east-1"
		}
		return NewS3Store(ctx, cfg.S3)
	case StoreTypeGCS:
		if len(cfg.GCS.Bucket) == 0 {
			return nil, fmt.Errorf("bucket is required for GCS storage")
		}
		return NewGCSStore(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
