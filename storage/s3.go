package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3DeleteBatch is the most keys a single DeleteObjects call accepts
const s3DeleteBatch = 1000

// s3API is the part of the S3 client S3Store uses
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implements Store using AWS S3. Folders are key prefixes ending in "/".
type S3Store struct {
	client s3API
	bucket string
}

// S3StoreConfig holds configuration for S3Store
type S3StoreConfig struct {
	Bucket   string
	Region   string
	Endpoint string // Optional custom endpoint (MinIO, LocalStack)
}

// NewS3Store creates a new S3 backed store
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// folderPrefix turns a folder path into the key prefix of its contents
func folderPrefix(p string) string {
	return Join(p) + "/"
}

// Exists implements Store. An empty listing is S3's only "not found" signal.
func (s *S3Store) Exists(ctx context.Context, p string) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(folderPrefix(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, err
	}

	return aws.ToInt32(out.KeyCount) > 0 || len(out.Contents) > 0, nil
}

// DeleteRecursive implements Store
func (s *S3Store) DeleteRecursive(ctx context.Context, p string) error {
	// {{{1 List every key under the folder
	keys := []types.ObjectIdentifier{}

	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(folderPrefix(p)),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			keys = append(keys, types.ObjectIdentifier{Key: obj.Key})
		}
	}

	// {{{1 Delete in batches
	for start := 0; start < len(keys); start += s3DeleteBatch {
		end := start + s3DeleteBatch
		if end > len(keys) {
			end = len(keys)
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: keys[start:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}

		if len(out.Errors) > 0 {
			return fmt.Errorf("failed to delete %d object(s), first \"%s\": %s",
				len(out.Errors), aws.ToString(out.Errors[0].Key),
				aws.ToString(out.Errors[0].Message))
		}
	}

	return nil
}

// Put implements Store
func (s *S3Store) Put(ctx context.Context, p string, content []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(Join(p)),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(ContentType(p)),
	})
	if err != nil {
		return fmt.Errorf("s3 put failed: %w", err)
	}

	return nil
}
