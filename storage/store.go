package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Store is a hierarchical object store. Paths are slash separated and relative to
// the root of the store.
type Store interface {
	// Exists reports if anything is stored under path. Only the backend's "not
	// found" signal results in false, any other failure is returned as is.
	Exists(ctx context.Context, path string) (bool, error)

	// DeleteRecursive removes path and everything under it
	DeleteRecursive(ctx context.Context, path string) error

	// Put stores content at exactly path, overwriting any existing object
	Put(ctx context.Context, path string, content []byte) error
}

// Join builds a store path from segments
func Join(segments ...string) string {
	return strings.TrimPrefix(path.Join(segments...), "/")
}

// Replace clears a folder so it can be written from scratch. If the folder exists
// it is deleted with everything in it. The returned bool reports if a deletion
// happened.
func Replace(ctx context.Context, store Store, folder string) (bool, error) {
	exists, err := store.Exists(ctx, folder)
	if err != nil {
		return false, fmt.Errorf("failed to check if \"%s\" exists: %w", folder, err)
	}

	if !exists {
		return false, nil
	}

	if err := store.DeleteRecursive(ctx, folder); err != nil {
		return false, fmt.Errorf("failed to delete \"%s\": %w", folder, err)
	}

	return true, nil
}

// contentTypes maps artifact extensions to MIME types
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".zip":  "application/zip",
	".json": "application/json",
}

// ContentType guesses the MIME type of an object from its name
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}

	return "application/octet-stream"
}
