// Package storage provides the byte-level backends the cache persists to:
// a local filesystem tree and an S3-compatible object store.
package storage

import "context"

// Backend abstracts where cache payloads live. Paths are slash-separated and
// relative to the backend's root.
type Backend interface {
	// Write stores data at the given path, replacing any previous content.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path.
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}
