package storage

import (
	"context"
	"io"
)

// DocumentStore is the content-addressable blob store for uploaded
// documents. Objects are keyed by content hash; identical bytes map to the
// same object, so a Put of an already-stored hash may be skipped.
type DocumentStore interface {
	// Put stores document bytes under their content hash.
	Put(ctx context.Context, hash string, reader io.Reader, size int64, contentType string) error

	// Get retrieves the document bytes for a hash.
	Get(ctx context.Context, hash string) (io.ReadCloser, error)

	// Exists checks whether a document with the hash is stored.
	Exists(ctx context.Context, hash string) (bool, error)

	// Delete removes the document for a hash.
	Delete(ctx context.Context, hash string) error

	// GetURL returns the URL for accessing a stored document.
	GetURL(hash string) string
}
