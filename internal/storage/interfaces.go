// Package storage defines the object store adapter: durable binary
// storage addressed by string content keys, plus time-limited signed
// URLs so large files move directly between client and store without
// passing through the entity handlers.
package storage

import (
	"context"
	"io"
	"time"
)

// Object is a stored binary object.
type Object struct {
	// Body streams the object content. The caller must close it.
	Body io.ReadCloser

	// ContentType is the stored MIME type.
	ContentType string

	// Size is the object size in bytes, -1 when unknown.
	Size int64
}

// Store is the object store adapter. Implementations must be safe for
// unlimited concurrent callers; every operation is per-key.
type Store interface {
	// Put stores an object, overwriting any existing object at that key.
	// Idempotent per key.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Get retrieves an object.
	// Returns domain.ErrObjectNotFound if the key does not exist.
	Get(ctx context.Context, key string) (*Object, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// PresignUpload returns a URL that, used with a PUT request bearing
	// the same content type within ttl, stores bytes at key. It does not
	// touch storage itself; it is purely a capability grant.
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// PresignDownload returns a URL that, fetched within ttl, streams
	// the object at key with a Content-Disposition suggesting filename.
	PresignDownload(ctx context.Context, key string, ttl time.Duration, filename string) (string, error)

	// PublicURL returns the externally resolvable URL for a key, used
	// for listing images that need no capability grant.
	PublicURL(key string) string
}
