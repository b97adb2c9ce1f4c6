// Package blob is the archive storage gateway. The registry only ever sees
// the Gateway interface; the S3 backend serves production and the in-memory
// backend serves tests and local development.
package blob

import (
	"context"
	"errors"
	"time"
)

// ErrNotSupported is returned by backends that cannot presign URLs.
var ErrNotSupported = errors.New("operation not supported by this storage backend")

// Gateway stores and retrieves version archives by path. Paths are rooted,
// e.g. "/versions/libx-1.2.3.tar.gz"; backends map them to their own keys.
type Gateway interface {
	// Upload stores data at path. With overwrite false an existing blob is a
	// storage error; with overwrite true it is silently replaced.
	Upload(ctx context.Context, path string, data []byte, overwrite bool) error

	// Download returns the blob at path, or a not-found error.
	Download(ctx context.Context, path string) ([]byte, error)

	// Remove deletes the blob at path. Removing a missing blob is not an
	// error.
	Remove(ctx context.Context, path string) error

	// DownloadURL returns a presigned URL for direct download, valid for the
	// given duration. Backends without presigning return ErrNotSupported.
	DownloadURL(ctx context.Context, path string, expires time.Duration) (string, error)

	// UploadURL returns a presigned URL for direct upload, valid for the
	// given duration. Backends without presigning return ErrNotSupported.
	UploadURL(ctx context.Context, path string, expires time.Duration) (string, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
