// Package storage contains the object-store upload abstraction.
// Implementations must avoid using local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrUploadFailed wraps any non-success response or transport error from the
// object store. Callers must not record a document after a failed upload.
var ErrUploadFailed = errors.New("upload failed")

// UploadOptions define optional parameters for uploading blobs.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type UploadOptions struct {
	Size        int64
	ContentType string
}

// Uploader is the object-store client. A single network attempt, no retry,
// no chunking, no resumability; the returned URL is the permanent retrieval
// location of the blob.
//
// There is deliberately no Delete: directory records reference blobs that
// outlive them, and an upload whose record insert fails leaves an
// unreferenced blob behind. Both are accepted behavior.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, filename string, opt UploadOptions) (string, error)
}
