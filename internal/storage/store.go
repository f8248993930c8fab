package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrBlobNotFound reports that a blob ID or name no longer resolves in
// the backing store.
var ErrBlobNotFound = errors.New("blob not found")

// WriteError wraps a transport or auth failure during an upload or
// delete. A caller that does not receive a blob ID must treat the
// operation as a total failure.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store write %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError wraps a failure to fetch a blob or listing.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("store read %s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Store is the remote object-storage adapter. Implementations must be
// safe for concurrent use and must honor the caller's context deadline
// on every call.
type Store interface {
	// FindOrCreateFolder returns the ID of the folder with the given
	// name under parentID, creating it when absent. Lookup is
	// query-then-create, so a race between two creators can produce
	// duplicates; the first match wins on subsequent lookups.
	FindOrCreateFolder(ctx context.Context, name, parentID string) (string, error)

	// PutBlob uploads data as a new blob and returns its ID.
	PutBlob(ctx context.Context, name, parentFolderID string, data []byte) (string, error)

	// GetBlob downloads a blob by ID.
	GetBlob(ctx context.Context, blobID string) ([]byte, error)

	// DeleteBlob removes a blob. Deleting an already-gone blob is not
	// an error; implementations log it and return nil.
	DeleteBlob(ctx context.Context, blobID string) error

	// FindBlob resolves a blob ID by name within a folder, returning
	// ErrBlobNotFound (wrapped in a ReadError) when absent.
	FindBlob(ctx context.Context, name, parentFolderID string) (string, error)

	// UpdateBlob overwrites the content of an existing blob.
	UpdateBlob(ctx context.Context, blobID string, data []byte) error
}
