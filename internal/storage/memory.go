package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by the test suite and by
// local development without any remote backend. Failure hooks let
// tests inject transport errors at specific call sites.
type MemoryStore struct {
	mu      sync.Mutex
	folders map[string]memoryFolder // by ID
	blobs   map[string]memoryBlob   // by ID

	// When set, the matching operation fails with the given error.
	FailPut    error
	FailGet    error
	FailUpdate error
	FailDelete error
}

type memoryFolder struct {
	name     string
	parentID string
}

type memoryBlob struct {
	name     string
	folderID string
	data     []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		folders: make(map[string]memoryFolder),
		blobs:   make(map[string]memoryBlob),
	}
}

func (s *MemoryStore) FindOrCreateFolder(ctx context.Context, name, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.folders {
		if f.name == name && f.parentID == parentID {
			return id, nil
		}
	}
	id := uuid.NewString()
	s.folders[id] = memoryFolder{name: name, parentID: parentID}
	return id, nil
}

func (s *MemoryStore) PutBlob(ctx context.Context, name, parentFolderID string, data []byte) (string, error) {
	if s.FailPut != nil {
		return "", &WriteError{Op: "upload blob", Err: s.FailPut}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.blobs[id] = memoryBlob{name: name, folderID: parentFolderID, data: append([]byte(nil), data...)}
	return id, nil
}

func (s *MemoryStore) GetBlob(ctx context.Context, blobID string) ([]byte, error) {
	if s.FailGet != nil {
		return nil, &ReadError{Op: "download blob", Err: s.FailGet}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[blobID]
	if !ok {
		return nil, &ReadError{Op: "download blob", Err: ErrBlobNotFound}
	}
	return append([]byte(nil), b.data...), nil
}

func (s *MemoryStore) DeleteBlob(ctx context.Context, blobID string) error {
	if s.FailDelete != nil {
		return &WriteError{Op: "delete blob", Err: s.FailDelete}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, blobID)
	return nil
}

func (s *MemoryStore) FindBlob(ctx context.Context, name, parentFolderID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, b := range s.blobs {
		if b.name == name && b.folderID == parentFolderID {
			return id, nil
		}
	}
	return "", &ReadError{Op: "find blob", Err: ErrBlobNotFound}
}

func (s *MemoryStore) UpdateBlob(ctx context.Context, blobID string, data []byte) error {
	if s.FailUpdate != nil {
		return &WriteError{Op: "update blob", Err: s.FailUpdate}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[blobID]
	if !ok {
		return &WriteError{Op: "update blob", Err: ErrBlobNotFound}
	}
	b.data = append([]byte(nil), data...)
	s.blobs[blobID] = b
	return nil
}

// SetBlob plants blob content directly, bypassing ID assignment. Test
// helper for corrupting or pre-seeding store state.
func (s *MemoryStore) SetBlob(blobID, name, folderID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[blobID] = memoryBlob{name: name, folderID: folderID, data: append([]byte(nil), data...)}
}

// BlobCount reports how many blobs the store currently holds.
func (s *MemoryStore) BlobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

var _ Store = (*MemoryStore)(nil)
