package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/logvault/backend/internal/cache"
	"github.com/logvault/backend/internal/codec"
	"github.com/logvault/backend/internal/index"
	"github.com/logvault/backend/internal/logger"
	"github.com/logvault/backend/internal/models"
	"github.com/logvault/backend/internal/storage"
)

// RecordService orchestrates record creation and deletion across the
// blob store, the index document, and the cache projection. The cache
// is only ever mutated after the remote side has fully committed.
type RecordService struct {
	store        storage.Store
	index        *index.Store
	cache        *cache.Projection
	rootFolderID string
}

func NewRecordService(store storage.Store, idx *index.Store, proj *cache.Projection, rootFolderID string) *RecordService {
	return &RecordService{
		store:        store,
		index:        idx,
		cache:        proj,
		rootFolderID: rootFolderID,
	}
}

// Cache exposes the read-side projection for query handlers.
func (s *RecordService) Cache() *cache.Projection {
	return s.cache
}

// Create uploads the record blob, appends the record to the index and
// finally patches the cache. Any failure before the index append
// commits leaves the cache untouched. An upload that commits followed
// by an append that fails leaves an orphan blob: logged, never cleaned
// up automatically.
func (s *RecordService) Create(ctx context.Context, rec models.LogRecord) (string, error) {
	if rec.Filename == "" {
		return "", errors.New("filename must not be empty")
	}

	name, data := codec.Encode(rec)
	blobID, err := s.store.PutBlob(ctx, name, s.rootFolderID, data)
	if err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}
	rec.BlobID = blobID

	if err := s.index.Append(ctx, rec); err != nil {
		logger.WithRecord(rec.Filename, rec.ReceivedAt).
			WithField("blob_id", blobID).
			Warnf("orphan blob: uploaded but index append failed: %v", err)
		return "", fmt.Errorf("create record: %w", err)
	}

	s.cache.AppendOne(rec)
	return blobID, nil
}

// Delete removes a record by blob ID. The blob delete is best-effort
// (an already-gone blob is fine); the index removal and cache patch
// make the operation idempotent end to end.
func (s *RecordService) Delete(ctx context.Context, blobID string) error {
	if blobID == "" {
		return errors.New("blob_id must not be empty")
	}

	if err := s.store.DeleteBlob(ctx, blobID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	if err := s.index.Remove(ctx, blobID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	s.cache.RemoveByBlobID(blobID)
	return nil
}
