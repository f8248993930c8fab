// Package index owns the authoritative index document: one JSON-array
// blob listing every known record. The document is the single source
// of truth; the in-process cache is rebuilt from it.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/logvault/backend/internal/logger"
	"github.com/logvault/backend/internal/models"
	"github.com/logvault/backend/internal/storage"
)

// BlobName is the fixed, well-known name of the index document inside
// the root folder. Identity is by this name, never by a cached blob
// ID: an external actor may delete and recreate the document between
// any two calls.
const BlobName = "index.json"

// Store keeps the index document in a storage backend.
type Store struct {
	store        storage.Store
	rootFolderID string
}

func New(store storage.Store, rootFolderID string) *Store {
	return &Store{store: store, rootFolderID: rootFolderID}
}

// Load downloads and parses the index document, creating an empty one
// if the blob does not exist yet. A corrupt document is logged and
// returned as empty WITHOUT rewriting the remote blob; repair is the
// explicit job of EnsureConsistency.
func (s *Store) Load(ctx context.Context) ([]models.LogRecord, error) {
	blobID, err := s.locateOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.store.GetBlob(ctx, blobID)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	records, err := parse(data)
	if err != nil {
		logger.WithIndex(blobID).Warnf("index document corrupt, treating as empty: %v", err)
		return nil, nil
	}
	return records, nil
}

// Save serializes the document and overwrites the index blob. The
// blob ID is re-resolved by name on every call.
func (s *Store) Save(ctx context.Context, records []models.LogRecord) error {
	blobID, err := s.locateOrCreate(ctx)
	if err != nil {
		return err
	}

	if records == nil {
		records = []models.LogRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	if err := s.store.UpdateBlob(ctx, blobID, data); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// Append adds one record to the document.
//
// Load-modify-save is not transactional: two concurrent appends can
// interleave so that the earlier save is overwritten. The baseline
// contract only guarantees correctness under non-concurrent index
// mutation; optimistic concurrency with a version token is the known
// hardening path.
func (s *Store) Append(ctx context.Context, rec models.LogRecord) error {
	records, err := s.Load(ctx)
	if err != nil {
		return err
	}
	records = append(records, rec)
	return s.Save(ctx, records)
}

// Remove filters out every entry carrying the given blob ID. Removing
// an ID that is not present is a successful no-op. Subject to the same
// concurrent-writer race as Append.
func (s *Store) Remove(ctx context.Context, blobID string) error {
	records, err := s.Load(ctx)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.BlobID != blobID {
			kept = append(kept, rec)
		}
	}
	return s.Save(ctx, kept)
}

// EnsureConsistency restores schema validity: if the index blob is
// absent or unparsable it is reset to an empty, well-formed document.
// Referential integrity against the actual blob set is deliberately
// not checked; stale entries and orphan blobs survive this repair.
func (s *Store) EnsureConsistency(ctx context.Context) error {
	blobID, err := s.locateOrCreate(ctx)
	if err != nil {
		return err
	}

	data, err := s.store.GetBlob(ctx, blobID)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			logger.WithIndex(blobID).Warn("index blob vanished, recreating empty")
			return s.Save(ctx, nil)
		}
		return fmt.Errorf("ensure consistency: %w", err)
	}

	if _, perr := parse(data); perr != nil {
		logger.WithIndex(blobID).Warnf("resetting corrupt index document: %v", perr)
		return s.Save(ctx, nil)
	}
	return nil
}

// locateOrCreate resolves the index blob ID by name, creating an empty
// document when none exists.
func (s *Store) locateOrCreate(ctx context.Context) (string, error) {
	blobID, err := s.store.FindBlob(ctx, BlobName, s.rootFolderID)
	if err == nil {
		return blobID, nil
	}
	if !errors.Is(err, storage.ErrBlobNotFound) {
		return "", fmt.Errorf("locate index: %w", err)
	}

	blobID, err = s.store.PutBlob(ctx, BlobName, s.rootFolderID, []byte("[]"))
	if err != nil {
		return "", fmt.Errorf("create index: %w", err)
	}
	logger.WithIndex(blobID).Info("created empty index document")
	return blobID, nil
}

func parse(data []byte) ([]models.LogRecord, error) {
	var records []models.LogRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
