package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/logvault/backend/internal/logger"
	"github.com/logvault/backend/internal/models"
	"gorm.io/gorm"
)

// PostgresStore implements Store against the folders/blobs tables for
// self-hosted deployments without a Drive account.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindOrCreateFolder(ctx context.Context, name, parentID string) (string, error) {
	var folder models.StoredFolder
	err := s.db.WithContext(ctx).
		Where("name = ? AND parent_id = ?", name, parentID).
		First(&folder).Error
	if err == nil {
		return folder.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &ReadError{Op: "list folders", Err: err}
	}

	folder = models.StoredFolder{
		ID:       uuid.NewString(),
		Name:     name,
		ParentID: parentID,
	}
	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		return "", &WriteError{Op: "create folder", Err: err}
	}
	return folder.ID, nil
}

func (s *PostgresStore) PutBlob(ctx context.Context, name, parentFolderID string, data []byte) (string, error) {
	blob := models.StoredBlob{
		ID:       uuid.NewString(),
		Name:     name,
		FolderID: parentFolderID,
		Data:     data,
	}
	if err := s.db.WithContext(ctx).Create(&blob).Error; err != nil {
		return "", &WriteError{Op: "upload blob", Err: err}
	}
	return blob.ID, nil
}

func (s *PostgresStore) GetBlob(ctx context.Context, blobID string) ([]byte, error) {
	var blob models.StoredBlob
	err := s.db.WithContext(ctx).First(&blob, "id = ?", blobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ReadError{Op: "download blob", Err: ErrBlobNotFound}
		}
		return nil, &ReadError{Op: "download blob", Err: err}
	}
	return blob.Data, nil
}

func (s *PostgresStore) DeleteBlob(ctx context.Context, blobID string) error {
	res := s.db.WithContext(ctx).Delete(&models.StoredBlob{}, "id = ?", blobID)
	if res.Error != nil {
		return &WriteError{Op: "delete blob", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		logger.WithStore("postgres").WithField("blob_id", blobID).
			Warn("delete of missing blob ignored")
	}
	return nil
}

func (s *PostgresStore) FindBlob(ctx context.Context, name, parentFolderID string) (string, error) {
	var blob models.StoredBlob
	err := s.db.WithContext(ctx).
		Where("name = ? AND folder_id = ?", name, parentFolderID).
		First(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &ReadError{Op: "find blob", Err: ErrBlobNotFound}
		}
		return "", &ReadError{Op: "find blob", Err: err}
	}
	return blob.ID, nil
}

func (s *PostgresStore) UpdateBlob(ctx context.Context, blobID string, data []byte) error {
	res := s.db.WithContext(ctx).
		Model(&models.StoredBlob{}).
		Where("id = ?", blobID).
		Update("data", data)
	if res.Error != nil {
		return &WriteError{Op: "update blob", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &WriteError{Op: "update blob", Err: ErrBlobNotFound}
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
