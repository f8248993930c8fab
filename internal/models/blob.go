package models

import "time"

// StoredFolder and StoredBlob back the Postgres store backend. The
// Drive backend keeps this structure remotely; self-hosted deployments
// keep it in two tables instead.

type StoredFolder struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;index:idx_folder_name_parent"`
	ParentID  string    `json:"parentId" gorm:"index:idx_folder_name_parent"`
	CreatedAt time.Time `json:"createdAt"`
}

type StoredBlob struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;index:idx_blob_name_folder"`
	FolderID  string    `json:"folderId" gorm:"index:idx_blob_name_folder"`
	Data      []byte    `json:"-" gorm:"type:bytea"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (StoredFolder) TableName() string {
	return "folders"
}

func (StoredBlob) TableName() string {
	return "blobs"
}
