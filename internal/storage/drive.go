package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/logvault/backend/internal/logger"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// scratch-file cleanup policy: bounded retries, then give up and log.
const (
	scratchRemoveAttempts = 3
	scratchRemoveBackoff  = 100 * time.Millisecond
)

// DriveStore implements Store on top of the Google Drive v3 API using
// a service account credentials file.
type DriveStore struct {
	srv *drive.Service
}

// NewDriveStore builds a Drive-backed store from a service account
// credentials file. ctx must outlive the store: it is bound into the
// OAuth2 token source and used for every later token refresh, so a
// cancelled construction context poisons all subsequent calls.
func NewDriveStore(ctx context.Context, credentialsFile string) (*DriveStore, error) {
	srv, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init drive service: %w", err)
	}
	return &DriveStore{srv: srv}, nil
}

func (s *DriveStore) FindOrCreateFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), folderMimeType)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}

	list, err := s.srv.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", &ReadError{Op: "list folders", Err: err}
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	meta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	folder, err := s.srv.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", &WriteError{Op: "create folder", Err: err}
	}
	return folder.Id, nil
}

func (s *DriveStore) PutBlob(ctx context.Context, name, parentFolderID string, data []byte) (string, error) {
	// Upload goes through a local scratch file, matching the media
	// upload path the Drive client optimizes for resumability.
	scratch, err := os.CreateTemp("", "logvault-*.txt")
	if err != nil {
		return "", &WriteError{Op: "scratch file", Err: err}
	}
	scratchPath := scratch.Name()
	defer removeScratch(scratchPath)

	if _, err := scratch.Write(data); err != nil {
		scratch.Close()
		return "", &WriteError{Op: "scratch write", Err: err}
	}
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		scratch.Close()
		return "", &WriteError{Op: "scratch seek", Err: err}
	}
	defer scratch.Close()

	meta := &drive.File{
		Name:    name,
		Parents: []string{parentFolderID},
	}
	created, err := s.srv.Files.Create(meta).
		Media(scratch, googleapi.ContentType("text/plain")).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", &WriteError{Op: "upload blob", Err: err}
	}
	return created.Id, nil
}

func (s *DriveStore) GetBlob(ctx context.Context, blobID string) ([]byte, error) {
	resp, err := s.srv.Files.Get(blobID).Context(ctx).Download()
	if err != nil {
		if isNotFound(err) {
			return nil, &ReadError{Op: "download blob", Err: ErrBlobNotFound}
		}
		return nil, &ReadError{Op: "download blob", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ReadError{Op: "read blob body", Err: err}
	}
	return data, nil
}

func (s *DriveStore) DeleteBlob(ctx context.Context, blobID string) error {
	err := s.srv.Files.Delete(blobID).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			logger.WithStore("drive").WithField("blob_id", blobID).
				Warn("delete of missing blob ignored")
			return nil
		}
		return &WriteError{Op: "delete blob", Err: err}
	}
	return nil
}

func (s *DriveStore) FindBlob(ctx context.Context, name, parentFolderID string) (string, error) {
	query := fmt.Sprintf("name='%s' and '%s' in parents and mimeType!='%s' and trashed=false",
		escapeQuery(name), escapeQuery(parentFolderID), folderMimeType)
	list, err := s.srv.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", &ReadError{Op: "find blob", Err: err}
	}
	if len(list.Files) == 0 {
		return "", &ReadError{Op: "find blob", Err: ErrBlobNotFound}
	}
	return list.Files[0].Id, nil
}

func (s *DriveStore) UpdateBlob(ctx context.Context, blobID string, data []byte) error {
	_, err := s.srv.Files.Update(blobID, &drive.File{}).
		Media(bytes.NewReader(data), googleapi.ContentType("application/json")).
		Context(ctx).
		Do()
	if err != nil {
		return &WriteError{Op: "update blob", Err: err}
	}
	return nil
}

// removeScratch deletes an upload scratch file, retrying briefly. A
// leftover scratch file is never worth failing an upload over.
func removeScratch(path string) {
	var err error
	for i := 0; i < scratchRemoveAttempts; i++ {
		if err = os.Remove(path); err == nil || os.IsNotExist(err) {
			return
		}
		time.Sleep(scratchRemoveBackoff)
	}
	logger.WithStore("drive").WithField("path", path).
		Warnf("failed to remove scratch file after %d attempts: %v", scratchRemoveAttempts, err)
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404
	}
	return false
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

var _ Store = (*DriveStore)(nil)
