package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drivebox/backend/internal/models"
	"github.com/drivebox/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlobRemover deletes an object from blob storage. Satisfied by
// storage.MinIOClient; nil in tests that never touch blobs.
type BlobRemover interface {
	Delete(ctx context.Context, objectName string) error
}

type FileService struct {
	DB    *gorm.DB
	Blobs BlobRemover
}

func NewFileService(db *gorm.DB, blobs BlobRemover) *FileService {
	return &FileService{DB: db, Blobs: blobs}
}

func (s *FileService) ownedFile(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, error) {
	var file models.File
	if err := s.DB.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("file not found")
		}
		return nil, fmt.Errorf("loading file: %w", err)
	}
	if file.OwnerID != requesterID {
		return nil, notFound("file not found")
	}
	return &file, nil
}

// Get returns a file the requester owns or has received through a share.
func (s *FileService) Get(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, error) {
	var file models.File
	if err := s.DB.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("file not found")
		}
		return nil, fmt.Errorf("loading file: %w", err)
	}
	if file.OwnerID == requesterID {
		return &file, nil
	}

	var shareCount int64
	if err := s.DB.WithContext(ctx).Model(&models.SharedFile{}).
		Where("file_id = ? AND shared_with_id = ?", fileID, requesterID).
		Count(&shareCount).Error; err != nil {
		return nil, fmt.Errorf("checking share access: %w", err)
	}
	if shareCount == 0 {
		return nil, notFound("file not found")
	}
	return &file, nil
}

// List returns the requester's active files, filtered to one folder or, when
// folderID is nil, to the root level.
func (s *FileService) List(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]models.File, error) {
	query := s.DB.WithContext(ctx).Where("owner_id = ? AND is_deleted = ?", ownerID, false)
	if folderID != nil {
		query = query.Where("folder_id = ?", *folderID)
	} else {
		query = query.Where("folder_id IS NULL")
	}

	var files []models.File
	if err := query.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return files, nil
}

func (s *FileService) ListTrash(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	var files []models.File
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", ownerID, true).
		Order("deleted_at DESC").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("listing trash: %w", err)
	}
	return files, nil
}

func (s *FileService) ListStarred(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	var files []models.File
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND is_starred = ? AND is_deleted = ?", ownerID, true, false).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("listing starred files: %w", err)
	}
	return files, nil
}

func (s *FileService) Rename(ctx context.Context, fileID, requesterID uuid.UUID, newName string) (*models.File, error) {
	file, err := s.ownedFile(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, validation("file name is required")
	}

	if err := s.DB.WithContext(ctx).Model(file).Update("name", newName).Error; err != nil {
		return nil, fmt.Errorf("renaming file: %w", err)
	}
	file.Name = newName
	return file, nil
}

// Move attaches a file to another folder, or to the root when folderID is
// nil. The target folder must belong to the requester.
func (s *FileService) Move(ctx context.Context, fileID, requesterID uuid.UUID, folderID *uuid.UUID) (*models.File, error) {
	file, err := s.ownedFile(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		var folder models.Folder
		if err := s.DB.WithContext(ctx).First(&folder, "id = ?", *folderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("folder not found")
			}
			return nil, fmt.Errorf("loading target folder: %w", err)
		}
		if folder.OwnerID != requesterID {
			return nil, notFound("folder not found")
		}
	}

	if err := s.DB.WithContext(ctx).Model(file).Update("folder_id", folderID).Error; err != nil {
		return nil, fmt.Errorf("moving file: %w", err)
	}
	file.FolderID = folderID
	return file, nil
}

// Delete is the single lifecycle transition, keyed on current state: an
// active file is trashed, a trashed file is purged for good. The second
// return value reports whether the call purged.
func (s *FileService) Delete(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, bool, error) {
	file, err := s.ownedFile(ctx, fileID, requesterID)
	if err != nil {
		return nil, false, err
	}

	if !file.IsDeleted {
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		}
		if err := s.DB.WithContext(ctx).Model(file).Updates(updates).Error; err != nil {
			return nil, false, fmt.Errorf("trashing file: %w", err)
		}
		file.IsDeleted = true
		file.DeletedAt = &now
		return file, false, nil
	}

	if err := s.purge(ctx, file); err != nil {
		return nil, false, err
	}
	return file, true, nil
}

// Restore returns a trashed file to its active state. Restoring a file that
// is already active succeeds without touching it.
func (s *FileService) Restore(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, error) {
	file, err := s.ownedFile(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}
	if !file.IsDeleted {
		return file, nil
	}

	updates := map[string]interface{}{
		"is_deleted": false,
		"deleted_at": nil,
	}
	if err := s.DB.WithContext(ctx).Model(file).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("restoring file: %w", err)
	}
	file.IsDeleted = false
	file.DeletedAt = nil
	return file, nil
}

// EmptyTrash purges every trashed file the requester owns, best-effort per
// item: one failed purge is logged and skipped, the rest proceed. Returns
// the number of files purged.
func (s *FileService) EmptyTrash(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var trashed []models.File
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", ownerID, true).
		Find(&trashed).Error; err != nil {
		return 0, fmt.Errorf("loading trash: %w", err)
	}

	purged := 0
	for i := range trashed {
		if err := s.purge(ctx, &trashed[i]); err != nil {
			logger.ErrorWithUser(ownerID.String(), "trash_purge_failed", err, map[string]interface{}{
				"file_id": trashed[i].ID.String(),
			})
			continue
		}
		purged++
	}
	return purged, nil
}

// SetStarred flips the starred flag. Idempotent, and valid for trashed files
// as well as active ones.
func (s *FileService) SetStarred(ctx context.Context, fileID, requesterID uuid.UUID, on bool) (*models.File, error) {
	file, err := s.ownedFile(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}
	if file.IsStarred == on {
		return file, nil
	}

	if err := s.DB.WithContext(ctx).Model(file).Update("is_starred", on).Error; err != nil {
		return nil, fmt.Errorf("updating star flag: %w", err)
	}
	file.IsStarred = on
	return file, nil
}

// purge removes the record and its share rows in one transaction, then
// deletes the blob. Blob removal is best-effort: the row is already gone and
// a dangling object only costs storage.
func (s *FileService) purge(ctx context.Context, file *models.File) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", file.ID).Delete(&models.SharedFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.File{}, "id = ?", file.ID).Error
	})
	if err != nil {
		return fmt.Errorf("purging file: %w", err)
	}

	if s.Blobs != nil && file.StoragePath != "" {
		if err := s.Blobs.Delete(ctx, file.StoragePath); err != nil {
			logger.Error("blob_delete_failed", err, map[string]interface{}{
				"file_id":      file.ID.String(),
				"storage_path": file.StoragePath,
			})
		}
	}
	return nil
}
