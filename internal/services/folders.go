package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/drivebox/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxFolderDepth bounds every parent-chain walk. The tree is acyclic by
// construction, but a walk must never loop forever if that invariant is
// ever broken in the store.
const maxFolderDepth = 128

type FolderService struct {
	DB *gorm.DB
}

func NewFolderService(db *gorm.DB) *FolderService {
	return &FolderService{DB: db}
}

// ownedFolder loads a folder and enforces ownership. A folder owned by a
// different user is reported exactly like a missing one.
func (s *FolderService) ownedFolder(ctx context.Context, folderID, requesterID uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := s.DB.WithContext(ctx).First(&folder, "id = ?", folderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("folder not found")
		}
		return nil, fmt.Errorf("loading folder: %w", err)
	}
	if folder.OwnerID != requesterID {
		return nil, notFound("folder not found")
	}
	return &folder, nil
}

func (s *FolderService) Create(ctx context.Context, ownerID uuid.UUID, name string, parentID *uuid.UUID) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation("folder name is required")
	}

	if parentID != nil {
		if _, err := s.ownedFolder(ctx, *parentID, ownerID); err != nil {
			return nil, err
		}
	}

	folder := models.Folder{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}
	if err := s.DB.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, fmt.Errorf("creating folder: %w", err)
	}
	return &folder, nil
}

func (s *FolderService) Get(ctx context.Context, folderID, requesterID uuid.UUID) (*models.Folder, error) {
	return s.ownedFolder(ctx, folderID, requesterID)
}

// List returns the requester's folders. When parentID is non-nil it filters
// to that parent's children; rootOnly restricts to top-level folders.
func (s *FolderService) List(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, rootOnly bool) ([]models.Folder, error) {
	query := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID)
	switch {
	case parentID != nil:
		query = query.Where("parent_id = ?", *parentID)
	case rootOnly:
		query = query.Where("parent_id IS NULL")
	}

	var folders []models.Folder
	if err := query.Order("created_at DESC").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return folders, nil
}

func (s *FolderService) Rename(ctx context.Context, folderID, requesterID uuid.UUID, newName string) (*models.Folder, error) {
	folder, err := s.ownedFolder(ctx, folderID, requesterID)
	if err != nil {
		return nil, err
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, validation("folder name is required")
	}

	if err := s.DB.WithContext(ctx).Model(folder).Update("name", newName).Error; err != nil {
		return nil, fmt.Errorf("renaming folder: %w", err)
	}
	folder.Name = newName
	return folder, nil
}

// Move reparents a folder. A nil newParentID moves it to the root. Moves that
// would make a folder its own ancestor are rejected with ErrConflict.
func (s *FolderService) Move(ctx context.Context, folderID, requesterID uuid.UUID, newParentID *uuid.UUID) (*models.Folder, error) {
	folder, err := s.ownedFolder(ctx, folderID, requesterID)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == folder.ID {
			return nil, conflict("folder cannot be its own parent")
		}
		parent, err := s.ownedFolder(ctx, *newParentID, requesterID)
		if err != nil {
			return nil, err
		}
		descendant, err := s.isDescendant(ctx, folder.ID, parent.ID)
		if err != nil {
			return nil, err
		}
		if descendant {
			return nil, conflict("cannot move a folder into its own subtree")
		}
	}

	if err := s.DB.WithContext(ctx).Model(folder).Update("parent_id", newParentID).Error; err != nil {
		return nil, fmt.Errorf("moving folder: %w", err)
	}
	folder.ParentID = newParentID
	return folder, nil
}

// ResolvePath returns the breadcrumb from the root down to folderID. A
// missing or foreign-owned ancestor breaks the whole path: the caller gets
// ErrNotFound, never a partial result.
func (s *FolderService) ResolvePath(ctx context.Context, folderID, requesterID uuid.UUID) ([]models.PathSegment, error) {
	path := make([]models.PathSegment, 0, 8)
	current := folderID

	for depth := 0; ; depth++ {
		if depth >= maxFolderDepth {
			return nil, fmt.Errorf("folder hierarchy exceeds %d levels", maxFolderDepth)
		}

		folder, err := s.ownedFolder(ctx, current, requesterID)
		if err != nil {
			return nil, err
		}

		path = append(path, models.PathSegment{ID: folder.ID, Name: folder.Name})
		if folder.ParentID == nil {
			break
		}
		current = *folder.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Delete removes a folder, every descendant folder, all files contained in
// the subtree and their share rows, in a single transaction. It returns the
// blob keys of the removed files so the caller can purge object storage
// after the commit.
func (s *FolderService) Delete(ctx context.Context, folderID, requesterID uuid.UUID) ([]string, error) {
	if _, err := s.ownedFolder(ctx, folderID, requesterID); err != nil {
		return nil, err
	}

	folderIDs, err := s.collectSubtree(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var files []models.File
	if err := s.DB.WithContext(ctx).
		Select("id", "storage_path").
		Where("folder_id IN ?", folderIDs).
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("loading contained files: %w", err)
	}

	fileIDs := make([]uuid.UUID, len(files))
	blobPaths := make([]string, 0, len(files))
	for i, f := range files {
		fileIDs[i] = f.ID
		if f.StoragePath != "" {
			blobPaths = append(blobPaths, f.StoragePath)
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fileIDs) > 0 {
			if err := tx.Where("file_id IN ?", fileIDs).Delete(&models.SharedFile{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", fileIDs).Delete(&models.File{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("id IN ?", folderIDs).Delete(&models.Folder{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("deleting folder subtree: %w", err)
	}
	return blobPaths, nil
}

// collectSubtree gathers folderID and every descendant, breadth-first,
// bounded by maxFolderDepth levels.
func (s *FolderService) collectSubtree(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	all := []uuid.UUID{folderID}
	frontier := []uuid.UUID{folderID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxFolderDepth {
			return nil, fmt.Errorf("folder hierarchy exceeds %d levels", maxFolderDepth)
		}

		var children []models.Folder
		if err := s.DB.WithContext(ctx).
			Select("id").
			Where("parent_id IN ?", frontier).
			Find(&children).Error; err != nil {
			return nil, fmt.Errorf("collecting subfolders: %w", err)
		}

		frontier = frontier[:0]
		for _, child := range children {
			all = append(all, child.ID)
			frontier = append(frontier, child.ID)
		}
	}
	return all, nil
}

// isDescendant reports whether candidate sits inside ancestor's subtree,
// walking parent links upward from candidate.
func (s *FolderService) isDescendant(ctx context.Context, ancestorID, candidateID uuid.UUID) (bool, error) {
	current := candidateID
	for depth := 0; ; depth++ {
		if depth >= maxFolderDepth {
			return false, fmt.Errorf("folder hierarchy exceeds %d levels", maxFolderDepth)
		}
		if current == ancestorID {
			return true, nil
		}

		var folder models.Folder
		err := s.DB.WithContext(ctx).Select("id", "parent_id").First(&folder, "id = ?", current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("walking folder ancestry: %w", err)
		}
		if folder.ParentID == nil {
			return false, nil
		}
		current = *folder.ParentID
	}
}
