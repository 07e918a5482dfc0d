package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/drivebox/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShareService struct {
	DB *gorm.DB
}

func NewShareService(db *gorm.DB) *ShareService {
	return &ShareService{DB: db}
}

// Share grants recipientID read access to a file owned by ownerID. Only the
// owner may share; sharing with yourself or re-sharing with the same
// recipient is rejected.
func (s *ShareService) Share(ctx context.Context, fileID, ownerID, recipientID uuid.UUID) (*models.SharedFile, error) {
	var file models.File
	if err := s.DB.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("file not found")
		}
		return nil, fmt.Errorf("loading file: %w", err)
	}
	if file.OwnerID != ownerID {
		return nil, notFound("file not found")
	}

	if recipientID == ownerID {
		return nil, validation("cannot share a file with yourself")
	}

	var recipient models.User
	if err := s.DB.WithContext(ctx).First(&recipient, "id = ?", recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipient not found")
		}
		return nil, fmt.Errorf("loading recipient: %w", err)
	}

	var existing int64
	if err := s.DB.WithContext(ctx).Model(&models.SharedFile{}).
		Where("file_id = ? AND shared_with_id = ?", fileID, recipientID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("checking existing share: %w", err)
	}
	if existing > 0 {
		return nil, conflict("file is already shared with this user")
	}

	share := models.SharedFile{
		FileID:       fileID,
		SharedWithID: recipientID,
		SharedByID:   ownerID,
	}
	if err := s.DB.WithContext(ctx).Create(&share).Error; err != nil {
		return nil, fmt.Errorf("creating share: %w", err)
	}
	return &share, nil
}

// ListSharedWithMe returns the share rows granted to userID with the file
// and sharer preloaded, newest first.
func (s *ShareService) ListSharedWithMe(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.SharedFile, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.SharedFile{}).
		Where("shared_with_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting shares: %w", err)
	}

	var shares []models.SharedFile
	if err := s.DB.WithContext(ctx).
		Where("shared_with_id = ?", userID).
		Preload("File").
		Preload("SharedBy").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&shares).Error; err != nil {
		return nil, 0, fmt.Errorf("listing shares: %w", err)
	}
	return shares, total, nil
}

// ListFileShares lists who a file has been shared with. Owner only.
func (s *ShareService) ListFileShares(ctx context.Context, fileID, requesterID uuid.UUID) ([]models.SharedFile, error) {
	var file models.File
	if err := s.DB.WithContext(ctx).Select("id", "owner_id").First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("file not found")
		}
		return nil, fmt.Errorf("loading file: %w", err)
	}
	if file.OwnerID != requesterID {
		return nil, notFound("file not found")
	}

	var shares []models.SharedFile
	if err := s.DB.WithContext(ctx).
		Preload("SharedWith").
		Where("file_id = ?", fileID).
		Order("created_at DESC").
		Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("listing file shares: %w", err)
	}
	return shares, nil
}

// Revoke deletes a share row. Allowed to the user who granted it and to the
// recipient (declining a share).
func (s *ShareService) Revoke(ctx context.Context, shareID, requesterID uuid.UUID) error {
	var share models.SharedFile
	if err := s.DB.WithContext(ctx).First(&share, "id = ?", shareID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("share not found")
		}
		return fmt.Errorf("loading share: %w", err)
	}
	if share.SharedByID != requesterID && share.SharedWithID != requesterID {
		return notFound("share not found")
	}

	if err := s.DB.WithContext(ctx).Delete(&models.SharedFile{}, "id = ?", share.ID).Error; err != nil {
		return fmt.Errorf("deleting share: %w", err)
	}
	return nil
}
