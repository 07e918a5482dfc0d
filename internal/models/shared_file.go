package models

import "github.com/google/uuid"

type SharedFile struct {
	BaseModel
	FileID       uuid.UUID `json:"fileID" gorm:"type:uuid;not null;uniqueIndex:idx_shared_file_recipient"`
	SharedWithID uuid.UUID `json:"sharedWithID" gorm:"type:uuid;not null;uniqueIndex:idx_shared_file_recipient"`
	SharedByID   uuid.UUID `json:"sharedByID" gorm:"type:uuid;not null;index"`

	File       File `json:"file,omitempty" gorm:"foreignKey:FileID;references:ID"`
	SharedWith User `json:"sharedWith,omitempty" gorm:"foreignKey:SharedWithID;references:ID"`
	SharedBy   User `json:"sharedBy,omitempty" gorm:"foreignKey:SharedByID;references:ID"`
}

func (SharedFile) TableName() string {
	return "shared_files"
}
