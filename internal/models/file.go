package models

import (
	"time"

	"github.com/google/uuid"
)

type File struct {
	BaseModel
	Name        string     `json:"name" gorm:"type:varchar(255);not null"`
	MimeType    string     `json:"mimeType" gorm:"type:varchar(255);not null"`
	Size        int64      `json:"size" gorm:"not null;default:0"`
	OwnerID     uuid.UUID  `json:"ownerID" gorm:"type:uuid;not null;index"`
	FolderID    *uuid.UUID `json:"folderID,omitempty" gorm:"type:uuid;index"`
	StoragePath string     `json:"-" gorm:"type:text;not null"`
	IsStarred   bool       `json:"isStarred" gorm:"not null;default:false;index"`
	IsDeleted   bool       `json:"isDeleted" gorm:"not null;default:false;index"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`

	Folder *Folder      `json:"folder,omitempty" gorm:"foreignKey:FolderID"`
	Owner  User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Shares []SharedFile `json:"-" gorm:"foreignKey:FileID"`
}
