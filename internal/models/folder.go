package models

import "github.com/google/uuid"

type Folder struct {
	BaseModel
	Name     string     `json:"name" gorm:"type:varchar(255);not null"`
	OwnerID  uuid.UUID  `json:"ownerID" gorm:"type:uuid;not null;index"`
	ParentID *uuid.UUID `json:"parentID,omitempty" gorm:"type:uuid;index"`

	Parent   *Folder  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Folder `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Owner    User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Files    []File   `json:"-" gorm:"foreignKey:FolderID"`
}

// PathSegment is one breadcrumb entry on the root-to-folder path.
type PathSegment struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
