package services

import (
	"context"
	"sync"
	"testing"

	"github.com/drivebox/backend/internal/database"
	"github.com/drivebox/backend/internal/models"
	"github.com/drivebox/backend/pkg/logger"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var loggerOnce sync.Once

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	loggerOnce.Do(logger.Init)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: "x", Name: "Seeded"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed seeding user: %v", err)
	}
	return user
}

func seedFolder(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string, parentID *uuid.UUID) *models.Folder {
	t.Helper()

	folder := &models.Folder{Name: name, OwnerID: ownerID, ParentID: parentID}
	if err := db.Create(folder).Error; err != nil {
		t.Fatalf("failed seeding folder: %v", err)
	}
	return folder
}

func seedFile(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string, folderID *uuid.UUID) *models.File {
	t.Helper()

	file := &models.File{
		Name:        name,
		MimeType:    "application/octet-stream",
		Size:        1,
		OwnerID:     ownerID,
		FolderID:    folderID,
		StoragePath: "blobs/" + uuid.New().String(),
	}
	if err := db.Create(file).Error; err != nil {
		t.Fatalf("failed seeding file: %v", err)
	}
	return file
}

// recordingBlobRemover records deleted object names for assertions.
type recordingBlobRemover struct {
	mu      sync.Mutex
	deleted []string
	fail    error
}

func (r *recordingBlobRemover) Delete(_ context.Context, objectName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.deleted = append(r.deleted, objectName)
	return nil
}
