package services

import (
	"context"
	"errors"
	"testing"

	"github.com/drivebox/backend/internal/models"
	"github.com/google/uuid"
)

func TestFolderOwnershipIndistinguishableFromAbsence(t *testing.T) {
	db := setupDB(t)
	svc := NewFolderService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	stranger := seedUser(t, db, "stranger@example.com")
	folder := seedFolder(t, db, owner.ID, "private", nil)

	_, foreignErr := svc.Get(ctx, folder.ID, stranger.ID)
	_, missingErr := svc.Get(ctx, uuid.New(), stranger.ID)

	if !errors.Is(foreignErr, ErrNotFound) || !errors.Is(missingErr, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for both, got %v and %v", foreignErr, missingErr)
	}
	if foreignErr.Error() != missingErr.Error() {
		t.Fatalf("foreign and missing must read the same: %q vs %q", foreignErr, missingErr)
	}
}

func TestResolvePathDeepTree(t *testing.T) {
	db := setupDB(t)
	svc := NewFolderService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")

	var parentID *uuid.UUID
	names := []string{"l0", "l1", "l2", "l3", "l4"}
	var leaf *models.Folder
	for _, name := range names {
		leaf = seedFolder(t, db, owner.ID, name, parentID)
		id := leaf.ID
		parentID = &id
	}

	path, err := svc.ResolvePath(ctx, leaf.ID, owner.ID)
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if len(path) != len(names) {
		t.Fatalf("expected %d segments, got %d", len(names), len(path))
	}
	for i, name := range names {
		if path[i].Name != name {
			t.Fatalf("segment %d: expected %q, got %q", i, name, path[i].Name)
		}
	}
}

func TestMoveRejectsDescendants(t *testing.T) {
	db := setupDB(t)
	svc := NewFolderService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	a := seedFolder(t, db, owner.ID, "a", nil)
	b := seedFolder(t, db, owner.ID, "b", &a.ID)
	c := seedFolder(t, db, owner.ID, "c", &b.ID)
	sibling := seedFolder(t, db, owner.ID, "sibling", nil)

	if _, err := svc.Move(ctx, a.ID, owner.ID, &c.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict moving into own subtree, got %v", err)
	}
	if _, err := svc.Move(ctx, a.ID, owner.ID, &a.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for self-parent, got %v", err)
	}

	// Moving a subtree sideways is fine and keeps its internal structure.
	moved, err := svc.Move(ctx, b.ID, owner.ID, &sibling.ID)
	if err != nil {
		t.Fatalf("sideways move failed: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != sibling.ID {
		t.Fatalf("expected b under sibling, got %+v", moved)
	}

	path, err := svc.ResolvePath(ctx, c.ID, owner.ID)
	if err != nil {
		t.Fatalf("ResolvePath after move failed: %v", err)
	}
	if len(path) != 3 || path[0].Name != "sibling" || path[1].Name != "b" || path[2].Name != "c" {
		t.Fatalf("unexpected path after move: %+v", path)
	}
}

func TestDeleteReturnsBlobPaths(t *testing.T) {
	db := setupDB(t)
	svc := NewFolderService(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	root := seedFolder(t, db, owner.ID, "root", nil)
	child := seedFolder(t, db, owner.ID, "child", &root.ID)
	grandchild := seedFolder(t, db, owner.ID, "grandchild", &child.ID)

	f1 := seedFile(t, db, owner.ID, "one", &root.ID)
	f2 := seedFile(t, db, owner.ID, "two", &grandchild.ID)
	outside := seedFile(t, db, owner.ID, "outside", nil)

	blobPaths, err := svc.Delete(ctx, root.ID, owner.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	want := map[string]bool{f1.StoragePath: true, f2.StoragePath: true}
	if len(blobPaths) != 2 {
		t.Fatalf("expected 2 blob paths, got %v", blobPaths)
	}
	for _, p := range blobPaths {
		if !want[p] {
			t.Fatalf("unexpected blob path %q", p)
		}
	}

	var remaining int64
	db.Model(&models.Folder{}).Where("owner_id = ?", owner.ID).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("expected no folders left, got %d", remaining)
	}
	db.Model(&models.File{}).Where("id = ?", outside.ID).Count(&remaining)
	if remaining != 1 {
		t.Fatal("file outside the subtree must survive")
	}
}

func TestCreateRequiresName(t *testing.T) {
	db := setupDB(t)
	svc := NewFolderService(db)
	owner := seedUser(t, db, "owner@example.com")

	if _, err := svc.Create(context.Background(), owner.ID, "  ", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
