package handlers

import (
	"strings"

	"github.com/drivebox/backend/internal/middleware"
	"github.com/drivebox/backend/internal/services"
	"github.com/drivebox/backend/internal/storage"
	"github.com/drivebox/backend/pkg/logger"
	"github.com/drivebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FoldersHandler struct {
	Folders *services.FolderService
	Storage *storage.MinIOClient
}

func NewFoldersHandler(folders *services.FolderService, storageClient *storage.MinIOClient) *FoldersHandler {
	return &FoldersHandler{Folders: folders, Storage: storageClient}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentID"`
}

func (h *FoldersHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	parentID, ok := parseOptionalUUID(req.ParentID)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
	}

	folder, err := h.Folders.Create(c.Context(), currentUser.ID, req.Name, parentID)
	if err != nil {
		return serviceError(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "folder_created", map[string]interface{}{
		"folder_id":   folder.ID.String(),
		"folder_name": folder.Name,
		"parent_id":   req.ParentID,
	})

	return utils.Success(c, fiber.StatusCreated, folder)
}

func (h *FoldersHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var parentID *uuid.UUID
	rootOnly := false

	raw, given := c.Queries()["parentID"]
	if given {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.EqualFold(trimmed, "root") {
			rootOnly = true
		} else {
			parsed, err := parseUUID(trimmed)
			if err != nil {
				return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
			}
			parentID = &parsed
		}
	}

	folders, err := h.Folders.List(c.Context(), currentUser.ID, parentID, rootOnly)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, folders)
}

func (h *FoldersHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	folder, err := h.Folders.Get(c.Context(), folderID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, folder)
}

func (h *FoldersHandler) Path(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	path, err := h.Folders.ResolvePath(c.Context(), folderID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, path)
}

type updateFolderRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentID"`
}

// Update renames and/or moves a folder. The parentID field distinguishes
// absent (leave alone) from empty (move to root).
func (h *FoldersHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	var req updateFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == nil && req.ParentID == nil {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	folder, err := h.Folders.Get(c.Context(), folderID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	if req.Name != nil {
		folder, err = h.Folders.Rename(c.Context(), folderID, currentUser.ID, *req.Name)
		if err != nil {
			return serviceError(c, err)
		}
	}

	if req.ParentID != nil {
		newParentID, ok := parseOptionalUUID(req.ParentID)
		if !ok {
			return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
		}
		folder, err = h.Folders.Move(c.Context(), folderID, currentUser.ID, newParentID)
		if err != nil {
			return serviceError(c, err)
		}
	}

	logger.InfoWithUser(currentUser.ID.String(), "folder_updated", map[string]interface{}{
		"folder_id": folder.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, folder)
}

func (h *FoldersHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	blobPaths, err := h.Folders.Delete(c.Context(), folderID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	// Rows are gone; blob cleanup is best-effort.
	if h.Storage != nil {
		for _, path := range blobPaths {
			if err := h.Storage.Delete(c.Context(), path); err != nil {
				logger.ErrorWithUser(currentUser.ID.String(), "blob_delete_failed", err, map[string]interface{}{
					"storage_path": path,
				})
			}
		}
	}

	logger.InfoWithUser(currentUser.ID.String(), "folder_deleted", map[string]interface{}{
		"folder_id":     folderID.String(),
		"files_removed": len(blobPaths),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "folder deleted"})
}
