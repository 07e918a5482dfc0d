package handlers

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/drivebox/backend/internal/middleware"
	"github.com/drivebox/backend/internal/models"
	"github.com/drivebox/backend/internal/services"
	"github.com/drivebox/backend/internal/storage"
	"github.com/drivebox/backend/pkg/logger"
	"github.com/drivebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FilesHandler struct {
	DB      *gorm.DB
	Files   *services.FileService
	Storage *storage.MinIOClient
}

func NewFilesHandler(db *gorm.DB, files *services.FileService, storageClient *storage.MinIOClient) *FilesHandler {
	return &FilesHandler{DB: db, Files: files, Storage: storageClient}
}

func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "file is required")
	}

	var folderID *uuid.UUID
	folderIDRaw := strings.TrimSpace(c.FormValue("folderID"))
	if folderIDRaw != "" {
		parsed, parseErr := parseUUID(folderIDRaw)
		if parseErr != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid folderID")
		}
		folderID = &parsed

		var folder models.Folder
		if err := h.DB.First(&folder, "id = ?", parsed).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.Error(c, fiber.StatusNotFound, "folder not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed validating folder")
		}
		if folder.OwnerID != currentUser.ID {
			return utils.Error(c, fiber.StatusNotFound, "folder not found")
		}
	}

	stream, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
	}
	defer stream.Close()

	filename := filepath.Base(strings.TrimSpace(fileHeader.Filename))
	if filename == "" || filename == "." {
		return utils.Error(c, fiber.StatusBadRequest, "invalid filename")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("%s/%s/%s", currentUser.ID.String(), uuid.New().String(), filename)
	if err := h.Storage.Upload(c.Context(), objectName, stream, fileHeader.Size, contentType); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed uploading file")
	}

	entry := models.File{
		Name:        filename,
		MimeType:    contentType,
		Size:        fileHeader.Size,
		OwnerID:     currentUser.ID,
		FolderID:    folderID,
		StoragePath: objectName,
	}

	if err := h.DB.Create(&entry).Error; err != nil {
		_ = h.Storage.Delete(c.Context(), objectName)
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating file record")
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_uploaded", map[string]interface{}{
		"file_id":      entry.ID.String(),
		"file_name":    filename,
		"file_size":    fileHeader.Size,
		"mime_type":    contentType,
		"storage_path": objectName,
		"folder_id":    folderID,
	})

	return utils.Success(c, fiber.StatusCreated, entry)
}

func (h *FilesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var folderID *uuid.UUID
	folderIDRaw := strings.TrimSpace(c.Query("folderID"))
	if folderIDRaw != "" {
		parsed, err := parseUUID(folderIDRaw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid folderID")
		}
		folderID = &parsed
	}

	files, err := h.Files.List(c.Context(), currentUser.ID, folderID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, files)
}

func (h *FilesHandler) ListTrash(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	files, err := h.Files.ListTrash(c.Context(), currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, files)
}

func (h *FilesHandler) EmptyTrash(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	purged, err := h.Files.EmptyTrash(c.Context(), currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "trash_emptied", map[string]interface{}{
		"purged": purged,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"purged": purged})
}

func (h *FilesHandler) ListStarred(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	files, err := h.Files.ListStarred(c.Context(), currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, files)
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Files.Get(c.Context(), fileID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, file)
}

func (h *FilesHandler) Download(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Files.Get(c.Context(), fileID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	obj, err := h.Storage.Download(c.Context(), file.StoragePath)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed downloading file")
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return utils.Error(c, fiber.StatusInternalServerError, "failed reading object metadata")
	}

	contentType := stat.ContentType
	if contentType == "" {
		contentType = file.MimeType
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_downloaded", map[string]interface{}{
		"file_id":   file.ID.String(),
		"file_name": file.Name,
		"file_size": file.Size,
	})

	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.SendStream(obj, int(stat.Size))
}

func (h *FilesHandler) DownloadURL(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	if _, err := h.Files.Get(c.Context(), fileID, currentUser.ID); err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"url": "/api/files/" + fileID.String() + "/download",
	})
}

type updateFileRequest struct {
	Name     *string `json:"name"`
	FolderID *string `json:"folderID"`
}

// Update renames and/or moves a file between folders. The folderID field
// distinguishes absent (leave alone) from empty (move to root).
func (h *FilesHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var req updateFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == nil && req.FolderID == nil {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	file, err := h.Files.Get(c.Context(), fileID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	if req.Name != nil {
		file, err = h.Files.Rename(c.Context(), fileID, currentUser.ID, *req.Name)
		if err != nil {
			return serviceError(c, err)
		}
	}

	if req.FolderID != nil {
		folderID, ok := parseOptionalUUID(req.FolderID)
		if !ok {
			return utils.Error(c, fiber.StatusBadRequest, "invalid folderID")
		}
		file, err = h.Files.Move(c.Context(), fileID, currentUser.ID, folderID)
		if err != nil {
			return serviceError(c, err)
		}
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_updated", map[string]interface{}{
		"file_id": file.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, file)
}

// Delete applies the lifecycle transition for the file's current state: an
// active file moves to the trash, a trashed file is permanently removed.
func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, purged, err := h.Files.Delete(c.Context(), fileID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	if purged {
		logger.InfoWithUser(currentUser.ID.String(), "file_purged", map[string]interface{}{
			"file_id": fileID.String(),
		})
		return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "file permanently deleted"})
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_trashed", map[string]interface{}{
		"file_id": fileID.String(),
	})
	return utils.Success(c, fiber.StatusOK, file)
}

func (h *FilesHandler) Restore(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Files.Restore(c.Context(), fileID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_restored", map[string]interface{}{
		"file_id": fileID.String(),
	})

	return utils.Success(c, fiber.StatusOK, file)
}

func (h *FilesHandler) Star(c *fiber.Ctx) error {
	return h.setStarred(c, true)
}

func (h *FilesHandler) Unstar(c *fiber.Ctx) error {
	return h.setStarred(c, false)
}

func (h *FilesHandler) setStarred(c *fiber.Ctx, on bool) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Files.SetStarred(c.Context(), fileID, currentUser.ID, on)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, file)
}
