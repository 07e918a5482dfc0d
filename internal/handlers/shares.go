package handlers

import (
	"github.com/drivebox/backend/internal/middleware"
	"github.com/drivebox/backend/internal/services"
	"github.com/drivebox/backend/pkg/logger"
	"github.com/drivebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SharesHandler struct {
	Shares *services.ShareService
}

func NewSharesHandler(shares *services.ShareService) *SharesHandler {
	return &SharesHandler{Shares: shares}
}

type createShareRequest struct {
	UserID *uuid.UUID `json:"userID"`
}

func (h *SharesHandler) ShareFile(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var req createShareRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID == nil {
		return utils.Error(c, fiber.StatusBadRequest, "userID is required")
	}

	share, err := h.Shares.Share(c.Context(), fileID, currentUser.ID, *req.UserID)
	if err != nil {
		return serviceError(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_shared", map[string]interface{}{
		"file_id":        fileID.String(),
		"shared_with_id": req.UserID.String(),
		"shared_file_id": share.ID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, share)
}

func (h *SharesHandler) ListFileShares(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	shares, err := h.Shares.ListFileShares(c.Context(), fileID, currentUser.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, shares)
}

func (h *SharesHandler) ListSharedWithMe(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	p := utils.ParsePagination(c)

	shares, total, err := h.Shares.ListSharedWithMe(c.Context(), currentUser.ID, p.Offset, p.Limit)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Paginated(c, shares, p.Page, p.Limit, total)
}

func (h *SharesHandler) DeleteShare(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	shareID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid share id")
	}

	if err := h.Shares.Revoke(c.Context(), shareID, currentUser.ID); err != nil {
		return serviceError(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "share_revoked", map[string]interface{}{
		"share_id": shareID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "share revoked"})
}
