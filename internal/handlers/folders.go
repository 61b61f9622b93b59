package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hollywoo/internal/database"
	"hollywoo/internal/scanner"
)

// ScanSubmitter queues a folder scan
type ScanSubmitter interface {
	Submit(root string) error
}

// FolderHandler handles folder requests
type FolderHandler struct {
	db    *database.DB
	scans ScanSubmitter
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(db *database.DB, scans ScanSubmitter) *FolderHandler {
	return &FolderHandler{db: db, scans: scans}
}

// GetFolders handles GET /api/folders
func (h *FolderHandler) GetFolders(c *fiber.Ctx) error {
	folders, err := h.db.Store().FolderGetAll(c.UserContext())
	if err != nil {
		return sendStoreError(c, "Folder", err)
	}
	return c.JSON(folders)
}

// ScanFolder handles POST /api/folders. The folder is added by the scan
// itself; the response only confirms it was queued.
func (h *FolderHandler) ScanFolder(c *fiber.Ctx) error {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendError(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		return SendError(c, http.StatusBadRequest, "path is required")
	}

	if err := h.scans.Submit(req.Path); err != nil {
		switch {
		case errors.Is(err, scanner.ErrQueueFull):
			return SendError(c, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, scanner.ErrStopped):
			return SendError(c, http.StatusServiceUnavailable, err.Error())
		default:
			return SendError(c, http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"status": "queued",
		"path":   req.Path,
	})
}

// GetFolderVideos handles GET /api/folders/:id/videos
func (h *FolderHandler) GetFolderVideos(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return SendError(c, http.StatusBadRequest, "Invalid folder ID")
	}

	store := h.db.Store()
	folder, err := store.FolderGetByID(c.UserContext(), id)
	if err != nil {
		return sendStoreError(c, "Folder", err)
	}
	if folder == nil {
		return SendNotFoundError(c, "Folder")
	}

	videos, err := store.VideoGetByFolder(c.UserContext(), folder.ID)
	if err != nil {
		return sendStoreError(c, "Video", err)
	}
	return c.JSON(videos)
}
