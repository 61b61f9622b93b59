package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hollywoo/internal/database"
	"hollywoo/internal/models"
)

// TagHandler handles tag requests
type TagHandler struct {
	db *database.DB
}

// NewTagHandler creates a new tag handler
func NewTagHandler(db *database.DB) *TagHandler {
	return &TagHandler{db: db}
}

// GetTags handles GET /api/tags
func (h *TagHandler) GetTags(c *fiber.Ctx) error {
	tags, err := h.db.Store().TagGetAll(c.UserContext())
	if err != nil {
		return sendStoreError(c, "Tag", err)
	}
	return c.JSON(tags)
}

// CreateTag handles POST /api/tags. A duplicate name is a conflict.
func (h *TagHandler) CreateTag(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return SendError(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return SendError(c, http.StatusBadRequest, "name is required")
	}

	tag := &models.Tag{Name: req.Name}
	if err := h.db.Store().TagCreate(c.UserContext(), tag); err != nil {
		return sendStoreError(c, "Tag", err)
	}
	return c.Status(http.StatusCreated).JSON(tag)
}

// GetTagVideos handles GET /api/tags/:id/videos
func (h *TagHandler) GetTagVideos(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return SendError(c, http.StatusBadRequest, "Invalid tag ID")
	}

	store := h.db.Store()
	tag, err := store.TagGetByID(c.UserContext(), id)
	if err != nil {
		return sendStoreError(c, "Tag", err)
	}
	if tag == nil {
		return SendNotFoundError(c, "Tag")
	}

	videos, err := store.TagGetVideos(c.UserContext(), tag.ID)
	if err != nil {
		return sendStoreError(c, "Video", err)
	}
	return c.JSON(videos)
}
