package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"hollywoo/internal/database"
	"hollywoo/internal/models"
)

// VideoHandler handles video requests
type VideoHandler struct {
	db *database.DB
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(db *database.DB) *VideoHandler {
	return &VideoHandler{db: db}
}

// lookup resolves the :id parameter to a video, sending the error response
// itself when it returns nil.
func (h *VideoHandler) lookup(c *fiber.Ctx) (*models.Video, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, SendError(c, http.StatusBadRequest, "Invalid video ID")
	}
	v, err := h.db.Store().VideoGetByID(c.UserContext(), id)
	if err != nil {
		return nil, sendStoreError(c, "Video", err)
	}
	if v == nil {
		return nil, SendNotFoundError(c, "Video")
	}
	return v, nil
}

// GetVideo handles GET /api/videos/:id
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	v, err := h.lookup(c)
	if v == nil {
		return err
	}
	return c.JSON(v)
}

// GetVideoTags handles GET /api/videos/:id/tags. Every tag is listed with
// whether it is attached to the video.
func (h *VideoHandler) GetVideoTags(c *fiber.Ctx) error {
	v, err := h.lookup(c)
	if v == nil {
		return err
	}
	flags, err := h.db.Store().TagGetAllForVideo(c.UserContext(), v.ID)
	if err != nil {
		return sendStoreError(c, "Tag", err)
	}
	return c.JSON(flags)
}

// AddVideoTag handles POST /api/videos/:id/tags/:tagID
func (h *VideoHandler) AddVideoTag(c *fiber.Ctx) error {
	v, tag, err := h.videoAndTag(c)
	if v == nil || tag == nil {
		return err
	}
	if err := h.db.Store().TagLinkCreate(c.UserContext(), tag.ID, v.ID); err != nil {
		return sendStoreError(c, "Tag", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// RemoveVideoTag handles DELETE /api/videos/:id/tags/:tagID. Removing a tag
// that is not attached succeeds.
func (h *VideoHandler) RemoveVideoTag(c *fiber.Ctx) error {
	v, tag, err := h.videoAndTag(c)
	if v == nil || tag == nil {
		return err
	}
	if err := h.db.Store().TagLinkDelete(c.UserContext(), tag.ID, v.ID); err != nil {
		return sendStoreError(c, "Tag", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *VideoHandler) videoAndTag(c *fiber.Ctx) (*models.Video, *models.Tag, error) {
	v, err := h.lookup(c)
	if v == nil {
		return nil, nil, err
	}
	tagID, ok := paramID(c, "tagID")
	if !ok {
		return nil, nil, SendError(c, http.StatusBadRequest, "Invalid tag ID")
	}
	tag, err := h.db.Store().TagGetByID(c.UserContext(), tagID)
	if err != nil {
		return nil, nil, sendStoreError(c, "Tag", err)
	}
	if tag == nil {
		return nil, nil, SendNotFoundError(c, "Tag")
	}
	return v, tag, nil
}

// GetVideoPeople handles GET /api/videos/:id/people
func (h *VideoHandler) GetVideoPeople(c *fiber.Ctx) error {
	v, err := h.lookup(c)
	if v == nil {
		return err
	}
	credits, err := h.db.Store().VideoGetPeople(c.UserContext(), v.ID)
	if err != nil {
		return sendStoreError(c, "Person", err)
	}
	return c.JSON(credits)
}
