package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"hollywoo/internal/database"
)

// PersonHandler handles person requests
type PersonHandler struct {
	db *database.DB
}

// NewPersonHandler creates a new person handler
func NewPersonHandler(db *database.DB) *PersonHandler {
	return &PersonHandler{db: db}
}

// GetPeople handles GET /api/people
func (h *PersonHandler) GetPeople(c *fiber.Ctx) error {
	people, err := h.db.Store().PersonGetAll(c.UserContext())
	if err != nil {
		return sendStoreError(c, "Person", err)
	}
	return c.JSON(people)
}

// GetPersonRoles handles GET /api/people/:id/roles
func (h *PersonHandler) GetPersonRoles(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return SendError(c, http.StatusBadRequest, "Invalid person ID")
	}

	store := h.db.Store()
	person, err := store.PersonGetByID(c.UserContext(), id)
	if err != nil {
		return sendStoreError(c, "Person", err)
	}
	if person == nil {
		return SendNotFoundError(c, "Person")
	}

	roles, err := store.PersonGetRoles(c.UserContext(), person.ID)
	if err != nil {
		return sendStoreError(c, "Video", err)
	}
	return c.JSON(roles)
}
