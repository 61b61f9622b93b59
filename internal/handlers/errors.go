package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hollywoo/internal/database"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

// SendError sends an error response with the given status code
func SendError(c *fiber.Ctx, httpCode int, message string) error {
	return c.Status(httpCode).JSON(ErrorResponse{
		Error: message,
		Code:  httpCode,
	})
}

// SendNotFoundError sends a 404 for the named resource
func SendNotFoundError(c *fiber.Ctx, resource string) error {
	return c.Status(http.StatusNotFound).JSON(ErrorResponse{
		Error:   "Resource not found",
		Details: resource + " does not exist",
		Code:    http.StatusNotFound,
	})
}

// sendStoreError maps a store error to a response. Integrity violations are
// conflicts; everything else the client cannot fix.
func sendStoreError(c *fiber.Ctx, resource string, err error) error {
	switch {
	case database.IsIntegrity(err):
		return c.Status(http.StatusConflict).JSON(ErrorResponse{
			Error:   "Conflict",
			Details: err.Error(),
			Code:    http.StatusConflict,
		})
	case errors.Is(err, database.ErrNotFound):
		return SendNotFoundError(c, resource)
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
}

// paramID reads a positive integer route parameter
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
