package server

import (
	"errors"
	"strconv"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts and validates the :id route parameter. Anything that is
// not a positive integer is a malformed ID, not a missing post.
func parseID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewMalformedIDError(raw)
	}
	return uint(id), nil
}

// parseListQuery reads listing parameters from the query string. Numeric
// parameters that fail to parse are rejected; out-of-range values are left
// for the service to clamp.
func parseListQuery(c *fiber.Ctx) (service.ListPostsInput, error) {
	input := service.ListPostsInput{
		Page:   1,
		Limit:  service.DefaultPageSize,
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return input, models.NewValidationError("page must be an integer")
		}
		input.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return input, models.NewValidationError("limit must be an integer")
		}
		input.Limit = limit
	}
	return input, nil
}

// respondServiceError maps a service error onto the wire. Storage failures
// are logged with their cause and surfaced as an opaque 500.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeValidation, models.CodeMalformedID:
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case models.CodeNotFound:
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
	}

	middleware.Logger.ErrorContext(c.UserContext(), "storage operation failed",
		"error", err,
		"path", c.Path(),
		"method", c.Method(),
	)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewStorageError())
}
