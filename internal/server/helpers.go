package server

import (
	"errors"
	"strings"
	"unicode"

	"mingle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds the parsed page-based query parameters translated into
// limit/offset for the repositories.
type Pagination struct {
	Page   int
	Size   int
	Limit  int
	Offset int
}

const (
	defaultPageSize = 15
	maxPageSize     = 100
)

// parsePagination extracts the page and size query parameters. Pages are
// 1-based; size is clamped to maxPageSize and falls back to the default on
// junk input.
func parsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	size := c.QueryInt("size", defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return Pagination{
		Page:   page,
		Size:   size,
		Limit:  size,
		Offset: (page - 1) * size,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	// Split on camelCase boundary before the trailing "Id" suffix.
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// mapServiceError translates an AppError code into the HTTP status the error
// taxonomy prescribes. Unknown errors fall through to 500.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}

	switch appErr.Code {
	case "VALIDATION_ERROR", "INVALID_OPERATION":
		return fiber.StatusBadRequest
	case "UNAUTHENTICATED":
		return fiber.StatusUnauthorized
	case "PERMISSION_DENIED":
		return fiber.StatusForbidden
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// actingProfileID returns the profile ID resolved by RequireProfile.
func actingProfileID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("profileID").(uint); ok {
		return id
	}
	return 0
}
