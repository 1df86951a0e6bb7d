package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, data_not_ready, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID := RequestIDFromCtx(c.UserContext())
	if reqID == "" {
		reqID, _ = c.Locals("requestid").(string)
	}
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errDomain maps a domain error to its HTTP status.
func errDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrDataNotReady):
		return newError(c, 503, "data_not_ready", domain.NoticeFor(err))
	case errors.Is(err, domain.ErrBoundaryNotReady):
		return newError(c, 503, "boundary_not_ready", domain.NoticeFor(err))
	case errors.Is(err, domain.ErrNotFound):
		return newError(c, 404, "not_found", domain.NoticeFor(err))
	case errors.Is(err, domain.ErrNetworkFailure):
		return newError(c, 502, "network_failure", domain.NoticeFor(err))
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrSuggestionMissing):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrUnknownBaseLayer),
		errors.Is(err, domain.ErrUnknownPanel):
		return errBadRequest(c, err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("unhandled error", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	}
}
