package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casesimpli/assistant-backend/internal/service/chat"
	"github.com/casesimpli/assistant-backend/internal/service/document"
	"github.com/casesimpli/assistant-backend/internal/storage"
)

// respondError maps service and storage errors to HTTP responses.
// resource names the entity in not-found and duplicate messages, e.g. "Template".
func (s *Server) respondError(c echo.Context, err error, resource string) error {
	var (
		rateErr       *chat.RateLimitError
		validationErr *document.ValidationError
		gatewayErr    *chat.GatewayError
	)
	switch {
	case errors.As(err, &rateErr):
		secs := rateErr.Seconds()
		c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{Detail: rateErr.Error(), RetryAfter: &secs})
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: validationErr.Error()})
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Detail: resource + " not found"})
	case errors.Is(err, storage.ErrDuplicate):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: resource + " name already exists"})
	case errors.Is(err, chat.ErrConcurrentUpdate):
		return c.JSON(http.StatusConflict, ErrorResponse{Detail: err.Error()})
	case errors.As(err, &gatewayErr):
		s.logger.WithError(err).Error("model request failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Error processing your request"})
	default:
		s.logger.WithError(err).WithField("path", c.Path()).Error("request failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "internal server error"})
	}
}

func badRequest(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: detail})
}
