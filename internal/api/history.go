package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ListHistory handles GET /chat/history/all.
func (s *Server) ListHistory(c echo.Context) error {
	convs, err := s.convRepo.ListByOwner(c.Request().Context(), GetUserID(c))
	if err != nil {
		return s.respondError(c, err, "Chat history")
	}
	if len(convs) == 0 {
		return c.JSON(http.StatusNotFound, ErrorResponse{Detail: "No chat history found for this user"})
	}
	return c.JSON(http.StatusOK, convs)
}

// GetHistory handles GET /chat/history/:id. Only the owner can read a conversation.
func (s *Server) GetHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid chat id")
	}

	conv, err := s.convRepo.Get(c.Request().Context(), id, GetUserID(c))
	if err != nil {
		return s.respondError(c, err, "Chat history")
	}
	return c.JSON(http.StatusOK, conv)
}

// UpdateHistoryTitle handles PATCH /chat/history/:id.
func (s *Server) UpdateHistoryTitle(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid chat id")
	}

	var req UpdateTitleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return badRequest(c, "title must not be empty")
	}

	ctx := c.Request().Context()
	userID := GetUserID(c)
	if err := s.convRepo.SetTitle(ctx, id, userID, title); err != nil {
		return s.respondError(c, err, "Chat history")
	}
	conv, err := s.convRepo.Get(ctx, id, userID)
	if err != nil {
		return s.respondError(c, err, "Chat history")
	}
	return c.JSON(http.StatusOK, conv)
}

// DeleteHistory handles DELETE /chat/history/all.
func (s *Server) DeleteHistory(c echo.Context) error {
	userID := GetUserID(c)
	n, err := s.convRepo.DeleteAllByOwner(c.Request().Context(), userID)
	if err != nil {
		return s.respondError(c, err, "Chat history")
	}
	if n == 0 {
		return c.JSON(http.StatusNotFound, ErrorResponse{Detail: "No Chat history found"})
	}
	s.logger.WithField("user_id", userID).WithField("deleted", n).Info("chat history deleted")
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /users/me.
func (s *Server) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, UserResponse{ID: GetUserID(c)})
}
