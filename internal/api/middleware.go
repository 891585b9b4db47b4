package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// AuthMiddleware validates JWT tokens and extracts the user id.
func (s *Server) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Not authenticated")
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "invalid authorization header")
		}

		userID, err := s.authService.ValidateToken(parts[1])
		if err != nil {
			s.logger.WithError(err).Debug("rejected token")
			return unauthorized(c, "Could not validate credentials")
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

// RequireChat answers 503 when the model backend is not configured.
func (s *Server) RequireChat(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.chatService == nil {
			return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Detail: "chat is not configured"})
		}
		return next(c)
	}
}

// GetUserID extracts the authenticated user id from the echo context.
func GetUserID(c echo.Context) uuid.UUID {
	id, _ := c.Get(userIDKey).(uuid.UUID)
	return id
}

func unauthorized(c echo.Context, detail string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: detail})
}
