package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/casesimpli/assistant-backend/internal/service"
	"github.com/casesimpli/assistant-backend/internal/service/chat"
	"github.com/casesimpli/assistant-backend/internal/service/document"
)

// Server holds API dependencies.
// chatService is nil when the model backend is not configured; chat routes then answer 503.
type Server struct {
	authService *service.AuthService
	convRepo    chat.ConversationStore
	chatService *chat.Service
	documents   *document.Service
	logger      *logrus.Logger
}

// NewServer creates a new API server.
func NewServer(
	authService *service.AuthService,
	convRepo chat.ConversationStore,
	chatService *chat.Service,
	documents *document.Service,
	logger *logrus.Logger,
) *Server {
	return &Server{
		authService: authService,
		convRepo:    convRepo,
		chatService: chatService,
		documents:   documents,
		logger:      logger,
	}
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	// Health check endpoint (public)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
	})

	chatGroup := e.Group("/chat", s.AuthMiddleware)
	chatGroup.POST("", s.Chat, s.RequireChat)
	chatGroup.POST("/", s.Chat, s.RequireChat)
	chatGroup.POST("/complete", s.Complete, s.RequireChat)
	chatGroup.GET("/history/all", s.ListHistory)
	chatGroup.DELETE("/history/all", s.DeleteHistory)
	chatGroup.GET("/history/:id", s.GetHistory)
	chatGroup.PATCH("/history/:id", s.UpdateHistoryTitle)

	users := e.Group("/users", s.AuthMiddleware)
	users.GET("/me", s.Me)

	category := e.Group("/category", s.AuthMiddleware)
	category.POST("/create", s.CreateCategory)
	category.GET("/all", s.ListCategories)
	category.GET("/info", s.CategoryInfo)
	category.GET("/:id", s.GetCategory)
	category.PUT("/:id", s.UpdateCategory)
	category.DELETE("/:id", s.DeleteCategory)

	template := e.Group("/template", s.AuthMiddleware)
	template.POST("/templates", s.CreateTemplate)
	template.GET("/templates", s.ListTemplates)
	template.GET("/templates/by_name/:name", s.GetTemplateByName)
	template.GET("/templates/:id", s.GetTemplate)
	template.PUT("/templates/:id", s.UpdateTemplate)
	template.DELETE("/templates/:id", s.DeleteTemplate)
	template.GET("/templates/:id/schema", s.GetTemplateSchema)
	template.POST("/templates/:id/render", s.RenderTemplate)
	template.GET("/categories/:id/templates", s.ListCategoryTemplates)
}
