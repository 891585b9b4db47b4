package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casesimpli/assistant-backend/internal/service/document"
	"github.com/casesimpli/assistant-backend/internal/types"
)

// CreateCategory handles POST /category/create.
func (s *Server) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	cat, err := s.documents.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return s.respondError(c, err, "Category")
	}
	return c.JSON(http.StatusOK, cat)
}

// ListCategories handles GET /category/all.
func (s *Server) ListCategories(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	cats, err := s.documents.ListCategories(c.Request().Context(), page)
	if err != nil {
		return s.respondError(c, err, "Category")
	}
	return c.JSON(http.StatusOK, cats)
}

// CategoryInfo handles GET /category/info.
func (s *Server) CategoryInfo(c echo.Context) error {
	cats, err := s.documents.CategoryInfo(c.Request().Context())
	if err != nil {
		return s.respondError(c, err, "Category")
	}
	return c.JSON(http.StatusOK, cats)
}

func (s *Server) GetCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}
	cat, err := s.documents.GetCategory(c.Request().Context(), id)
	if err != nil {
		return s.respondError(c, err, "Category")
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) UpdateCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	cat, err := s.documents.RenameCategory(c.Request().Context(), id, req.Name)
	if err != nil {
		return s.respondError(c, err, "Category")
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) DeleteCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}
	cat, err := s.documents.DeleteCategory(c.Request().Context(), id)
	if err != nil {
		return s.respondError(c, err, "Category")
	}
	return c.JSON(http.StatusOK, cat)
}

// ListCategoryTemplates handles GET /template/categories/:id/templates.
func (s *Server) ListCategoryTemplates(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}
	page, err := parsePage(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ts, err := s.documents.TemplatesByCategory(c.Request().Context(), id, page)
	if err != nil {
		return s.respondError(c, err, "Category")
	}
	return c.JSON(http.StatusOK, ts)
}

// CreateTemplate handles POST /template/templates.
func (s *Server) CreateTemplate(c echo.Context) error {
	var req document.CreateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := s.documents.CreateTemplate(c.Request().Context(), req)
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) ListTemplates(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ts, err := s.documents.ListTemplates(c.Request().Context(), page)
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	return c.JSON(http.StatusOK, ts)
}

func (s *Server) GetTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}
	t, err := s.documents.GetTemplate(c.Request().Context(), id)
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) GetTemplateByName(c echo.Context) error {
	t, err := s.documents.GetTemplateByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateTemplate handles PUT /template/templates/:id as a partial update.
func (s *Server) UpdateTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}
	var patch types.DocumentTemplatePatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := s.documents.UpdateTemplate(c.Request().Context(), id, patch)
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) DeleteTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}
	t, err := s.documents.DeleteTemplate(c.Request().Context(), id)
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) GetTemplateSchema(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}
	schema, err := s.documents.Schema(c.Request().Context(), id)
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	return c.JSON(http.StatusOK, SchemaResponse{Schema: schema})
}

// RenderTemplate handles POST /template/templates/:id/render.
func (s *Server) RenderTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}
	var req RenderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	values, err := document.DecodeValues(req.Values)
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	out, err := s.documents.RenderTemplate(c.Request().Context(), id, values)
	if err != nil {
		return s.respondError(c, err, "Template")
	}
	return c.JSON(http.StatusOK, out)
}

// parsePage reads the skip and limit query parameters.
func parsePage(c echo.Context) (document.Page, error) {
	var p document.Page
	var err error
	if v := c.QueryParam("skip"); v != "" {
		if p.Skip, err = strconv.Atoi(v); err != nil || p.Skip < 0 {
			return p, errInvalidQuery("skip")
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if p.Limit, err = strconv.Atoi(v); err != nil || p.Limit < 1 {
			return p, errInvalidQuery("limit")
		}
	}
	return p.Normalize(), nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string {
	return "invalid query parameter " + string(e)
}
