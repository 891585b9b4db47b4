// Package document manages the legal document template catalog.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casesimpli/assistant-backend/internal/types"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// TemplateStore persists categories and templates.
// A non-positive limit lists everything.
type TemplateStore interface {
	CreateCategory(ctx context.Context, name string) (*types.TemplateCategory, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*types.TemplateCategory, error)
	ListCategories(ctx context.Context, skip, limit int) ([]types.TemplateCategory, error)
	RenameCategory(ctx context.Context, id uuid.UUID, name string) (*types.TemplateCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (*types.TemplateCategory, error)

	CreateTemplate(ctx context.Context, t *types.DocumentTemplate) error
	GetTemplate(ctx context.Context, id uuid.UUID) (*types.DocumentTemplate, error)
	GetTemplateByName(ctx context.Context, name string) (*types.DocumentTemplate, error)
	ListTemplates(ctx context.Context, skip, limit int) ([]types.DocumentTemplate, error)
	ListTemplatesByCategory(ctx context.Context, categoryID uuid.UUID, skip, limit int) ([]types.DocumentTemplate, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, patch types.DocumentTemplatePatch) (*types.DocumentTemplate, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) (*types.DocumentTemplate, error)
}

// CreateTemplateRequest is the request body for creating a template.
type CreateTemplateRequest struct {
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Schema          json.RawMessage `json:"schema"`
	TemplateContent string          `json:"template_content"`
	CategoryID      *uuid.UUID      `json:"category_id"`
}

// Page is a skip/limit window over a listing.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps the window to [0, MaxLimit], defaulting an unset limit.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Service handles template catalog operations.
type Service struct {
	store  TemplateStore
	logger *logrus.Logger
}

// NewService creates a new Service.
func NewService(store TemplateStore, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*types.TemplateCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	c, err := s.store.CreateCategory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"category_id": c.ID, "name": c.Name}).Info("category created")
	return c, nil
}

// ListCategories returns a page of categories with all of their templates.
func (s *Service) ListCategories(ctx context.Context, p Page) ([]types.TemplateCategoryWithTemplates, error) {
	p = p.Normalize()
	cats, err := s.store.ListCategories(ctx, p.Skip, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]types.TemplateCategoryWithTemplates, 0, len(cats))
	for _, c := range cats {
		withTemplates, err := s.withTemplates(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, *withTemplates)
	}
	return out, nil
}

// CategoryInfo lists every category without templates.
func (s *Service) CategoryInfo(ctx context.Context) ([]types.TemplateCategory, error) {
	cats, err := s.store.ListCategories(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*types.TemplateCategoryWithTemplates, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return s.withTemplates(ctx, *c)
}

func (s *Service) RenameCategory(ctx context.Context, id uuid.UUID, name string) (*types.TemplateCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	c, err := s.store.RenameCategory(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Its templates stay, uncategorised.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) (*types.TemplateCategory, error) {
	c, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	s.logger.WithField("category_id", id).Info("category deleted")
	return c, nil
}

// TemplatesByCategory lists one category's templates; the category must exist.
func (s *Service) TemplatesByCategory(ctx context.Context, categoryID uuid.UUID, p Page) ([]types.DocumentTemplate, error) {
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	p = p.Normalize()
	ts, err := s.store.ListTemplatesByCategory(ctx, categoryID, p.Skip, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return ts, nil
}

func (s *Service) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*types.DocumentTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	schema, err := validSchema(req.Schema)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TemplateContent) == "" {
		return nil, invalid("template_content", "must not be empty")
	}

	t := &types.DocumentTemplate{
		Name:            name,
		Description:     req.Description,
		Schema:          schema,
		TemplateContent: req.TemplateContent,
		CategoryID:      req.CategoryID,
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"template_id": t.ID, "name": t.Name}).Info("template created")
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context, p Page) ([]types.DocumentTemplate, error) {
	p = p.Normalize()
	ts, err := s.store.ListTemplates(ctx, p.Skip, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return ts, nil
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*types.DocumentTemplate, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *Service) GetTemplateByName(ctx context.Context, name string) (*types.DocumentTemplate, error) {
	t, err := s.store.GetTemplateByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get template by name: %w", err)
	}
	return t, nil
}

// UpdateTemplate applies the non-nil fields of patch.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, patch types.DocumentTemplatePatch) (*types.DocumentTemplate, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name", "must not be empty")
		}
		patch.Name = &name
	}
	if patch.Schema != nil {
		schema, err := validSchema(patch.Schema)
		if err != nil {
			return nil, err
		}
		patch.Schema = schema
	}
	if patch.TemplateContent != nil && strings.TrimSpace(*patch.TemplateContent) == "" {
		return nil, invalid("template_content", "must not be empty")
	}

	t, err := s.store.UpdateTemplate(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return t, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) (*types.DocumentTemplate, error) {
	t, err := s.store.DeleteTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete template: %w", err)
	}
	s.logger.WithField("template_id", id).Info("template deleted")
	return t, nil
}

// Schema returns the field schema of a template.
func (s *Service) Schema(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Schema, nil
}

// RenderTemplate fills a template's placeholders from values.
func (s *Service) RenderTemplate(ctx context.Context, id uuid.UUID, values map[string]any) (*Rendered, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	r := Render(t.TemplateContent, values)
	if len(r.Missing) > 0 {
		s.logger.WithFields(logrus.Fields{
			"template_id": id,
			"missing":     r.Missing,
		}).Debug("rendered with unfilled placeholders")
	}
	return &r, nil
}

func (s *Service) withTemplates(ctx context.Context, c types.TemplateCategory) (*types.TemplateCategoryWithTemplates, error) {
	ts, err := s.store.ListTemplatesByCategory(ctx, c.ID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list templates of category %s: %w", c.ID, err)
	}
	return &types.TemplateCategoryWithTemplates{TemplateCategory: c, Templates: ts}, nil
}

// validSchema requires a JSON object and returns it compacted.
func validSchema(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, invalid("schema", "must be a JSON object")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, invalid("schema", "must be a JSON object")
	}
	return buf.Bytes(), nil
}
