package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/casesimpli/assistant-backend/internal/storage"
	"github.com/casesimpli/assistant-backend/internal/types"
)

// TemplateStore keeps template categories and document templates in memory.
type TemplateStore struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*types.TemplateCategory
	templates  map[uuid.UUID]*types.DocumentTemplate
}

// NewTemplateStore creates an empty TemplateStore.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		categories: make(map[uuid.UUID]*types.TemplateCategory),
		templates:  make(map[uuid.UUID]*types.DocumentTemplate),
	}
}

func (s *TemplateStore) CreateCategory(_ context.Context, name string) (*types.TemplateCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Name == name {
			return nil, storage.ErrDuplicate
		}
	}
	c := &types.TemplateCategory{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	s.categories[c.ID] = c
	out := *c
	return &out, nil
}

func (s *TemplateStore) GetCategory(_ context.Context, id uuid.UUID) (*types.TemplateCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *TemplateStore) ListCategories(_ context.Context, skip, limit int) ([]types.TemplateCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.TemplateCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, skip, limit), nil
}

func (s *TemplateStore) RenameCategory(_ context.Context, id uuid.UUID, name string) (*types.TemplateCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for _, other := range s.categories {
		if other.ID != id && other.Name == name {
			return nil, storage.ErrDuplicate
		}
	}
	c.Name = name
	out := *c
	return &out, nil
}

// DeleteCategory removes a category and detaches its templates.
func (s *TemplateStore) DeleteCategory(_ context.Context, id uuid.UUID) (*types.TemplateCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.categories, id)
	for _, t := range s.templates {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
		}
	}
	return c, nil
}

func (s *TemplateStore) CreateTemplate(_ context.Context, t *types.DocumentTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTemplateLocked(uuid.Nil, t.Name, t.CategoryID); err != nil {
		return err
	}
	now := time.Now()
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	stored := *t
	s.templates[t.ID] = &stored
	return nil
}

func (s *TemplateStore) GetTemplate(_ context.Context, id uuid.UUID) (*types.DocumentTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (s *TemplateStore) GetTemplateByName(_ context.Context, name string) (*types.DocumentTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.templates {
		if t.Name == name {
			out := *t
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *TemplateStore) ListTemplates(_ context.Context, skip, limit int) ([]types.DocumentTemplate, error) {
	return s.listTemplates(func(*types.DocumentTemplate) bool { return true }, skip, limit), nil
}

func (s *TemplateStore) ListTemplatesByCategory(_ context.Context, categoryID uuid.UUID, skip, limit int) ([]types.DocumentTemplate, error) {
	return s.listTemplates(func(t *types.DocumentTemplate) bool {
		return t.CategoryID != nil && *t.CategoryID == categoryID
	}, skip, limit), nil
}

func (s *TemplateStore) UpdateTemplate(_ context.Context, id uuid.UUID, patch types.DocumentTemplatePatch) (*types.DocumentTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	updated := *t
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = patch.Description
	}
	if patch.Schema != nil {
		updated.Schema = patch.Schema
	}
	if patch.TemplateContent != nil {
		updated.TemplateContent = *patch.TemplateContent
	}
	if patch.CategoryID != nil {
		updated.CategoryID = patch.CategoryID
	}
	if err := s.checkTemplateLocked(id, updated.Name, updated.CategoryID); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now()
	s.templates[id] = &updated
	out := updated
	return &out, nil
}

func (s *TemplateStore) DeleteTemplate(_ context.Context, id uuid.UUID) (*types.DocumentTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.templates, id)
	return t, nil
}

func (s *TemplateStore) checkTemplateLocked(self uuid.UUID, name string, categoryID *uuid.UUID) error {
	for _, other := range s.templates {
		if other.ID != self && other.Name == name {
			return storage.ErrDuplicate
		}
	}
	if categoryID != nil {
		if _, ok := s.categories[*categoryID]; !ok {
			return storage.ErrNotFound
		}
	}
	return nil
}

func (s *TemplateStore) listTemplates(keep func(*types.DocumentTemplate) bool, skip, limit int) []types.DocumentTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.DocumentTemplate, 0)
	for _, t := range s.templates {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, skip, limit)
}

func page[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return items[:0]
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
