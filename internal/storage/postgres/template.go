package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casesimpli/assistant-backend/internal/storage"
	"github.com/casesimpli/assistant-backend/internal/storage/postgres/queries"
	"github.com/casesimpli/assistant-backend/internal/types"
)

// TemplateRepository handles database operations for template categories and document templates.
type TemplateRepository struct {
	q *queries.Queries
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{q: queries.New(pool)}
}

func (r *TemplateRepository) CreateCategory(ctx context.Context, name string) (*types.TemplateCategory, error) {
	row, err := r.q.CreateTemplateCategory(ctx, &queries.CreateTemplateCategoryParams{
		ID:   uuidToPgtype(uuid.New()),
		Name: name,
	})
	if err != nil {
		return nil, mapWriteError("create category", err)
	}
	return categoryFromDB(row), nil
}

func (r *TemplateRepository) GetCategory(ctx context.Context, id uuid.UUID) (*types.TemplateCategory, error) {
	row, err := r.q.GetTemplateCategory(ctx, uuidToPgtype(id))
	if err != nil {
		return nil, mapReadError("get category", err)
	}
	return categoryFromDB(row), nil
}

func (r *TemplateRepository) ListCategories(ctx context.Context, skip, limit int) ([]types.TemplateCategory, error) {
	rows, err := r.q.ListTemplateCategories(ctx, &queries.ListTemplateCategoriesParams{
		Limit:  pageLimit(limit),
		Offset: pageOffset(skip),
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categoriesFromDB(rows), nil
}

func (r *TemplateRepository) RenameCategory(ctx context.Context, id uuid.UUID, name string) (*types.TemplateCategory, error) {
	row, err := r.q.RenameTemplateCategory(ctx, &queries.RenameTemplateCategoryParams{
		ID:   uuidToPgtype(id),
		Name: name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, mapWriteError("rename category", err)
	}
	return categoryFromDB(row), nil
}

// DeleteCategory deletes a category; its templates are detached by the foreign key.
func (r *TemplateRepository) DeleteCategory(ctx context.Context, id uuid.UUID) (*types.TemplateCategory, error) {
	row, err := r.q.DeleteTemplateCategory(ctx, uuidToPgtype(id))
	if err != nil {
		return nil, mapReadError("delete category", err)
	}
	return categoryFromDB(row), nil
}

func (r *TemplateRepository) CreateTemplate(ctx context.Context, t *types.DocumentTemplate) error {
	row, err := r.q.CreateDocumentTemplate(ctx, &queries.CreateDocumentTemplateParams{
		ID:              uuidToPgtype(uuid.New()),
		Name:            t.Name,
		Description:     stringPtrToPgtext(t.Description),
		Schema:          t.Schema,
		TemplateContent: t.TemplateContent,
		CategoryID:      uuidPtrToPgtype(t.CategoryID),
	})
	if err != nil {
		return mapWriteError("create template", err)
	}
	*t = *templateFromDB(row)
	return nil
}

func (r *TemplateRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*types.DocumentTemplate, error) {
	row, err := r.q.GetDocumentTemplate(ctx, uuidToPgtype(id))
	if err != nil {
		return nil, mapReadError("get template", err)
	}
	return templateFromDB(row), nil
}

func (r *TemplateRepository) GetTemplateByName(ctx context.Context, name string) (*types.DocumentTemplate, error) {
	row, err := r.q.GetDocumentTemplateByName(ctx, name)
	if err != nil {
		return nil, mapReadError("get template by name", err)
	}
	return templateFromDB(row), nil
}

func (r *TemplateRepository) ListTemplates(ctx context.Context, skip, limit int) ([]types.DocumentTemplate, error) {
	rows, err := r.q.ListDocumentTemplates(ctx, &queries.ListDocumentTemplatesParams{
		Limit:  pageLimit(limit),
		Offset: pageOffset(skip),
	})
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templatesFromDB(rows), nil
}

func (r *TemplateRepository) ListTemplatesByCategory(ctx context.Context, categoryID uuid.UUID, skip, limit int) ([]types.DocumentTemplate, error) {
	rows, err := r.q.ListDocumentTemplatesByCategory(ctx, &queries.ListDocumentTemplatesByCategoryParams{
		CategoryID: uuidToPgtype(categoryID),
		Limit:      pageLimit(limit),
		Offset:     pageOffset(skip),
	})
	if err != nil {
		return nil, fmt.Errorf("list templates by category: %w", err)
	}
	return templatesFromDB(rows), nil
}

func (r *TemplateRepository) UpdateTemplate(ctx context.Context, id uuid.UUID, patch types.DocumentTemplatePatch) (*types.DocumentTemplate, error) {
	params := &queries.UpdateDocumentTemplateParams{
		ID:              uuidToPgtype(id),
		Name:            stringPtrToPgtext(patch.Name),
		Description:     stringPtrToPgtext(patch.Description),
		Schema:          patch.Schema,
		TemplateContent: stringPtrToPgtext(patch.TemplateContent),
		CategoryID:      uuidPtrToPgtype(patch.CategoryID),
	}
	row, err := r.q.UpdateDocumentTemplate(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, mapWriteError("update template", err)
	}
	return templateFromDB(row), nil
}

func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) (*types.DocumentTemplate, error) {
	row, err := r.q.DeleteDocumentTemplate(ctx, uuidToPgtype(id))
	if err != nil {
		return nil, mapReadError("delete template", err)
	}
	return templateFromDB(row), nil
}

func mapReadError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapWriteError translates constraint violations into storage errors.
// A foreign key violation can only come from an unknown category.
func mapWriteError(op string, err error) error {
	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicate)
	case pgForeignKeyViolation:
		return fmt.Errorf("%s: category: %w", op, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}


// pageLimit treats a non-positive limit as unbounded, matching the memory store.
func pageLimit(limit int) int32 {
	if limit <= 0 || limit > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(limit)
}

func pageOffset(skip int) int32 {
	if skip < 0 {
		return 0
	}
	if skip > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(skip)
}
