package document

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casesimpli/assistant-backend/internal/storage"
	"github.com/casesimpli/assistant-backend/internal/storage/memory"
	"github.com/casesimpli/assistant-backend/internal/types"
)

func newTestService() *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(memory.NewTemplateStore(), logger)
}

func strPtr(s string) *string { return &s }

func TestCreateTemplateValidation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		req   CreateTemplateRequest
		field string
	}{
		{name: "blank name", req: CreateTemplateRequest{Name: " ", Schema: json.RawMessage(`{}`), TemplateContent: "x"}, field: "name"},
		{name: "missing schema", req: CreateTemplateRequest{Name: "Lease", TemplateContent: "x"}, field: "schema"},
		{name: "schema is an array", req: CreateTemplateRequest{Name: "Lease", Schema: json.RawMessage(`[1,2]`), TemplateContent: "x"}, field: "schema"},
		{name: "schema is malformed", req: CreateTemplateRequest{Name: "Lease", Schema: json.RawMessage(`{"a":`), TemplateContent: "x"}, field: "schema"},
		{name: "empty content", req: CreateTemplateRequest{Name: "Lease", Schema: json.RawMessage(`{}`), TemplateContent: "  "}, field: "template_content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateTemplate(ctx, tt.req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	all, err := s.ListTemplates(ctx, Page{})
	require.NoError(t, err)
	assert.Empty(t, all, "rejected input writes nothing")
}

func TestTemplateLifecycle(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, "  Tenancy ")
	require.NoError(t, err)
	assert.Equal(t, "Tenancy", cat.Name)

	_, err = s.CreateCategory(ctx, "Tenancy")
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	tpl, err := s.CreateTemplate(ctx, CreateTemplateRequest{
		Name:            "Lease Agreement",
		Description:     strPtr("Residential lease"),
		Schema:          json.RawMessage(`{ "tenant": {"type": "string"} }`),
		TemplateContent: "Tenant: {{tenant}}",
		CategoryID:      &cat.ID,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tenant":{"type":"string"}}`, string(tpl.Schema))

	_, err = s.CreateTemplate(ctx, CreateTemplateRequest{Name: "Lease Agreement", Schema: json.RawMessage(`{}`), TemplateContent: "x"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	_, err = s.CreateTemplate(ctx, CreateTemplateRequest{Name: "Orphan", Schema: json.RawMessage(`{}`), TemplateContent: "x", CategoryID: ptr(uuid.New())})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	byName, err := s.GetTemplateByName(ctx, "Lease Agreement")
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, byName.ID)

	schema, err := s.Schema(ctx, tpl.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tenant":{"type":"string"}}`, string(schema))

	rendered, err := s.RenderTemplate(ctx, tpl.ID, map[string]any{"tenant": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Tenant: Ada", rendered.Content)

	got, err := s.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, got.Templates, 1)
	assert.Equal(t, tpl.ID, got.Templates[0].ID)

	updated, err := s.UpdateTemplate(ctx, tpl.ID, types.DocumentTemplatePatch{TemplateContent: strPtr("Lessee: {{tenant}}")})
	require.NoError(t, err)
	assert.Equal(t, "Lessee: {{tenant}}", updated.TemplateContent)
	assert.Equal(t, "Lease Agreement", updated.Name)

	_, err = s.UpdateTemplate(ctx, tpl.ID, types.DocumentTemplatePatch{Schema: json.RawMessage(`"nope"`)})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = s.DeleteCategory(ctx, cat.ID)
	require.NoError(t, err)
	left, err := s.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Nil(t, left.CategoryID)

	_, err = s.TemplatesByCategory(ctx, cat.ID, Page{})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.DeleteTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	_, err = s.GetTemplate(ctx, tpl.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListCategoriesIncludesTemplates(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	a, err := s.CreateCategory(ctx, "Affidavits")
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, "Contracts")
	require.NoError(t, err)
	_, err = s.CreateTemplate(ctx, CreateTemplateRequest{Name: "Change of Name", Schema: json.RawMessage(`{}`), TemplateContent: "I, {{name}}", CategoryID: &a.ID})
	require.NoError(t, err)

	cats, err := s.ListCategories(ctx, Page{})
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Affidavits", cats[0].Name)
	assert.Len(t, cats[0].Templates, 1)
	assert.Empty(t, cats[1].Templates)

	info, err := s.CategoryInfo(ctx)
	require.NoError(t, err)
	assert.Len(t, info, 2)

	paged, err := s.ListCategories(ctx, Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "Contracts", paged[0].Name)
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Skip: 0, Limit: DefaultLimit}, Page{Skip: -3}.Normalize())
	assert.Equal(t, Page{Skip: 5, Limit: MaxLimit}, Page{Skip: 5, Limit: 1000}.Normalize())
	assert.Equal(t, Page{Skip: 2, Limit: 7}, Page{Skip: 2, Limit: 7}.Normalize())
}

func ptr[T any](v T) *T { return &v }
