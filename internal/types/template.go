package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TemplateCategory groups document templates.
type TemplateCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TemplateCategoryWithTemplates is a category including its templates.
type TemplateCategoryWithTemplates struct {
	TemplateCategory
	Templates []DocumentTemplate `json:"templates"`
}

// DocumentTemplate is a document skeleton with a JSON field schema.
// TemplateContent holds either plain text with {{field}} placeholders or an SFDT document.
type DocumentTemplate struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Schema          json.RawMessage `json:"schema"`
	TemplateContent string          `json:"template_content"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DocumentTemplatePatch carries the fields of a partial template update.
// Nil fields are left unchanged.
type DocumentTemplatePatch struct {
	Name            *string         `json:"name"`
	Description     *string         `json:"description"`
	Schema          json.RawMessage `json:"schema"`
	TemplateContent *string         `json:"template_content"`
	CategoryID      *uuid.UUID      `json:"category_id"`
}
