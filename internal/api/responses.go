package api

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ErrorResponse represents an error response.
// RetryAfter is set on 429 only.
type ErrorResponse struct {
	Detail     string `json:"detail"`
	RetryAfter *int   `json:"retry_after,omitempty"`
}

// StatusResponse is returned by the health check.
type StatusResponse struct {
	Status string `json:"status"`
}

// UserResponse describes the authenticated user.
type UserResponse struct {
	ID uuid.UUID `json:"id"`
}

// UpdateTitleRequest is the request body for renaming a conversation.
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// CategoryRequest is the request body for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name"`
}

// SchemaResponse wraps a template's field schema.
type SchemaResponse struct {
	Schema json.RawMessage `json:"schema"`
}

// RenderRequest carries placeholder values for a template as a JSON object.
type RenderRequest struct {
	Values json.RawMessage `json:"values"`
}
