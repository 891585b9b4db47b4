package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/casesimpli/assistant-backend/internal/storage/postgres/queries"
	"github.com/casesimpli/assistant-backend/internal/types"
)

// UUID conversions

func uuidToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{
		Bytes: id,
		Valid: true,
	}
}

func uuidPtrToPgtype(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{Valid: false}
	}
	return uuidToPgtype(*id)
}

func pgtypeToUUID(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return id.Bytes
}

func pgtypeToUUIDPtr(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	u := uuid.UUID(id.Bytes)
	return &u
}

// Text conversions

func stringPtrToPgtext(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgtextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

// Timestamptz conversions

func pgtimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

// Model conversions

func conversationFromDB(c *queries.ChatHistory) (*types.Conversation, error) {
	if c == nil {
		return nil, nil
	}
	msgs := []types.Message{}
	if len(c.Messages) > 0 {
		if err := json.Unmarshal(c.Messages, &msgs); err != nil {
			return nil, fmt.Errorf("decode messages of %s: %w", pgtypeToUUID(c.ID), err)
		}
	}
	return &types.Conversation{
		ID:        pgtypeToUUID(c.ID),
		OwnerID:   pgtypeToUUID(c.UserID),
		Title:     pgtextToStringPtr(c.Title),
		Messages:  msgs,
		Version:   int(c.MessageCount),
		CreatedAt: pgtimestamptzToTime(c.CreatedAt),
		UpdatedAt: pgtimestamptzToTime(c.UpdatedAt),
	}, nil
}

func conversationsFromDB(cs []*queries.ChatHistory) ([]types.Conversation, error) {
	result := make([]types.Conversation, 0, len(cs))
	for _, c := range cs {
		conv, err := conversationFromDB(c)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			result = append(result, *conv)
		}
	}
	return result, nil
}

func categoryFromDB(c *queries.TemplateCategory) *types.TemplateCategory {
	if c == nil {
		return nil
	}
	return &types.TemplateCategory{
		ID:        pgtypeToUUID(c.ID),
		Name:      c.Name,
		CreatedAt: pgtimestamptzToTime(c.CreatedAt),
	}
}

func categoriesFromDB(cs []*queries.TemplateCategory) []types.TemplateCategory {
	result := make([]types.TemplateCategory, 0, len(cs))
	for _, c := range cs {
		if cat := categoryFromDB(c); cat != nil {
			result = append(result, *cat)
		}
	}
	return result
}

func templateFromDB(t *queries.DocumentTemplate) *types.DocumentTemplate {
	if t == nil {
		return nil
	}
	return &types.DocumentTemplate{
		ID:              pgtypeToUUID(t.ID),
		Name:            t.Name,
		Description:     pgtextToStringPtr(t.Description),
		Schema:          json.RawMessage(t.Schema),
		TemplateContent: t.TemplateContent,
		CategoryID:      pgtypeToUUIDPtr(t.CategoryID),
		CreatedAt:       pgtimestamptzToTime(t.CreatedAt),
		UpdatedAt:       pgtimestamptzToTime(t.UpdatedAt),
	}
}

func templatesFromDB(ts []*queries.DocumentTemplate) []types.DocumentTemplate {
	result := make([]types.DocumentTemplate, 0, len(ts))
	for _, t := range ts {
		if tpl := templateFromDB(t); tpl != nil {
			result = append(result, *tpl)
		}
	}
	return result
}
