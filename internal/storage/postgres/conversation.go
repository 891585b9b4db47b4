package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casesimpli/assistant-backend/internal/storage"
	"github.com/casesimpli/assistant-backend/internal/storage/postgres/queries"
	"github.com/casesimpli/assistant-backend/internal/types"
)

// ConversationRepository handles database operations for chat histories.
type ConversationRepository struct {
	q *queries.Queries
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{
		q: queries.New(pool),
	}
}

// Create inserts a conversation owned by ownerID together with its initial messages.
func (r *ConversationRepository) Create(ctx context.Context, ownerID uuid.UUID, messages ...types.Message) (*types.Conversation, error) {
	if messages == nil {
		messages = []types.Message{}
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("encode messages: %w", err)
	}

	row, err := r.q.CreateChatHistory(ctx, &queries.CreateChatHistoryParams{
		ID:           uuidToPgtype(uuid.New()),
		UserID:       uuidToPgtype(ownerID),
		Messages:     payload,
		MessageCount: int32(len(messages)),
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conversationFromDB(row)
}

// Get returns a conversation if it exists and belongs to ownerID.
func (r *ConversationRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (*types.Conversation, error) {
	row, err := r.q.GetChatHistory(ctx, &queries.GetChatHistoryParams{
		ID:     uuidToPgtype(id),
		UserID: uuidToPgtype(ownerID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return conversationFromDB(row)
}

// AppendMessage appends msg only if the conversation still holds expectedVersion messages.
// The append and the version bump happen in one UPDATE.
func (r *ConversationRepository) AppendMessage(ctx context.Context, id uuid.UUID, expectedVersion int, msg types.Message) (*types.Conversation, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	row, err := r.q.AppendChatMessage(ctx, &queries.AppendChatMessageParams{
		ID:           uuidToPgtype(id),
		Message:      payload,
		MessageCount: int32(expectedVersion),
	})
	if err == nil {
		return conversationFromDB(row)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("append message: %w", err)
	}

	exists, err := r.q.ChatHistoryExists(ctx, uuidToPgtype(id))
	if err != nil {
		return nil, fmt.Errorf("check conversation: %w", err)
	}
	if !exists {
		return nil, storage.ErrNotFound
	}
	return nil, storage.ErrConflict
}

// SetTitle updates the title of a conversation owned by ownerID.
func (r *ConversationRepository) SetTitle(ctx context.Context, id, ownerID uuid.UUID, title string) error {
	rowsAffected, err := r.q.UpdateChatHistoryTitle(ctx, &queries.UpdateChatHistoryTitleParams{
		ID:     uuidToPgtype(id),
		UserID: uuidToPgtype(ownerID),
		Title:  stringPtrToPgtext(&title),
	})
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetTitleIfUnset writes title only when the conversation has none yet.
func (r *ConversationRepository) SetTitleIfUnset(ctx context.Context, id uuid.UUID, title string) (bool, error) {
	rowsAffected, err := r.q.SetChatHistoryTitleIfUnset(ctx, &queries.SetChatHistoryTitleIfUnsetParams{
		ID:    uuidToPgtype(id),
		Title: stringPtrToPgtext(&title),
	})
	if err != nil {
		return false, fmt.Errorf("set initial title: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListByOwner returns the owner's conversations, newest first.
func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Conversation, error) {
	rows, err := r.q.ListChatHistoriesByUser(ctx, uuidToPgtype(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversationsFromDB(rows)
}

// DeleteAllByOwner deletes the owner's conversations one at a time.
// A failure part way leaves the already deleted ones deleted.
func (r *ConversationRepository) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	ids, err := r.q.ListChatHistoryIDsByUser(ctx, uuidToPgtype(ownerID))
	if err != nil {
		return 0, fmt.Errorf("list conversation ids: %w", err)
	}

	deleted := 0
	for _, id := range ids {
		n, err := r.q.DeleteChatHistory(ctx, &queries.DeleteChatHistoryParams{
			ID:     id,
			UserID: uuidToPgtype(ownerID),
		})
		if err != nil {
			return deleted, fmt.Errorf("delete conversation %s: %w", pgtypeToUUID(id), err)
		}
		deleted += int(n)
	}
	return deleted, nil
}
