// Package memory provides in-process storage backends used for local runs and tests.
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

// ConversationStore keeps chat histories in a map guarded by a single mutex.
type ConversationStore struct {
	mu    sync.Mutex
	convs map[uuid.UUID]*types.Conversation
	now   func() time.Time
	last  time.Time
}

// NewConversationStore creates an empty ConversationStore.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		convs: make(map[uuid.UUID]*types.Conversation),
		now:   time.Now,
	}
}

// Create creates a conversation for ownerID holding the given initial messages.
func (s *ConversationStore) Create(_ context.Context, ownerID uuid.UUID, messages ...types.Message) (*types.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.tick()
	conv := &types.Conversation{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Messages:  append([]types.Message{}, messages...),
		Version:   len(messages),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.convs[conv.ID] = conv
	return conv.Clone(), nil
}

// Get returns a conversation if it exists and belongs to ownerID.
func (s *ConversationStore) Get(_ context.Context, id, ownerID uuid.UUID) (*types.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok || conv.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	return conv.Clone(), nil
}

// AppendMessage appends msg if the conversation still holds expectedVersion messages.
func (s *ConversationStore) AppendMessage(_ context.Context, id uuid.UUID, expectedVersion int, msg types.Message) (*types.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if conv.Version != expectedVersion {
		return nil, storage.ErrConflict
	}
	conv.Messages = append(conv.Messages, msg)
	conv.Version++
	conv.UpdatedAt = s.tick()
	return conv.Clone(), nil
}

// SetTitle sets the title of a conversation owned by ownerID.
func (s *ConversationStore) SetTitle(_ context.Context, id, ownerID uuid.UUID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok || conv.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	conv.Title = &title
	conv.UpdatedAt = s.tick()
	return nil
}

// SetTitleIfUnset sets the title only when none was set yet.
// It reports whether the title was written.
func (s *ConversationStore) SetTitleIfUnset(_ context.Context, id uuid.UUID, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if conv.Title != nil {
		return false, nil
	}
	conv.Title = &title
	conv.UpdatedAt = s.tick()
	return true, nil
}

// ListByOwner returns the owner's conversations, newest first.
func (s *ConversationStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]types.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.Conversation
	for _, conv := range s.convs {
		if conv.OwnerID == ownerID {
			out = append(out, *conv.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteAllByOwner removes every conversation of ownerID and returns how many were removed.
func (s *ConversationStore) DeleteAllByOwner(_ context.Context, ownerID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, conv := range s.convs {
		if conv.OwnerID == ownerID {
			delete(s.convs, id)
			n++
		}
	}
	return n, nil
}

// tick returns a strictly increasing timestamp so creation order is total.
func (s *ConversationStore) tick() time.Time {
	now := s.now()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}
