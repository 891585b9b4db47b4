// Package chat runs chat turns: admission, conversation resolution, model streaming and
// persistence of both sides of the exchange.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casesimpli/assistant-backend/internal/ai"
	"github.com/casesimpli/assistant-backend/internal/config"
	"github.com/casesimpli/assistant-backend/internal/ratelimit"
	"github.com/casesimpli/assistant-backend/internal/storage"
	"github.com/casesimpli/assistant-backend/internal/types"
)

const (
	defaultTitleTimeout   = 20 * time.Second
	defaultPersistTimeout = 10 * time.Second
)

// ConversationStore persists conversations. AppendMessage is conditional on the message count.
type ConversationStore interface {
	Create(ctx context.Context, ownerID uuid.UUID, messages ...types.Message) (*types.Conversation, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*types.Conversation, error)
	AppendMessage(ctx context.Context, id uuid.UUID, expectedVersion int, msg types.Message) (*types.Conversation, error)
	SetTitle(ctx context.Context, id, ownerID uuid.UUID, title string) error
	SetTitleIfUnset(ctx context.Context, id uuid.UUID, title string) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]types.Conversation, error)
	DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
}

// Service handles chat turns.
type Service struct {
	limiter        ratelimit.Limiter
	store          ConversationStore
	gateway        ai.Gateway
	logger         *logrus.Logger
	systemPrompt   string
	titleTimeout   time.Duration
	persistTimeout time.Duration

	titles sync.WaitGroup
}

// NewService creates a new Service.
func NewService(
	limiter ratelimit.Limiter,
	store ConversationStore,
	gateway ai.Gateway,
	logger *logrus.Logger,
	cfg config.ChatConfig,
) *Service {
	s := &Service{
		limiter:        limiter,
		store:          store,
		gateway:        gateway,
		logger:         logger,
		systemPrompt:   SystemPrompt,
		titleTimeout:   cfg.TitleTimeout,
		persistTimeout: cfg.PersistTimeout,
	}
	if s.titleTimeout <= 0 {
		s.titleTimeout = defaultTitleTimeout
	}
	if s.persistTimeout <= 0 {
		s.persistTimeout = defaultPersistTimeout
	}
	return s
}

// Wait blocks until every background title job has finished.
func (s *Service) Wait() {
	s.titles.Wait()
}

// begin admits the turn, resolves or creates the conversation and persists the user message.
// A new conversation is never stored without its first message.
func (s *Service) begin(ctx context.Context, userID uuid.UUID, req TurnRequest) (*types.Conversation, bool, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, false, ErrEmptyMessage
	}

	decision, err := s.limiter.Admit(ctx, userID.String())
	if err != nil {
		return nil, false, fmt.Errorf("rate limit: %w", err)
	}
	if !decision.Allowed {
		return nil, false, &RateLimitError{RetryAfter: decision.RetryAfter}
	}

	msg := types.Message{Role: types.RoleUser, Content: req.Message}
	if req.ChatID == nil {
		// A new conversation is written together with its first message.
		conv, err := s.store.Create(ctx, userID, msg)
		if err != nil {
			return nil, false, fmt.Errorf("create conversation: %w", err)
		}
		return conv, true, nil
	}

	conv, err := s.store.Get(ctx, *req.ChatID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("get conversation: %w", err)
	}
	conv, err = s.appendWithRetry(ctx, conv, msg)
	if err != nil {
		return nil, false, fmt.Errorf("append user message: %w", err)
	}
	return conv, false, nil
}

// appendWithRetry appends msg at conv's version, reloading and retrying once on conflict.
func (s *Service) appendWithRetry(ctx context.Context, conv *types.Conversation, msg types.Message) (*types.Conversation, error) {
	updated, err := s.store.AppendMessage(ctx, conv.ID, conv.Version, msg)
	if !errors.Is(err, storage.ErrConflict) {
		return updated, err
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"version":         conv.Version,
	}).Debug("append conflict, reloading")

	fresh, err := s.store.Get(ctx, conv.ID, conv.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("reload conversation: %w", err)
	}
	updated, err = s.store.AppendMessage(ctx, fresh.ID, fresh.Version, msg)
	if errors.Is(err, storage.ErrConflict) {
		return nil, ErrConcurrentUpdate
	}
	return updated, err
}

// persistReply appends the assistant message on a context that survives the request.
func (s *Service) persistReply(ctx context.Context, conv *types.Conversation, reply string) (*types.Conversation, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()
	return s.appendWithRetry(ctx, conv, types.Message{Role: types.RoleAssistant, Content: reply})
}

// modelHistory returns the messages sent upstream. Stored system messages are dropped since
// the prompt is supplied per call.
func modelHistory(conv *types.Conversation) []types.Message {
	out := make([]types.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		if m.Role == types.RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
