package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Complete runs one non-streaming turn. A new conversation gets its title generated alongside
// the reply and included in the response.
//
// A model failure still persists an empty assistant message before returning a *GatewayError.
func (s *Service) Complete(ctx context.Context, userID uuid.UUID, req TurnRequest) (*CompletionResponse, error) {
	conv, created, err := s.begin(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	var titleCh <-chan string
	if created {
		titleCh = s.startTitle(ctx, conv.ID, req.Message)
	}

	log := s.logger.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"user_id":         userID,
	})

	reply, gatewayErr := s.gateway.CompleteOnce(ctx, modelHistory(conv), s.systemPrompt)
	if gatewayErr != nil {
		reply = ""
	}

	updated, err := s.persistReply(ctx, conv, reply)
	if gatewayErr != nil {
		if err != nil {
			log.WithError(err).Error("failed to persist assistant message")
		}
		return nil, &GatewayError{Err: gatewayErr}
	}
	if err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	title := updated.Title
	if titleCh != nil {
		select {
		case t := <-titleCh:
			title = &t
		case <-ctx.Done():
		}
	}

	return &CompletionResponse{
		Response: reply,
		History:  updated.Messages,
		ChatID:   updated.ID,
		Title:    title,
	}, nil
}
