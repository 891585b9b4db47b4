package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casesimpli/assistant-backend/internal/types"
)

// startTitle generates and stores a title for a new conversation in the background.
// The returned channel receives the title once it is known; it is buffered so nobody has to read it.
func (s *Service) startTitle(ctx context.Context, convID uuid.UUID, firstMessage string) <-chan string {
	done := make(chan string, 1)
	s.titles.Add(1)
	go func() {
		defer s.titles.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.titleTimeout)
		defer cancel()

		title := s.generateTitle(ctx, firstMessage)
		set, err := s.store.SetTitleIfUnset(ctx, convID, title)
		log := s.logger.WithField("conversation_id", convID)
		switch {
		case err != nil:
			log.WithError(err).Error("failed to store title")
		case !set:
			log.Debug("title already set, keeping it")
		}
		done <- title
	}()
	return done
}

func (s *Service) generateTitle(ctx context.Context, firstMessage string) string {
	out, err := s.gateway.CompleteOnce(ctx, []types.Message{{Role: types.RoleUser, Content: firstMessage}}, TitlePrompt)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"fallback": FallbackTitle}).Warn("title generation failed")
		return FallbackTitle
	}
	title := strings.TrimSpace(out)
	if title == "" {
		return EmptyTitle
	}
	return title
}
