package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/casesimpli/assistant-backend/internal/types"
)

// StreamTurn runs one streaming turn for userID, writing frames to sink.
//
// An error is returned only when the turn is refused before any frame is sent: invalid input,
// rate limiting, an unknown conversation or a persistent append conflict. Once streaming has
// started the turn always ends with an EndFrame and an assistant message, which is empty or
// partial when the model fails or the client goes away.
func (s *Service) StreamTurn(ctx context.Context, userID uuid.UUID, req TurnRequest, sink Sink) (*TurnResult, error) {
	conv, created, err := s.begin(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if created {
		s.startTitle(ctx, conv.ID, req.Message)
	}

	log := s.logger.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"user_id":         userID,
	})

	out := &frameWriter{sink: sink, log: log}
	out.send(ChatIDFrame{ChatID: conv.ID})

	var reply strings.Builder
	status, streamErr := s.pump(ctx, conv, out, &reply)
	out.send(EndFrame{})

	switch status {
	case StreamFailed:
		log.WithError(streamErr).Error("completion stream failed")
	case StreamCancelled:
		log.Info("client went away, keeping partial reply")
	}

	if _, err := s.persistReply(ctx, conv, reply.String()); err != nil {
		log.WithError(err).Error("failed to persist assistant message")
	}

	return &TurnResult{
		ChatID: conv.ID,
		Status: status,
		Reply:  reply.String(),
		Err:    streamErr,
	}, nil
}

// pump forwards deltas from the gateway to out until the stream ends, fails or the client is gone.
func (s *Service) pump(ctx context.Context, conv *types.Conversation, out *frameWriter, reply *strings.Builder) (StreamStatus, error) {
	if out.gone {
		return StreamCancelled, nil
	}

	stream, err := s.gateway.CompleteStream(ctx, modelHistory(conv), s.systemPrompt)
	if err != nil {
		if ctx.Err() != nil {
			return StreamCancelled, nil
		}
		return StreamFailed, err
	}
	defer stream.Close()

	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return StreamCompleted, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return StreamCancelled, nil
			}
			return StreamFailed, err
		}
		reply.WriteString(delta)
		if !out.send(DeltaFrame{Text: delta}) {
			return StreamCancelled, nil
		}
	}
}

// frameWriter stops writing after the first sink error.
type frameWriter struct {
	sink Sink
	log  *logrus.Entry
	gone bool
}

func (w *frameWriter) send(f Frame) bool {
	if w.gone {
		return false
	}
	if err := w.sink.Send(f); err != nil {
		w.gone = true
		w.log.WithError(err).Debug("client write failed")
		return false
	}
	return true
}
