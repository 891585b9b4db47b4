package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/casesimpli/assistant-backend/internal/service/chat"
)

// Chat handles POST /chat, streaming the reply as it is produced.
func (s *Server) Chat(c echo.Context) error {
	var req chat.TurnRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	userID := GetUserID(c)
	sink := newStreamSink(c.Response())
	result, err := s.chatService.StreamTurn(c.Request().Context(), userID, req, sink)
	if err != nil {
		// refused before the first frame, headers are still unwritten
		return s.respondError(c, err, "Chat history")
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id": result.ChatID,
		"user_id":         userID,
		"status":          result.Status.String(),
		"reply_bytes":     len(result.Reply),
	}).Info("chat turn finished")
	return nil
}

// Complete handles POST /chat/complete.
func (s *Server) Complete(c echo.Context) error {
	var req chat.TurnRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	resp, err := s.chatService.Complete(c.Request().Context(), GetUserID(c), req)
	if err != nil {
		return s.respondError(c, err, "Chat history")
	}
	return c.JSON(http.StatusOK, resp)
}

// streamSink commits the event-stream headers on the first frame.
type streamSink struct {
	res   *echo.Response
	inner chat.Sink
}

func newStreamSink(res *echo.Response) *streamSink {
	return &streamSink{res: res, inner: chat.NewWriterSink(res)}
}

func (s *streamSink) Send(f chat.Frame) error {
	if !s.res.Committed {
		h := s.res.Header()
		h.Set(echo.HeaderContentType, "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("X-Accel-Buffering", "no")
		s.res.WriteHeader(http.StatusOK)
	}
	return s.inner.Send(f)
}
