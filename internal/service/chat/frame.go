package chat

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Frame is one unit of a streamed turn: ChatIDFrame, DeltaFrame or EndFrame.
type Frame interface {
	frame()
}

// ChatIDFrame opens every stream and names the conversation.
type ChatIDFrame struct {
	ChatID uuid.UUID
}

// DeltaFrame carries one text fragment, written raw.
type DeltaFrame struct {
	Text string
}

// EndFrame closes the stream, on success and failure alike.
type EndFrame struct{}

func (ChatIDFrame) frame() {}
func (DeltaFrame) frame()  {}
func (EndFrame) frame()    {}

// WriteFrame encodes f onto w.
func WriteFrame(w io.Writer, f Frame) error {
	var err error
	switch f := f.(type) {
	case ChatIDFrame:
		_, err = fmt.Fprintf(w, "{\"chat_id\": %q}\n", f.ChatID.String())
	case DeltaFrame:
		_, err = io.WriteString(w, f.Text)
	case EndFrame:
		_, err = io.WriteString(w, "\n{\"end\": \"\"}")
	default:
		err = fmt.Errorf("unknown frame %T", f)
	}
	return err
}

// Sink receives the frames of one turn. A Send error means the client is gone.
type Sink interface {
	Send(Frame) error
}

type flusher interface {
	Flush()
}

type writerSink struct {
	w io.Writer
}

// NewWriterSink returns a Sink that encodes frames onto w, flushing after each one when w
// supports it.
func NewWriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) Send(f Frame) error {
	if err := WriteFrame(s.w, f); err != nil {
		return err
	}
	if fl, ok := s.w.(flusher); ok {
		fl.Flush()
	}
	return nil
}
