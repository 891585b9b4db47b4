// Package azure is the completion gateway backed by an Azure OpenAI deployment.
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/casesimpli/assistant-backend/internal/ai"
	"github.com/casesimpli/assistant-backend/internal/types"
)

const defaultTimeout = 30 * time.Second

// Config holds the Azure OpenAI connection settings.
type Config struct {
	APIKey     string
	Endpoint   string
	Model      string
	Deployment string
	APIVersion string
	Timeout    time.Duration
}

// Error is an upstream or transport failure.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("azure openai: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("azure openai: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client is an Azure OpenAI chat completion client.
// Timeout bounds connecting, waiting for response headers and each gap between
// streamed chunks; a reply may stream for longer as long as chunks keep arriving.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new Azure OpenAI client.
func NewClient(cfg Config) *Client {
	oc := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		oc.APIVersion = cfg.APIVersion
	}
	deployment := cfg.Deployment
	if deployment != "" {
		oc.AzureModelMapperFunc = func(string) string {
			return deployment
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	oc.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}

	return &Client{
		api:     openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// CompleteOnce sends the conversation and returns the whole reply.
func (c *Client) CompleteOnce(ctx context.Context, messages []types.Message, systemPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, c.request(messages, systemPrompt, false))
	if err != nil {
		return "", wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteStream sends the conversation and returns a stream of text deltas.
// The caller must Close the stream.
func (c *Client) CompleteStream(ctx context.Context, messages []types.Message, systemPrompt string) (ai.DeltaStream, error) {
	ctx, cancel := context.WithCancel(ctx)
	s, err := c.api.CreateChatCompletionStream(ctx, c.request(messages, systemPrompt, true))
	if err != nil {
		cancel()
		return nil, wrapError(err)
	}

	st := &Stream{stream: s, cancel: cancel, idle: c.timeout}
	st.watchdog = time.AfterFunc(c.timeout, func() {
		st.stalled.Store(true)
		cancel()
	})
	st.watchdog.Stop()
	return st, nil
}

func (c *Client) request(messages []types.Message, systemPrompt string, stream bool) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   stream,
	}
}

var _ ai.Gateway = (*Client)(nil)

// Stream yields text deltas in arrival order.
// Recv returns io.EOF once the upstream finished normally and an *Error on failure.
type Stream struct {
	stream *openai.ChatCompletionStream
	cancel context.CancelFunc

	// watchdog cancels the request when no chunk arrives for idle while Recv waits.
	idle     time.Duration
	watchdog *time.Timer
	stalled  atomic.Bool
}

// Recv returns the next non-empty delta.
func (s *Stream) Recv() (string, error) {
	for {
		s.watchdog.Reset(s.idle)
		chunk, err := s.stream.Recv()
		s.watchdog.Stop()
		if s.stalled.Load() {
			return "", &Error{
				Message: fmt.Sprintf("no data received for %s", s.idle),
				Err:     context.DeadlineExceeded,
			}
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", wrapError(err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

// Close releases the underlying connection.
func (s *Stream) Close() error {
	s.watchdog.Stop()
	s.stream.Close()
	s.cancel()
	return nil
}

func wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{StatusCode: reqErr.HTTPStatusCode, Message: strings.TrimSpace(reqErr.Error()), Err: err}
	}
	return &Error{Message: err.Error(), Err: err}
}
