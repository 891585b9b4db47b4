package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casesimpli/assistant-backend/internal/ai"
	"github.com/casesimpli/assistant-backend/internal/config"
	"github.com/casesimpli/assistant-backend/internal/ratelimit"
	"github.com/casesimpli/assistant-backend/internal/storage"
	"github.com/casesimpli/assistant-backend/internal/storage/memory"
	"github.com/casesimpli/assistant-backend/internal/types"
)

type fakeGateway struct {
	mu sync.Mutex

	deltas    []string
	failAfter int // Recv fails once this many deltas were returned; negative disables
	streamErr error
	startErr  error

	reply    string
	replyErr error

	title     string
	titleErr  error
	titleGate chan struct{}

	streamCalls [][]types.Message
	titleCalls  int
}

func newFakeGateway(deltas ...string) *fakeGateway {
	return &fakeGateway{deltas: deltas, failAfter: -1, title: "Greeting"}
}

func (g *fakeGateway) CompleteStream(ctx context.Context, messages []types.Message, systemPrompt string) (ai.DeltaStream, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.streamCalls = append(g.streamCalls, append([]types.Message(nil), messages...))
	if g.startErr != nil {
		return nil, g.startErr
	}
	return &fakeStream{ctx: ctx, deltas: g.deltas, failAfter: g.failAfter, err: g.streamErr}, nil
}

func (g *fakeGateway) CompleteOnce(ctx context.Context, messages []types.Message, systemPrompt string) (string, error) {
	if systemPrompt == TitlePrompt {
		if g.titleGate != nil {
			<-g.titleGate
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		g.titleCalls++
		return g.title, g.titleErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reply, g.replyErr
}

func (g *fakeGateway) lastStreamCall() []types.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.streamCalls[len(g.streamCalls)-1]
}

type fakeStream struct {
	ctx       context.Context
	deltas    []string
	pos       int
	failAfter int
	err       error
	closed    bool
}

func (s *fakeStream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if s.failAfter >= 0 && s.pos >= s.failAfter {
		return "", s.err
	}
	if s.pos >= len(s.deltas) {
		return "", io.EOF
	}
	d := s.deltas[s.pos]
	s.pos++
	return d, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// recordingSink keeps frames and fails every Send from failAt onwards.
type recordingSink struct {
	frames []Frame
	failAt int
	onSend func(Frame)
}

func (s *recordingSink) Send(f Frame) error {
	if s.failAt > 0 && len(s.frames) >= s.failAt {
		return errors.New("broken pipe")
	}
	s.frames = append(s.frames, f)
	if s.onSend != nil {
		s.onSend(f)
	}
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fixture struct {
	svc     *Service
	store   *memory.ConversationStore
	gateway *fakeGateway
}

func newFixture(t *testing.T, gateway *fakeGateway) *fixture {
	t.Helper()
	store := memory.NewConversationStore()
	limiter := ratelimit.NewMemory(ratelimit.DefaultWindow, ratelimit.DefaultMaxRequests)
	svc := NewService(limiter, store, gateway, testLogger(), config.ChatConfig{
		TitleTimeout:   time.Second,
		PersistTimeout: time.Second,
	})
	t.Cleanup(svc.Wait)
	return &fixture{svc: svc, store: store, gateway: gateway}
}

func (f *fixture) seed(t *testing.T, owner uuid.UUID, messages ...types.Message) *types.Conversation {
	t.Helper()
	ctx := context.Background()
	conv, err := f.store.Create(ctx, owner)
	require.NoError(t, err)
	for _, m := range messages {
		conv, err = f.store.AppendMessage(ctx, conv.ID, conv.Version, m)
		require.NoError(t, err)
	}
	return conv
}

func TestStreamTurnNewChat(t *testing.T) {
	f := newFixture(t, newFakeGateway("Hel", "lo", " there"))
	user := uuid.New()
	var buf bytes.Buffer

	res, err := f.svc.StreamTurn(context.Background(), user, TurnRequest{Message: "Hello"}, NewWriterSink(&buf))
	require.NoError(t, err)
	assert.Equal(t, StreamCompleted, res.Status)

	want := fmt.Sprintf("{\"chat_id\": %q}\nHello there\n{\"end\": \"\"}", res.ChatID.String())
	assert.Equal(t, want, buf.String())

	f.svc.Wait()
	conv, err := f.store.Get(context.Background(), res.ChatID, user)
	require.NoError(t, err)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "Hello"},
		{Role: types.RoleAssistant, Content: "Hello there"},
	}, conv.Messages)
	require.NotNil(t, conv.Title)
	assert.Equal(t, "Greeting", *conv.Title)
}

func TestStreamTurnForwardsDeltasInOrder(t *testing.T) {
	deltas := make([]string, 200)
	for i := range deltas {
		deltas[i] = fmt.Sprintf("[%d]", i)
	}
	f := newFixture(t, newFakeGateway(deltas...))
	sink := &recordingSink{}

	res, err := f.svc.StreamTurn(context.Background(), uuid.New(), TurnRequest{Message: "count"}, sink)
	require.NoError(t, err)

	require.Len(t, sink.frames, len(deltas)+2)
	assert.Equal(t, ChatIDFrame{ChatID: res.ChatID}, sink.frames[0])
	assert.Equal(t, EndFrame{}, sink.frames[len(sink.frames)-1])

	var got strings.Builder
	for _, fr := range sink.frames[1 : len(sink.frames)-1] {
		d, ok := fr.(DeltaFrame)
		require.True(t, ok, "unexpected frame %T", fr)
		got.WriteString(d.Text)
	}
	assert.Equal(t, strings.Join(deltas, ""), got.String())
	assert.Equal(t, got.String(), res.Reply)
}

func TestStreamTurnExistingConversation(t *testing.T) {
	f := newFixture(t, newFakeGateway("fifth"))
	user := uuid.New()
	prior := []types.Message{
		{Role: types.RoleUser, Content: "one"},
		{Role: types.RoleAssistant, Content: "two"},
		{Role: types.RoleUser, Content: "three"},
		{Role: types.RoleAssistant, Content: "four"},
	}
	conv := f.seed(t, user, prior...)

	_, err := f.svc.StreamTurn(context.Background(), user, TurnRequest{ChatID: &conv.ID, Message: "five"}, &recordingSink{})
	require.NoError(t, err)
	f.svc.Wait()

	got, err := f.store.Get(context.Background(), conv.ID, user)
	require.NoError(t, err)
	want := append(append([]types.Message(nil), prior...),
		types.Message{Role: types.RoleUser, Content: "five"},
		types.Message{Role: types.RoleAssistant, Content: "fifth"},
	)
	assert.Equal(t, want, got.Messages)
	assert.Equal(t, want[:5], f.gateway.lastStreamCall())
	assert.Nil(t, got.Title, "titles are only generated for new conversations")
	assert.Zero(t, f.gateway.titleCalls)
}

func TestStreamTurnRateLimited(t *testing.T) {
	f := newFixture(t, newFakeGateway("ok"))
	user := uuid.New()
	ctx := context.Background()

	for i := 0; i < ratelimit.DefaultMaxRequests; i++ {
		_, err := f.svc.StreamTurn(ctx, user, TurnRequest{Message: "hi"}, &recordingSink{})
		require.NoError(t, err)
	}

	sink := &recordingSink{}
	_, err := f.svc.StreamTurn(ctx, user, TurnRequest{Message: "hi"}, sink)
	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Greater(t, rlErr.Seconds(), 0)
	assert.LessOrEqual(t, rlErr.Seconds(), 60)
	assert.Empty(t, sink.frames)

	f.svc.Wait()
	convs, err := f.store.ListByOwner(ctx, user)
	require.NoError(t, err)
	assert.Len(t, convs, ratelimit.DefaultMaxRequests, "a rejected turn creates nothing")

	_, err = f.svc.StreamTurn(ctx, uuid.New(), TurnRequest{Message: "hi"}, &recordingSink{})
	assert.NoError(t, err, "other users are unaffected")
}

func TestStreamTurnGatewayFailsImmediately(t *testing.T) {
	gw := newFakeGateway()
	gw.startErr = errors.New("dial tcp: connection refused")
	f := newFixture(t, gw)
	user := uuid.New()
	sink := &recordingSink{}

	res, err := f.svc.StreamTurn(context.Background(), user, TurnRequest{Message: "Hello"}, sink)
	require.NoError(t, err)
	assert.Equal(t, StreamFailed, res.Status)
	assert.Error(t, res.Err)
	assert.Equal(t, []Frame{ChatIDFrame{ChatID: res.ChatID}, EndFrame{}}, sink.frames)

	conv, err := f.store.Get(context.Background(), res.ChatID, user)
	require.NoError(t, err)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "Hello"},
		{Role: types.RoleAssistant, Content: ""},
	}, conv.Messages)
}

func TestStreamTurnGatewayFailsMidStream(t *testing.T) {
	gw := newFakeGateway("a", "b", "c")
	gw.failAfter = 2
	gw.streamErr = errors.New("stream reset")
	f := newFixture(t, gw)
	user := uuid.New()
	var buf bytes.Buffer

	res, err := f.svc.StreamTurn(context.Background(), user, TurnRequest{Message: "Hello"}, NewWriterSink(&buf))
	require.NoError(t, err)
	assert.Equal(t, StreamFailed, res.Status)
	assert.True(t, strings.HasSuffix(buf.String(), "ab\n{\"end\": \"\"}"))

	conv, err := f.store.Get(context.Background(), res.ChatID, user)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "ab", conv.Messages[1].Content)
}

func TestStreamTurnClientWriteFails(t *testing.T) {
	f := newFixture(t, newFakeGateway("d1", "d2", "d3", "d4"))
	user := uuid.New()
	// chat id and first delta go through, the second delta fails
	sink := &recordingSink{failAt: 2}

	res, err := f.svc.StreamTurn(context.Background(), user, TurnRequest{Message: "Hello"}, sink)
	require.NoError(t, err)
	assert.Equal(t, StreamCancelled, res.Status)

	conv, err := f.store.Get(context.Background(), res.ChatID, user)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "d1d2", conv.Messages[1].Content)
}

func TestStreamTurnContextCancelledMidStream(t *testing.T) {
	f := newFixture(t, newFakeGateway("d1", "d2", "d3"))
	user := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &recordingSink{onSend: func(fr Frame) {
		if _, ok := fr.(DeltaFrame); ok {
			cancel()
		}
	}}

	res, err := f.svc.StreamTurn(ctx, user, TurnRequest{Message: "Hello"}, sink)
	require.NoError(t, err)
	assert.Equal(t, StreamCancelled, res.Status)

	conv, err := f.store.Get(context.Background(), res.ChatID, user)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2, "the partial reply is persisted after cancellation")
	assert.Equal(t, "d1", conv.Messages[1].Content)
}

func TestStreamTurnRefusals(t *testing.T) {
	f := newFixture(t, newFakeGateway("x"))
	owner, stranger := uuid.New(), uuid.New()
	conv := f.seed(t, owner, types.Message{Role: types.RoleUser, Content: "mine"})

	tests := []struct {
		name string
		user uuid.UUID
		req  TurnRequest
		want error
	}{
		{name: "empty message", user: owner, req: TurnRequest{Message: "  "}, want: ErrEmptyMessage},
		{name: "unknown conversation", user: owner, req: TurnRequest{ChatID: ptr(uuid.New()), Message: "hi"}, want: storage.ErrNotFound},
		{name: "someone else's conversation", user: stranger, req: TurnRequest{ChatID: &conv.ID, Message: "hi"}, want: storage.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			_, err := f.svc.StreamTurn(context.Background(), tt.user, tt.req, sink)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, sink.frames)
		})
	}

	got, err := f.store.Get(context.Background(), conv.ID, owner)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestTitleGeneration(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		titleErr error
		want     string
	}{
		{name: "trimmed", title: "  Tenancy Rights in Lagos \n", want: "Tenancy Rights in Lagos"},
		{name: "no choice", title: "", want: EmptyTitle},
		{name: "gateway error", titleErr: errors.New("timeout"), want: FallbackTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway("ok")
			gw.title, gw.titleErr = tt.title, tt.titleErr
			f := newFixture(t, gw)
			user := uuid.New()

			res, err := f.svc.StreamTurn(context.Background(), user, TurnRequest{Message: "Hello"}, &recordingSink{})
			require.NoError(t, err)
			f.svc.Wait()

			conv, err := f.store.Get(context.Background(), res.ChatID, user)
			require.NoError(t, err)
			require.NotNil(t, conv.Title)
			assert.Equal(t, tt.want, *conv.Title)
		})
	}
}

func TestTitleNeverOverwritesManualTitle(t *testing.T) {
	gw := newFakeGateway("ok")
	gw.titleGate = make(chan struct{})
	f := newFixture(t, gw)
	user := uuid.New()
	ctx := context.Background()

	res, err := f.svc.StreamTurn(ctx, user, TurnRequest{Message: "Hello"}, &recordingSink{})
	require.NoError(t, err)

	require.NoError(t, f.store.SetTitle(ctx, res.ChatID, user, "My case"))
	close(gw.titleGate)
	f.svc.Wait()

	_, err = f.svc.StreamTurn(ctx, user, TurnRequest{ChatID: &res.ChatID, Message: "again"}, &recordingSink{})
	require.NoError(t, err)
	f.svc.Wait()

	conv, err := f.store.Get(ctx, res.ChatID, user)
	require.NoError(t, err)
	require.NotNil(t, conv.Title)
	assert.Equal(t, "My case", *conv.Title)
	assert.Equal(t, 1, gw.titleCalls)
}

// conflictingStore fails the next n appends with ErrConflict.
type conflictingStore struct {
	*memory.ConversationStore
	mu sync.Mutex
	n  int
}

func (s *conflictingStore) AppendMessage(ctx context.Context, id uuid.UUID, expectedVersion int, msg types.Message) (*types.Conversation, error) {
	s.mu.Lock()
	if s.n > 0 {
		s.n--
		s.mu.Unlock()
		return nil, storage.ErrConflict
	}
	s.mu.Unlock()
	return s.ConversationStore.AppendMessage(ctx, id, expectedVersion, msg)
}

// failingCreateStore rejects every new conversation.
type failingCreateStore struct {
	*memory.ConversationStore
}

func (s *failingCreateStore) Create(context.Context, uuid.UUID, ...types.Message) (*types.Conversation, error) {
	return nil, errors.New("database unavailable")
}

func TestAppendConflictIsRetriedOnce(t *testing.T) {
	user := uuid.New()
	ctx := context.Background()

	t.Run("one conflict", func(t *testing.T) {
		store := &conflictingStore{ConversationStore: memory.NewConversationStore()}
		conv, err := store.Create(ctx, user)
		require.NoError(t, err)
		store.n = 1
		svc := NewService(ratelimit.NewMemory(time.Minute, 100), store, newFakeGateway("ok"), testLogger(), config.ChatConfig{})
		t.Cleanup(svc.Wait)

		res, err := svc.StreamTurn(ctx, user, TurnRequest{ChatID: &conv.ID, Message: "Hello"}, &recordingSink{})
		require.NoError(t, err)
		conv, err = store.Get(ctx, res.ChatID, user)
		require.NoError(t, err)
		assert.Len(t, conv.Messages, 2)
	})

	t.Run("two conflicts", func(t *testing.T) {
		store := &conflictingStore{ConversationStore: memory.NewConversationStore()}
		conv, err := store.Create(ctx, user)
		require.NoError(t, err)
		store.n = 2
		svc := NewService(ratelimit.NewMemory(time.Minute, 100), store, newFakeGateway("ok"), testLogger(), config.ChatConfig{})
		t.Cleanup(svc.Wait)

		sink := &recordingSink{}
		_, err = svc.StreamTurn(ctx, user, TurnRequest{ChatID: &conv.ID, Message: "Hello"}, sink)
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
		assert.Empty(t, sink.frames)
	})
}

func TestNewChatIsStoredWithItsFirstMessage(t *testing.T) {
	user := uuid.New()
	ctx := context.Background()

	// Every append conflicts, so only the create can have written the user message.
	store := &conflictingStore{ConversationStore: memory.NewConversationStore(), n: 2}
	svc := NewService(ratelimit.NewMemory(time.Minute, 100), store, newFakeGateway("ok"), testLogger(), config.ChatConfig{})
	t.Cleanup(svc.Wait)

	res, err := svc.StreamTurn(ctx, user, TurnRequest{Message: "Hello"}, &recordingSink{})
	require.NoError(t, err)
	svc.Wait()

	convs, err := store.ListByOwner(ctx, user)
	require.NoError(t, err)
	require.Len(t, convs, 1)

	conv, err := store.Get(ctx, res.ChatID, user)
	require.NoError(t, err)
	assert.Equal(t, []types.Message{{Role: types.RoleUser, Content: "Hello"}}, conv.Messages)
}

func TestFailedCreateLeavesNoConversation(t *testing.T) {
	user := uuid.New()
	ctx := context.Background()
	store := &failingCreateStore{ConversationStore: memory.NewConversationStore()}
	svc := NewService(ratelimit.NewMemory(time.Minute, 100), store, newFakeGateway("ok"), testLogger(), config.ChatConfig{})
	t.Cleanup(svc.Wait)

	sink := &recordingSink{}
	_, err := svc.StreamTurn(ctx, user, TurnRequest{Message: "Hello"}, sink)
	require.Error(t, err)
	assert.Empty(t, sink.frames)

	convs, err := store.ListByOwner(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestConcurrentTurnsOnOneConversation(t *testing.T) {
	f := newFixture(t, newFakeGateway("r"))
	user := uuid.New()
	conv := f.seed(t, user)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.StreamTurn(context.Background(), user, TurnRequest{ChatID: &conv.ID, Message: fmt.Sprintf("m%d", i)}, &recordingSink{})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
	}

	got, err := f.store.Get(context.Background(), conv.ID, user)
	require.NoError(t, err)
	assert.Equal(t, ok, got.Count(types.RoleUser), "every admitted turn kept its user message")
}

func TestComplete(t *testing.T) {
	gw := newFakeGateway()
	gw.reply = "Under the Land Use Act..."
	gw.title = "Land Use Act"
	f := newFixture(t, gw)
	user := uuid.New()

	resp, err := f.svc.Complete(context.Background(), user, TurnRequest{Message: "Who owns land?"})
	require.NoError(t, err)
	assert.Equal(t, "Under the Land Use Act...", resp.Response)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "Who owns land?"},
		{Role: types.RoleAssistant, Content: "Under the Land Use Act..."},
	}, resp.History)
	require.NotNil(t, resp.Title)
	assert.Equal(t, "Land Use Act", *resp.Title)

	second, err := f.svc.Complete(context.Background(), user, TurnRequest{ChatID: &resp.ChatID, Message: "And leases?"})
	require.NoError(t, err)
	assert.Len(t, second.History, 4)
	require.NotNil(t, second.Title)
	assert.Equal(t, "Land Use Act", *second.Title)
}

func TestCompleteGatewayFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.replyErr = errors.New("status 500")
	f := newFixture(t, gw)
	user := uuid.New()

	_, err := f.svc.Complete(context.Background(), user, TurnRequest{Message: "Hello"})
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)

	f.svc.Wait()
	convs, err := f.store.ListByOwner(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "Hello"},
		{Role: types.RoleAssistant, Content: ""},
	}, convs[0].Messages)
}

func TestWriteFrame(t *testing.T) {
	id := uuid.MustParse("8f14e45f-ceea-467f-a0e6-1f1d3b9c7e21")
	var buf bytes.Buffer
	for _, fr := range []Frame{ChatIDFrame{ChatID: id}, DeltaFrame{Text: "a \"quoted\"\ndelta"}, EndFrame{}} {
		require.NoError(t, WriteFrame(&buf, fr))
	}
	assert.Equal(t, "{\"chat_id\": \"8f14e45f-ceea-467f-a0e6-1f1d3b9c7e21\"}\na \"quoted\"\ndelta\n{\"end\": \"\"}", buf.String())
}

func ptr[T any](v T) *T {
	return &v
}
