package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/casualjim/brainstorm/ai"
	"github.com/casualjim/brainstorm/events"
	"github.com/casualjim/brainstorm/messages"
	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/provider"
	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/casualjim/brainstorm/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider answers every request with reply(params), split on spaces when
// streaming. With failAfter >= 0 the response breaks after that many chunks.
type fakeProvider struct {
	reply     func(provider.CompletionParams) string
	failAfter int
	failErr   error
	delay     time.Duration

	mu       sync.Mutex
	requests []provider.CompletionParams

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{reply: echo, failAfter: -1}
}

// echo answers with a deterministic text that depends on the last prompt and
// the size of the conversation.
func echo(params provider.CompletionParams) string {
	last := params.Messages[len(params.Messages)-1]
	return fmt.Sprintf("reply %d to %s", len(params.Messages), last.Content)
}

func (f *fakeProvider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	f.mu.Lock()
	f.requests = append(f.requests, params)
	f.mu.Unlock()

	ch := make(chan provider.StreamEvent, 1)
	go func() {
		defer close(ch)
		n := f.inflight.Add(1)
		defer f.inflight.Add(-1)
		for {
			m := f.maxInflight.Load()
			if n <= m || f.maxInflight.CompareAndSwap(m, n) {
				break
			}
		}
		if f.delay > 0 {
			time.Sleep(f.delay)
		}

		send := func(ev provider.StreamEvent) bool {
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}
		fail := func() {
			send(provider.Error{RunID: params.RunID, Err: f.failErr})
		}

		content := f.reply(params)
		if !params.Stream {
			if f.failAfter >= 0 {
				fail()
				return
			}
			send(provider.Response{RunID: params.RunID, Content: content, Model: params.Model, FinishReason: "stop", Usage: usage()})
			return
		}

		if !send(provider.Delim{RunID: params.RunID, Delim: provider.DelimStart}) {
			return
		}
		for i, part := range strings.SplitAfter(content, " ") {
			if i == f.failAfter {
				fail()
				return
			}
			if !send(provider.Chunk{RunID: params.RunID, Index: i, Content: part}) {
				return
			}
		}
		if !send(provider.Delim{RunID: params.RunID, Delim: provider.DelimEnd}) {
			return
		}
		send(provider.Response{RunID: params.RunID, Content: content, Model: params.Model, FinishReason: "stop", Usage: usage()})
	}()
	return ch, nil
}

func (f *fakeProvider) calls() []provider.CompletionParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.CompletionParams(nil), f.requests...)
}

func usage() shorttermmemory.Usage {
	return shorttermmemory.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingPublisher) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func newTestAgent(t *testing.T, p provider.Provider) *Agent {
	t.Helper()
	a, err := New(
		Name("helper"),
		Description("a helpful assistant"),
		AI(testAI(t, p)),
	)
	require.NoError(t, err)
	return a
}

func testAI(t *testing.T, p provider.Provider) *ai.AI {
	t.Helper()
	model, err := ai.New(ai.Client(p), ai.Model("gpt-4"))
	require.NoError(t, err)
	return model
}

func roles(msgs []messages.Message) []messages.Role {
	out := make([]messages.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestNew(t *testing.T) {
	model := testAI(t, newFakeProvider())

	t.Run("requires an AI", func(t *testing.T) {
		_, err := New(Name("helper"))
		assert.ErrorIs(t, err, errs.ErrConfig)
	})

	t.Run("requires a name", func(t *testing.T) {
		_, err := New(AI(model), Name("  "))
		assert.ErrorIs(t, err, errs.ErrConfig)
	})

	t.Run("rejects invalid tools", func(t *testing.T) {
		_, err := New(AI(model), Name("helper"), Tools(tool.Definition{Name: "broken", Function: 42}))
		assert.ErrorIs(t, err, errs.ErrConfig)
	})

	t.Run("rejects duplicate tools", func(t *testing.T) {
		def := tool.Must(func() string { return "hi" }, tool.Name("greet"))
		_, err := New(AI(model), Name("helper"), Tools(def, def))
		assert.ErrorIs(t, err, errs.ErrConfig)
	})

	t.Run("rejects memory holding a system prompt", func(t *testing.T) {
		memory := shorttermmemory.New()
		memory.Append(messages.System("ignore the agent"))
		_, err := New(AI(model), Name("helper"), Memory(memory))
		assert.ErrorIs(t, err, errs.ErrConfig)
	})

	t.Run("exposes its configuration", func(t *testing.T) {
		def := tool.Must(func() string { return "hi" }, tool.Name("greet"))
		a, err := New(AI(model), Name("helper"), Description("a helpful assistant"), Tools(def))
		require.NoError(t, err)

		assert.Equal(t, "helper", a.Name())
		assert.Equal(t, "a helpful assistant", a.Description())
		assert.Equal(t, "helper: a helpful assistant", a.String())
		assert.Same(t, model, a.AI())
		assert.Equal(t, 0, a.Len())
		assert.Empty(t, a.History())

		tools := a.Tools()
		require.Len(t, tools, 1)
		assert.Equal(t, "greet", tools[0].Name)
		tools[0].Name = "changed"
		assert.Equal(t, "greet", a.Tools()[0].Name)
	})
}

func TestRun_Conversation(t *testing.T) {
	p := newFakeProvider()
	a := newTestAgent(t, p)
	ctx := context.Background()

	t1, err := a.Run(ctx, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "reply 2 to Hello", t1)

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, messages.RoleUser, history[0].Role)
	assert.Equal(t, "Hello", history[0].Content)
	assert.Equal(t, messages.RoleAssistant, history[1].Role)
	assert.Equal(t, t1, history[1].Content)
	assert.Equal(t, "helper", history[1].Sender)

	t2, err := a.Run(ctx, "And then?")
	require.NoError(t, err)
	assert.Equal(t, "reply 4 to And then?", t2)

	history = a.History()
	require.Len(t, history, 4)
	assert.Equal(t,
		[]string{"Hello", t1, "And then?", t2},
		[]string{history[0].Content, history[1].Content, history[2].Content, history[3].Content},
	)
	assert.Equal(t,
		[]messages.Role{messages.RoleUser, messages.RoleAssistant, messages.RoleUser, messages.RoleAssistant},
		roles(history),
	)

	calls := p.calls()
	require.Len(t, calls, 2)
	second := calls[1]
	assert.False(t, second.Stream)
	assert.Equal(t, "gpt-4", second.Model)
	assert.Equal(t,
		[]messages.Role{messages.RoleSystem, messages.RoleUser, messages.RoleAssistant, messages.RoleUser},
		roles(second.Messages),
	)
	assert.Equal(t, "a helpful assistant", second.Messages[0].Content)
	assert.Equal(t, "And then?", second.Messages[3].Content)
	assert.Empty(t, second.Messages[3].Sender, "prompts carry no end-user identity")

	for _, m := range a.History() {
		assert.NotEqual(t, messages.RoleSystem, m.Role)
	}
	assert.Equal(t, shorttermmemory.Usage{PromptTokens: 6, CompletionTokens: 4, TotalTokens: 10}, a.Usage())
}

func TestRun_Streaming(t *testing.T) {
	ctx := context.Background()
	streamed := newTestAgent(t, newFakeProvider())
	blocking := newTestAgent(t, newFakeProvider())

	var chunks []string
	got, err := streamed.Run(ctx, "tell me a story", Streaming(true), StreamHandler(func(s string) {
		chunks = append(chunks, s)
	}))
	require.NoError(t, err)

	want, err := blocking.Run(ctx, "tell me a story")
	require.NoError(t, err)

	assert.Equal(t, []string{"reply ", "2 ", "to ", "tell ", "me ", "a ", "story"}, chunks)
	assert.Equal(t, strings.Join(chunks, ""), got)
	assert.Equal(t, want, got)
	assert.Equal(t, blocking.History()[1].Content, streamed.History()[1].Content)
	assert.Equal(t, 2, streamed.Len())
}

func TestRun_Validation(t *testing.T) {
	p := newFakeProvider()
	a := newTestAgent(t, p)
	ctx := context.Background()

	tests := []struct {
		name    string
		prompt  string
		options []RunOption
	}{
		{"empty prompt", "", nil},
		{"blank prompt", " \n\t", nil},
		{"stream without handler", "Hello", []RunOption{Streaming(true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Run(ctx, tt.prompt, tt.options...)
			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.Equal(t, 0, a.Len())
		})
	}
	assert.Empty(t, p.calls())

	t.Run("handler without streaming is ignored", func(t *testing.T) {
		called := false
		_, err := a.Run(ctx, "Hello", StreamHandler(func(string) { called = true }))
		require.NoError(t, err)
		assert.False(t, called)
		assert.Equal(t, 2, a.Len())
	})
}

func TestRun_MidStreamFailure(t *testing.T) {
	p := newFakeProvider()
	a := newTestAgent(t, p)
	ctx := context.Background()

	_, err := a.Run(ctx, "Hello")
	require.NoError(t, err)
	before := a.History()
	usageBefore := a.Usage()

	p.failAfter = 2
	p.failErr = errs.Provider("fake.chat_completion", "stream interrupted", nil)

	var chunks []string
	_, err = a.Run(ctx, "And then?", Streaming(true), StreamHandler(func(s string) {
		chunks = append(chunks, s)
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrProvider)
	assert.Equal(t, []string{"reply ", "4 "}, chunks)

	assert.Equal(t, before, a.History())
	assert.Equal(t, usageBefore, a.Usage())
}

func TestRun_ProviderFailure(t *testing.T) {
	p := newFakeProvider()
	p.failAfter = 0
	p.failErr = errs.Network("fake.chat_completion", context.DeadlineExceeded)
	a := newTestAgent(t, p)

	_, err := a.Run(context.Background(), "Hello")
	assert.ErrorIs(t, err, errs.ErrNetwork)
	assert.Equal(t, 0, a.Len())
	assert.True(t, a.Usage().IsZero())
}

func TestRun_WithoutDescription(t *testing.T) {
	p := newFakeProvider()
	a, err := New(Name("plain"), AI(testAI(t, p)))
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "Hello")
	require.NoError(t, err)

	calls := p.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []messages.Role{messages.RoleUser}, roles(calls[0].Messages))
}

func TestRun_Concurrent(t *testing.T) {
	p := newFakeProvider()
	p.delay = time.Millisecond
	a := newTestAgent(t, p)

	const runs = 8
	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Run(context.Background(), fmt.Sprintf("prompt %d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), p.maxInflight.Load())

	history := a.History()
	require.Len(t, history, 2*runs)
	for i := 0; i < len(history); i += 2 {
		user, assistant := history[i], history[i+1]
		assert.Equal(t, messages.RoleUser, user.Role)
		assert.Equal(t, messages.RoleAssistant, assistant.Role)
		assert.Equal(t, fmt.Sprintf("reply %d to %s", i+2, user.Content), assistant.Content)
	}
}

func TestRun_PublishesEvents(t *testing.T) {
	t.Run("streaming run", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := New(Name("helper"), AI(testAI(t, newFakeProvider())), Publisher(pub))
		require.NoError(t, err)

		answer, err := a.Run(context.Background(), "Hi there", Streaming(true), StreamHandler(func(string) {}))
		require.NoError(t, err)

		evs := pub.all()
		require.Len(t, evs, 9)

		req, ok := evs[0].(events.Request)
		require.True(t, ok, "expected a request, got %T", evs[0])
		assert.Equal(t, "Hi there", req.Message.Content)
		assert.Equal(t, a.SessionID(), req.SessionID)

		assert.Equal(t, events.Delim{RunID: req.RunID, SessionID: req.SessionID, Delim: provider.DelimStart}, evs[1])
		var text strings.Builder
		for i, ev := range evs[2:7] {
			chunk, ok := ev.(events.Chunk)
			require.True(t, ok, "expected a chunk, got %T", ev)
			assert.Equal(t, req.RunID, chunk.RunID)
			assert.Equal(t, i, chunk.Index)
			assert.Equal(t, "helper", chunk.Sender)
			text.WriteString(chunk.Content)
		}
		assert.Equal(t, answer, text.String())
		assert.Equal(t, events.Delim{RunID: req.RunID, SessionID: req.SessionID, Delim: provider.DelimEnd}, evs[7])

		resp, ok := evs[8].(events.Response)
		require.True(t, ok, "expected a response, got %T", evs[8])
		assert.Equal(t, req.RunID, resp.RunID)
		assert.Equal(t, answer, resp.Message.Content)
		assert.Equal(t, "stop", resp.FinishReason)
		assert.Equal(t, usage(), resp.Usage)
	})

	t.Run("failed run", func(t *testing.T) {
		p := newFakeProvider()
		p.failAfter = 0
		p.failErr = errs.Provider("fake.chat_completion", "rate limited", nil)
		pub := &recordingPublisher{}
		a, err := New(Name("helper"), AI(testAI(t, p)), Publisher(pub))
		require.NoError(t, err)

		_, err = a.Run(context.Background(), "Hi there")
		require.Error(t, err)

		evs := pub.all()
		require.Len(t, evs, 2)
		assert.IsType(t, events.Request{}, evs[0])
		failed, ok := evs[1].(events.Error)
		require.True(t, ok, "expected an error, got %T", evs[1])
		assert.ErrorIs(t, failed, errs.ErrProvider)
	})

	t.Run("publish failures do not fail the run", func(t *testing.T) {
		pub := &recordingPublisher{err: assert.AnError}
		a, err := New(Name("helper"), AI(testAI(t, newFakeProvider())), Publisher(pub))
		require.NoError(t, err)

		_, err = a.Run(context.Background(), "Hi there")
		require.NoError(t, err)
		assert.Equal(t, 2, a.Len())
		assert.Len(t, pub.all(), 2)
	})
}

func TestReset(t *testing.T) {
	a := newTestAgent(t, newFakeProvider())
	session := a.SessionID()

	_, err := a.Run(context.Background(), "Hello")
	require.NoError(t, err)
	require.Equal(t, 2, a.Len())

	a.Reset()
	assert.Equal(t, 0, a.Len())
	assert.True(t, a.Usage().IsZero())
	assert.NotEqual(t, session, a.SessionID())
}

func TestCheckpointAndRestore(t *testing.T) {
	p := newFakeProvider()
	a := newTestAgent(t, p)
	_, err := a.Run(context.Background(), "Hello")
	require.NoError(t, err)

	cp := a.Checkpoint()
	restored, err := New(Name("helper"), Description("a helpful assistant"), AI(testAI(t, p)), Memory(shorttermmemory.Restore(cp)))
	require.NoError(t, err)
	assert.Equal(t, a.History(), restored.History())
	assert.Equal(t, a.SessionID(), restored.SessionID())

	answer, err := restored.Run(context.Background(), "And then?")
	require.NoError(t, err)
	assert.Equal(t, "reply 4 to And then?", answer)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 4, restored.Len())
}
