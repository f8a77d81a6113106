package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/casualjim/brainstorm/ai"
	"github.com/casualjim/brainstorm/events"
	"github.com/casualjim/brainstorm/messages"
	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/pkg/slogx"
	"github.com/casualjim/brainstorm/pkg/uuidx"
	"github.com/casualjim/brainstorm/provider"
	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/casualjim/brainstorm/tool"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// Agent is a named conversation with a model. It is safe for concurrent use;
// runs are executed one at a time.
type Agent struct {
	name        string
	description string
	ai          *ai.AI
	tools       []tool.Definition

	publisher events.Publisher
	logger    *slog.Logger

	mu     sync.Mutex
	memory *shorttermmemory.Aggregator
}

// New builds an agent. An AI is required.
func New(options ...Option) (*Agent, error) {
	const op = "agent.new"

	var cfg config
	if err := opts.Apply(&cfg, options); err != nil {
		return nil, errs.Config(op, "invalid option", err)
	}
	if cfg.ai == nil {
		return nil, errs.Config(op, "an AI is required", nil)
	}
	if cfg.name = strings.TrimSpace(cfg.name); cfg.name == "" {
		return nil, errs.Config(op, "a name is required", nil)
	}

	seen := make(map[string]struct{}, len(cfg.tools))
	for _, t := range cfg.tools {
		if err := t.Validate(); err != nil {
			return nil, errs.Config(op, fmt.Sprintf("invalid tool %q", t.Name), err)
		}
		if _, dup := seen[t.Name]; dup {
			return nil, errs.Configf(op, "duplicate tool %q", t.Name)
		}
		seen[t.Name] = struct{}{}
	}

	if cfg.memory == nil {
		cfg.memory = shorttermmemory.New()
	}
	if err := cfg.memory.Validate(); err != nil {
		return nil, errs.Config(op, "invalid memory", err)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return &Agent{
		name:        cfg.name,
		description: cfg.description,
		ai:          cfg.ai,
		tools:       cfg.tools,
		publisher:   cfg.publisher,
		logger:      cfg.logger.With(slogx.Agent(cfg.name)),
		memory:      cfg.memory,
	}, nil
}

func (a *Agent) Name() string        { return a.name }
func (a *Agent) Description() string { return a.description }
func (a *Agent) AI() *ai.AI          { return a.ai }

// Tools returns a copy of the attached tool definitions.
func (a *Agent) Tools() []tool.Definition {
	return append([]tool.Definition(nil), a.tools...)
}

func (a *Agent) String() string {
	return fmt.Sprintf("%s: %s", a.name, a.description)
}

// SessionID identifies the current conversation. It changes on Reset.
func (a *Agent) SessionID() uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.ID()
}

// History returns a snapshot of the conversation, without the system prompt.
func (a *Agent) History() []messages.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.Messages()
}

// Len returns the number of messages in the conversation.
func (a *Agent) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.Len()
}

// Usage returns the tokens spent on the conversation so far.
func (a *Agent) Usage() shorttermmemory.Usage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.Usage()
}

// Checkpoint snapshots the conversation for persistence.
func (a *Agent) Checkpoint() shorttermmemory.Checkpoint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.Checkpoint()
}

// Reset forgets the conversation and starts a new session.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory.Reset()
	a.logger.Debug("conversation reset", slog.String("session_id", a.memory.ID().String()))
}

// Run sends prompt, together with the system prompt and the conversation so
// far, and returns the answer. The prompt and the answer are added to the
// conversation only when the run succeeds.
func (a *Agent) Run(ctx context.Context, prompt string, options ...RunOption) (string, error) {
	const op = "agent.run"

	var rc runConfig
	if err := opts.Apply(&rc, options); err != nil {
		return "", errs.Validation(op, err.Error())
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errs.Validation(op, "prompt must not be empty")
	}
	if rc.stream && rc.handler == nil {
		return "", errs.Validation(op, "a stream handler is required when streaming")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	r := &run{
		agent:     a,
		id:        uuidx.New(),
		sessionID: a.memory.ID(),
	}
	r.logger = a.logger.With(slogx.RunID(r.id))

	user := messages.User(prompt)
	user.Timestamp = now()

	turn := a.memory.Fork()
	request := make([]messages.Message, 0, turn.Len()+2)
	if strings.TrimSpace(a.description) != "" {
		request = append(request, messages.System(a.description))
	}
	request = append(request, turn.Messages()...)
	request = append(request, user)

	r.publish(ctx, events.Request{
		RunID:     r.id,
		SessionID: r.sessionID,
		Message:   user,
		Sender:    "user",
		Timestamp: user.Timestamp,
	})
	r.logger.DebugContext(ctx, "run started", slog.Bool("stream", rc.stream), slog.Int("history", turn.Len()))

	req := ai.Request{RunID: r.id, Messages: request, Stream: rc.stream}
	if rc.stream {
		req.OnChunk = func(c provider.Chunk) {
			r.chunk(ctx, c)
			rc.handler(c.Content)
		}
	}

	completion, err := a.ai.Generate(ctx, req)
	if err != nil {
		r.fail(ctx, err)
		return "", err
	}
	if r.started {
		r.publish(ctx, events.Delim{RunID: r.id, SessionID: r.sessionID, Delim: provider.DelimEnd})
	}

	answer := messages.Assistant(completion.Content).WithSender(a.name)
	answer.Timestamp = now()

	turn.AddUserPrompt(user)
	turn.AddAssistantMessage(answer)
	turn.AddUsage(completion.Usage)
	a.memory.Join(turn)

	r.publish(ctx, events.Response{
		RunID:        r.id,
		SessionID:    r.sessionID,
		Message:      answer,
		Model:        completion.Model,
		FinishReason: completion.FinishReason,
		Usage:        completion.Usage,
		Sender:       a.name,
		Timestamp:    answer.Timestamp,
	})
	r.logger.DebugContext(ctx, "run completed",
		slog.String("finish_reason", completion.FinishReason),
		slog.Int64("total_tokens", completion.Usage.TotalTokens),
	)
	return completion.Content, nil
}

type run struct {
	agent     *Agent
	id        uuid.UUID
	sessionID uuid.UUID
	logger    *slog.Logger
	started   bool
}

func (r *run) chunk(ctx context.Context, c provider.Chunk) {
	if !r.started {
		r.started = true
		r.publish(ctx, events.Delim{RunID: r.id, SessionID: r.sessionID, Delim: provider.DelimStart})
	}
	r.publish(ctx, events.FromStreamEvent(c, r.sessionID, r.agent.name))
}

func (r *run) fail(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) {
		r.logger.InfoContext(ctx, "run canceled")
	} else {
		r.logger.WarnContext(ctx, "run failed", slog.String("kind", errs.KindOf(err).String()), slogx.Error(err))
	}
	r.publish(context.WithoutCancel(ctx), events.Error{
		RunID:     r.id,
		SessionID: r.sessionID,
		Err:       err,
		Sender:    r.agent.name,
		Timestamp: now(),
	})
}

// publish hands an event to the publisher. Publishing problems are logged and
// never fail the run.
func (r *run) publish(ctx context.Context, ev events.Event) {
	if r.agent.publisher == nil {
		return
	}
	if err := r.agent.publisher.Publish(ctx, ev); err != nil {
		r.logger.WarnContext(ctx, "failed to publish event", slog.String("event", fmt.Sprintf("%T", ev)), slogx.Error(err))
	}
}

func now() strfmt.DateTime {
	return strfmt.DateTime(time.Now().UTC())
}
