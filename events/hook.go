package events

import (
	"context"
	"log/slog"

	"github.com/casualjim/brainstorm/messages"
	"github.com/casualjim/brainstorm/pkg/slogx"
)

// Hook receives the events of agent runs.
type Hook interface {
	OnUserPrompt(context.Context, messages.Message)
	OnAssistantChunk(context.Context, Chunk)
	OnAssistantMessage(context.Context, messages.Message)
	OnError(context.Context, error)
}

// Publisher fans events out to whoever listens.
type Publisher interface {
	Publish(context.Context, Event) error
}

// Dispatch calls the hook method that matches event. Delimiters are dropped.
func Dispatch(ctx context.Context, hook Hook, event Event) {
	switch ev := event.(type) {
	case Request:
		hook.OnUserPrompt(ctx, ev.Message)
	case Chunk:
		hook.OnAssistantChunk(ctx, ev)
	case Response:
		hook.OnAssistantMessage(ctx, ev.Message)
	case Error:
		hook.OnError(ctx, ev.Err)
	}
}

// NewCompositeHook calls every hook in order.
func NewCompositeHook(hooks ...Hook) Hook {
	return compositeHook(hooks)
}

type compositeHook []Hook

func (c compositeHook) OnUserPrompt(ctx context.Context, msg messages.Message) {
	for _, h := range c {
		h.OnUserPrompt(ctx, msg)
	}
}

func (c compositeHook) OnAssistantChunk(ctx context.Context, chunk Chunk) {
	for _, h := range c {
		h.OnAssistantChunk(ctx, chunk)
	}
}

func (c compositeHook) OnAssistantMessage(ctx context.Context, msg messages.Message) {
	for _, h := range c {
		h.OnAssistantMessage(ctx, msg)
	}
}

func (c compositeHook) OnError(ctx context.Context, err error) {
	for _, h := range c {
		h.OnError(ctx, err)
	}
}

// LoggingHook writes every event to logger at debug level, errors at error level.
func LoggingHook(logger *slog.Logger) Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingHook{logger: logger.With(slogx.LoggerName("events"))}
}

type loggingHook struct {
	logger *slog.Logger
}

func (l *loggingHook) OnUserPrompt(ctx context.Context, msg messages.Message) {
	l.logger.DebugContext(ctx, "user prompt", slog.String("sender", msg.Sender), slog.String("content", msg.Content))
}

func (l *loggingHook) OnAssistantChunk(ctx context.Context, chunk Chunk) {
	l.logger.DebugContext(ctx, "assistant chunk", slog.Int("index", chunk.Index), slog.String("content", chunk.Content))
}

func (l *loggingHook) OnAssistantMessage(ctx context.Context, msg messages.Message) {
	l.logger.DebugContext(ctx, "assistant message", slog.String("sender", msg.Sender), slog.Int("length", len(msg.Content)))
}

func (l *loggingHook) OnError(ctx context.Context, err error) {
	l.logger.ErrorContext(ctx, "run failed", slogx.Error(err))
}
