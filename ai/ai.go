package ai

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/casualjim/brainstorm/messages"
	"github.com/casualjim/brainstorm/models"
	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/pkg/slogx"
	"github.com/casualjim/brainstorm/pkg/uuidx"
	"github.com/casualjim/brainstorm/provider"
	oai "github.com/casualjim/brainstorm/provider/openai"
	"github.com/casualjim/brainstorm/provider/openrouter"
	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/fogfish/opts"
	"github.com/google/uuid"
	"github.com/openai/openai-go/option"
)

// AI is an immutable binding of provider, credential and model.
type AI struct {
	kind    provider.Kind
	model   string
	modelID string
	info    models.Info
	known   bool
	client  provider.Provider
}

// New validates the options and builds the provider client. Configuration
// problems are reported here, before any request is made.
func New(options ...Option) (*AI, error) {
	cfg := config{kind: provider.OpenAI}
	if err := opts.Apply(&cfg, options); err != nil {
		return nil, errs.Config("ai.new", "invalid option", err)
	}
	switch cfg.kind {
	case provider.OpenAI, provider.OpenRouter:
	default:
		return nil, errs.Configf("ai.new", "unknown provider kind %d", uint8(cfg.kind))
	}

	if cfg.model = strings.TrimSpace(cfg.model); cfg.model == "" {
		cfg.model = DefaultModel(cfg.kind)
	}
	if cfg.registry == nil {
		cfg.registry = models.Default()
	}

	client := cfg.client
	if client == nil {
		var err error
		if client, err = newClient(&cfg); err != nil {
			return nil, err
		}
	}

	a := &AI{
		kind:    cfg.kind,
		model:   cfg.model,
		modelID: cfg.registry.Resolve(cfg.kind.String(), cfg.model),
		client:  client,
	}
	a.info, a.known = cfg.registry.Lookup(cfg.kind.String(), cfg.model)
	return a, nil
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(kind provider.Kind) string {
	if kind == provider.OpenRouter {
		return openrouter.DefaultModel
	}
	return oai.DefaultModel
}

func newClient(cfg *config) (provider.Provider, error) {
	if strings.TrimSpace(cfg.apiKey) == "" {
		return nil, errs.Configf("ai.new", "missing API key for %s", cfg.kind.DisplayName())
	}

	if cfg.kind == provider.OpenRouter {
		p, err := openrouter.New(
			openrouter.APIKey(cfg.apiKey),
			openrouter.SiteURL(cfg.siteURL),
			openrouter.SiteName(cfg.siteName),
			openrouter.WithBaseURL(cfg.baseURL),
		)
		if err != nil {
			return nil, errs.Config("ai.new", "invalid openrouter configuration", err)
		}
		return p, nil
	}

	ropts := []option.RequestOption{option.WithAPIKey(cfg.apiKey)}
	if strings.TrimSpace(cfg.baseURL) != "" {
		ropts = append(ropts, oai.WithBaseURL(cfg.baseURL))
	}
	return oai.New(ropts...), nil
}

// Kind returns the selected provider.
func (a *AI) Kind() provider.Kind {
	return a.kind
}

// Model returns the configured model name.
func (a *AI) Model() string {
	return a.model
}

// ModelID returns the identifier sent to the provider.
func (a *AI) ModelID() string {
	return a.modelID
}

// ModelInfo returns the catalog entry for the model, if there is one.
func (a *AI) ModelInfo() (models.Info, bool) {
	return a.info, a.known
}

// Version describes the provider and model, e.g. "OpenAI Provider (Model: gpt-4)".
func (a *AI) Version() string {
	return fmt.Sprintf("%s Provider (Model: %s)", a.kind.DisplayName(), a.model)
}

func (a *AI) String() string {
	return a.Version()
}

// Completion is the outcome of a successful request.
type Completion struct {
	RunID        uuid.UUID
	Content      string
	Model        string
	FinishReason string
	Usage        shorttermmemory.Usage
}

// Request describes a single generation.
type Request struct {
	// RunID labels the provider events; a new one is generated when zero.
	RunID    uuid.UUID
	Messages []messages.Message
	// Stream requests incremental delivery; OnChunk then sees every fragment.
	Stream  bool
	OnChunk func(provider.Chunk)
}

// Complete sends msgs and waits for the full answer.
func (a *AI) Complete(ctx context.Context, msgs []messages.Message) (string, error) {
	c, err := a.Generate(ctx, Request{Messages: msgs})
	if err != nil {
		return "", err
	}
	return c.Content, nil
}

// CompleteStream sends msgs with streaming enabled, calls onChunk for each
// fragment and returns the full answer.
func (a *AI) CompleteStream(ctx context.Context, msgs []messages.Message, onChunk func(string)) (string, error) {
	if onChunk == nil {
		return "", errs.Validation("ai.complete_stream", "a chunk handler is required")
	}
	c, err := a.Generate(ctx, Request{
		Messages: msgs,
		Stream:   true,
		OnChunk:  func(c provider.Chunk) { onChunk(c.Content) },
	})
	if err != nil {
		return "", err
	}
	return c.Content, nil
}

// Generate runs one request and drains the provider stream. OnChunk runs on
// the calling goroutine; while it runs the provider holds at most one more
// fragment.
func (a *AI) Generate(ctx context.Context, req Request) (Completion, error) {
	const op = "ai.generate"
	if len(req.Messages) == 0 {
		return Completion{}, errs.Validation(op, "at least one message is required")
	}
	if req.RunID == uuid.Nil {
		req.RunID = uuidx.New()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := a.client.ChatCompletion(ctx, provider.CompletionParams{
		RunID:    req.RunID,
		Model:    a.modelID,
		Messages: req.Messages,
		Stream:   req.Stream,
	})
	if err != nil {
		return Completion{}, err
	}

	var (
		text     strings.Builder
		chunks   int
		response *provider.Response
	)
	for ev := range stream {
		switch ev := ev.(type) {
		case provider.Chunk:
			text.WriteString(ev.Content)
			chunks++
			if req.OnChunk != nil {
				req.OnChunk(ev)
			}
		case provider.Response:
			// A response that arrives after cancellation doesn't count.
			if ctx.Err() == nil {
				response = &ev
			}
		case provider.Error:
			slog.DebugContext(ctx, "completion failed", slogx.RunID(req.RunID), slogx.Error(ev.Err))
			return Completion{}, ev.Err
		}
	}

	if response == nil {
		if err := ctx.Err(); err != nil {
			return Completion{}, err
		}
		return Completion{}, errs.Provider(op, "stream closed without a response", nil)
	}

	content := response.Content
	if req.Stream && chunks > 0 {
		content = text.String()
	}
	return Completion{
		RunID:        req.RunID,
		Content:      content,
		Model:        response.Model,
		FinishReason: response.FinishReason,
		Usage:        response.Usage,
	}, nil
}

// Chunks streams the answer to msgs as an iterator. Every range over the
// returned sequence issues a new request. A failure is yielded once as the
// error, after which the sequence ends; breaking out of the loop cancels the
// request.
func (a *AI) Chunks(ctx context.Context, msgs []messages.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if len(msgs) == 0 {
			yield("", errs.Validation("ai.chunks", "at least one message is required"))
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream, err := a.client.ChatCompletion(ctx, provider.CompletionParams{
			RunID:    uuidx.New(),
			Model:    a.modelID,
			Messages: msgs,
			Stream:   true,
		})
		if err != nil {
			yield("", err)
			return
		}

		var done bool
		for ev := range stream {
			switch ev := ev.(type) {
			case provider.Chunk:
				if !yield(ev.Content, nil) {
					return
				}
			case provider.Response:
				done = ctx.Err() == nil
			case provider.Error:
				yield("", ev.Err)
				return
			}
		}

		if done {
			return
		}
		if err := ctx.Err(); err != nil {
			yield("", err)
			return
		}
		yield("", errs.Provider("ai.chunks", "stream closed without a response", nil))
	}
}
