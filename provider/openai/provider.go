package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/casualjim/brainstorm/messages"
	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/casualjim/brainstorm/pkg/slogx"
	"github.com/casualjim/brainstorm/provider"
	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/go-openapi/strfmt"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is used when an agent doesn't name a model.
const DefaultModel = "gpt-4"

var _ provider.Provider = (*Provider)(nil)

type Provider struct {
	client *openai.Client
	name   string
}

// New creates a provider. Retries are disabled unless a later option turns them back on.
func New(options ...option.RequestOption) *Provider {
	opts := append([]option.RequestOption{option.WithMaxRetries(0)}, options...)
	return &Provider{
		client: openai.NewClient(opts...),
		name:   "openai",
	}
}

// WithBaseURL is option.WithBaseURL with the trailing slash the client needs
// to resolve endpoint paths below url.
func WithBaseURL(url string) option.RequestOption {
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return option.WithBaseURL(url)
}

// Named returns a copy of p that labels its errors and logs with name.
func (p *Provider) Named(name string) *Provider {
	return &Provider{client: p.client, name: name}
}

func (p *Provider) op() string {
	return p.name + ".chat_completion"
}

func (p *Provider) buildRequest(params *provider.CompletionParams) (openai.ChatCompletionNewParams, error) {
	if strings.TrimSpace(params.Model) == "" {
		return openai.ChatCompletionNewParams{}, errs.Validation(p.op(), "model is required")
	}
	if len(params.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, errs.Validation(p.op(), "at least one message is required")
	}

	msgs, user, err := messagesToOpenAI(params.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, errs.Validation(p.op(), err.Error())
	}

	oaiParams := openai.ChatCompletionNewParams{
		Messages: openai.F(msgs),
		Model:    openai.F(params.Model),
		N:        openai.Int(1),
	}
	if params.Stream {
		oaiParams.StreamOptions = openai.F(openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.F(true),
		})
	}
	if strings.TrimSpace(user) != "" {
		oaiParams.User = openai.String(user)
	}
	return oaiParams, nil
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	chatParams, err := p.buildRequest(&params)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "starting chat completion",
		slogx.LoggerName(p.name),
		slogx.RunID(params.RunID),
		slogx.Model(params.Model),
		slog.Bool("stream", params.Stream),
		slog.Int("messages", len(params.Messages)),
	)

	// one slot: the dispatcher never holds more than a single pending chunk
	events := make(chan provider.StreamEvent, 1)
	go func() {
		defer close(events)
		if params.Stream {
			p.runStream(ctx, chatParams, &params, events)
		} else {
			p.runOnce(ctx, chatParams, &params, events)
		}
	}()
	return events, nil
}

func send(ctx context.Context, events chan<- provider.StreamEvent, event provider.StreamEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Provider) sendError(ctx context.Context, events chan<- provider.StreamEvent, command *provider.CompletionParams, err error) {
	send(ctx, events, provider.Error{
		RunID:     command.RunID,
		Err:       err,
		Timestamp: strfmt.DateTime(time.Now()),
	})
}

func (p *Provider) runStream(ctx context.Context, params openai.ChatCompletionNewParams, command *provider.CompletionParams, events chan<- provider.StreamEvent) {
	strm := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer strm.Close()

	var (
		started      bool
		index        int
		text         strings.Builder
		finishReason string
		model        string
		usage        shorttermmemory.Usage
	)

	for strm.Next() {
		chunk := strm.Current()
		if !started {
			started = true
			if !send(ctx, events, provider.Delim{RunID: command.RunID, Delim: provider.DelimStart}) {
				return
			}
		}
		if chunk.Model != "" {
			model = chunk.Model
		}
		if chunk.Usage.TotalTokens > 0 {
			usage = toUsage(chunk.Usage)
		}

		for _, choice := range chunk.Choices {
			if choice.Index != 0 {
				continue
			}
			if choice.FinishReason != "" {
				finishReason = string(choice.FinishReason)
			}
			if choice.Delta.Content == "" {
				continue
			}
			text.WriteString(choice.Delta.Content)
			ok := send(ctx, events, provider.Chunk{
				RunID:     command.RunID,
				Index:     index,
				Content:   choice.Delta.Content,
				Timestamp: strfmt.DateTime(time.Now()),
			})
			if !ok {
				return
			}
			index++
		}
	}

	if err := strm.Err(); err != nil {
		p.sendError(ctx, events, command, p.classify(err))
		return
	}
	if err := ctx.Err(); err != nil {
		p.sendError(ctx, events, command, err)
		return
	}
	if finishReason == "" {
		p.sendError(ctx, events, command, errs.Provider(p.op(), "stream ended before the completion signal", nil))
		return
	}

	if !send(ctx, events, provider.Delim{RunID: command.RunID, Delim: provider.DelimEnd}) {
		return
	}
	send(ctx, events, provider.Response{
		RunID:        command.RunID,
		Content:      text.String(),
		Model:        model,
		FinishReason: finishReason,
		Usage:        usage,
		Timestamp:    strfmt.DateTime(time.Now()),
	})
}

func (p *Provider) runOnce(ctx context.Context, params openai.ChatCompletionNewParams, command *provider.CompletionParams, events chan<- provider.StreamEvent) {
	chat, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		p.sendError(ctx, events, command, p.classify(err))
		return
	}
	if chat == nil || len(chat.Choices) == 0 {
		p.sendError(ctx, events, command, errs.Provider(p.op(), "response has no choices", nil))
		return
	}

	choice := chat.Choices[0]
	if choice.FinishReason == "" {
		p.sendError(ctx, events, command, errs.Provider(p.op(), "response has no completion signal", nil))
		return
	}
	send(ctx, events, provider.Response{
		RunID:        command.RunID,
		Content:      choice.Message.Content,
		Model:        chat.Model,
		FinishReason: string(choice.FinishReason),
		Usage:        toUsage(chat.Usage),
		Timestamp:    strfmt.DateTime(time.Now()),
	})
}

func (p *Provider) classify(err error) error {
	if err == nil || provider.IsCanceled(err) {
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return errs.Provider(p.op(), statusReason(apiErr.StatusCode), err)
	}
	if provider.IsTransportError(err) {
		return errs.Network(p.op(), err)
	}
	return errs.Provider(p.op(), "malformed response", err)
}

func statusReason(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "authentication failed"
	case status == http.StatusNotFound:
		return "model or endpoint not found"
	case status == http.StatusTooManyRequests:
		return "rate limited"
	case status >= http.StatusInternalServerError:
		return fmt.Sprintf("upstream failure (status %d)", status)
	case status >= http.StatusBadRequest:
		return fmt.Sprintf("request rejected (status %d)", status)
	default:
		return fmt.Sprintf("request failed (status %d)", status)
	}
}

func toUsage(u openai.CompletionUsage) shorttermmemory.Usage {
	return shorttermmemory.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

func messagesToOpenAI(msgs []messages.Message) ([]openai.ChatCompletionMessageParamUnion, string, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	var user string
	for i, msg := range msgs {
		switch msg.Role {
		case messages.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case messages.RoleUser:
			if msg.Sender != "" {
				user = msg.Sender
			}
			result = append(result, openai.UserMessage(msg.Content))
		case messages.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			return nil, "", fmt.Errorf("message %d has unknown role %q", i, msg.Role)
		}
	}
	return result, user, nil
}
