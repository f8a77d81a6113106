package agent

import (
	"log/slog"

	"github.com/casualjim/brainstorm/ai"
	"github.com/casualjim/brainstorm/events"
	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/casualjim/brainstorm/tool"
	"github.com/fogfish/opts"
)

type config struct {
	name        string
	description string
	ai          *ai.AI
	tools       []tool.Definition
	memory      *shorttermmemory.Aggregator
	publisher   events.Publisher
	logger      *slog.Logger
}

// Option configures an Agent.
type Option = opts.Option[config]

var (
	Name        = opts.ForName[config, string]("name")
	Description = opts.ForName[config, string]("description")
	AI          = opts.ForName[config, *ai.AI]("ai")

	// Memory seeds the agent with an existing conversation, usually one
	// restored from a checkpoint.
	Memory = opts.ForName[config, *shorttermmemory.Aggregator]("memory")

	// Publisher receives the events of every run.
	Publisher = opts.ForName[config, events.Publisher]("publisher")
	Logger    = opts.ForName[config, *slog.Logger]("logger")
)

// Tools attaches tool definitions to the agent. They are validated and kept
// for the caller; the agent itself never calls them.
func Tools(defs ...tool.Definition) Option {
	return opts.Type[config](func(c *config) error {
		c.tools = append(c.tools, defs...)
		return nil
	})
}

type runConfig struct {
	stream  bool
	handler func(string)
}

// RunOption configures a single call to Run.
type RunOption = opts.Option[runConfig]

var (
	// Streaming asks for the answer to be delivered fragment by fragment.
	Streaming = opts.ForName[runConfig, bool]("stream")

	// StreamHandler receives every fragment, in order, on the calling
	// goroutine. It is required when streaming.
	StreamHandler = opts.ForName[runConfig, func(string)]("handler")
)
