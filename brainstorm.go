package brainstorm

import (
	"context"

	"github.com/casualjim/brainstorm/agent"
	"github.com/casualjim/brainstorm/ai"
	"github.com/casualjim/brainstorm/config"
	"github.com/casualjim/brainstorm/models"
)

// NewAI binds cfg to a provider client using the credentials in settings.
func NewAI(cfg config.AIConfig, settings config.Settings, registry *models.Registry) (*ai.AI, error) {
	options, err := settings.AIOptions(cfg, registry)
	if err != nil {
		return nil, err
	}
	return ai.New(options...)
}

// NewAgent builds the agent described by cfg. Extra options are applied after
// the ones derived from cfg, so they can add a publisher, a logger or memory.
func NewAgent(cfg config.AgentConfig, settings config.Settings, registry *models.Registry, options ...agent.Option) (*agent.Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := NewAI(cfg.AI, settings, registry)
	if err != nil {
		return nil, err
	}
	return agent.New(append([]agent.Option{
		agent.Name(cfg.Name),
		agent.Description(cfg.Description),
		agent.AI(model),
	}, options...)...)
}

// LoadAgent finds the agent called name in the agents directory and builds it.
func LoadAgent(ctx context.Context, settings config.Settings, name string, options ...agent.Option) (*agent.Agent, error) {
	registry, err := settings.Models()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Find(ctx, settings.AgentsDir, name)
	if err != nil {
		return nil, err
	}
	return NewAgent(cfg, settings, registry, options...)
}

// LoadAgents builds every agent in the agents directory and adds them to
// agent.Global. Nothing is registered when one of them fails.
func LoadAgents(ctx context.Context, settings config.Settings, options ...agent.Option) ([]*agent.Agent, error) {
	registry, err := settings.Models()
	if err != nil {
		return nil, err
	}
	configs, err := config.LoadDir(ctx, settings.AgentsDir)
	if err != nil {
		return nil, err
	}

	agents := make([]*agent.Agent, 0, len(configs))
	for _, cfg := range configs {
		a, err := NewAgent(cfg, settings, registry, options...)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	for _, a := range agents {
		agent.Add(a)
	}
	return agents, nil
}
