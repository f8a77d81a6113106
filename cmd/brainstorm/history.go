package main

import (
	"context"
	"path/filepath"

	"github.com/casualjim/brainstorm"
	"github.com/casualjim/brainstorm/agent"
	"github.com/casualjim/brainstorm/config"
	"github.com/casualjim/brainstorm/shorttermmemory"
	"github.com/go-openapi/swag"
)

// autoHistory is the --history value that picks a file named after the agent.
const autoHistory = "auto"

func historyPath(dir, agentName, flag string) string {
	if flag != autoHistory {
		return flag
	}
	return filepath.Join(dir, swag.ToFileName(agentName)+".json")
}

func loadHistory(path string) (agent.Option, error) {
	memory, err := shorttermmemory.Load(path)
	if err != nil {
		return nil, err
	}
	return agent.Memory(memory), nil
}

func saveHistory(path string, a *agent.Agent) error {
	return shorttermmemory.Save(path, a.Checkpoint())
}

// loadAgent builds the agent called name. When history is set the
// conversation is restored from the history file, which is named after the
// agent as configured, not as typed. The returned path is empty without
// history.
func (a *app) loadAgent(ctx context.Context, name, history string, options ...agent.Option) (*agent.Agent, string, error) {
	registry, err := a.settings.Models()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Find(ctx, a.settings.AgentsDir, name)
	if err != nil {
		return nil, "", err
	}

	path := ""
	if history != "" {
		path = historyPath(a.settings.HistoryDir, cfg.Name, history)
		memory, err := loadHistory(path)
		if err != nil {
			return nil, "", err
		}
		options = append(options, memory)
	}

	ag, err := brainstorm.NewAgent(cfg, a.settings, registry, options...)
	if err != nil {
		return nil, "", err
	}
	return ag, path, nil
}
