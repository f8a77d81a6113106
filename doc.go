/*
Package brainstorm wires agent files, environment settings and the model
catalog into ready to use agents.

The building blocks live in their own packages:

  - ai: a provider and model binding with blocking and streaming completion
  - agent: a named conversation that keeps its history between runs
  - config: agent files and environment settings
  - models: the catalog of known models per provider
  - events: what a run publishes while it progresses

# Basic Usage

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	poet, err := brainstorm.LoadAgent(ctx, settings, "poet")
	if err != nil {
		return err
	}

	answer, err := poet.Run(ctx, "Hello")

Agents built here read their credentials from the environment only. Agent
files name a provider and a model, never a key.
*/
package brainstorm
