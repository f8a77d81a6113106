// Package config loads agent definitions from files and process settings from
// the environment.
//
// An agent file is JSON or YAML:
//
//	{
//	  "name": "poet",
//	  "description": "You answer in rhyme.",
//	  "ai_config": {"provider": "openrouter", "model": "claude-3-haiku"}
//	}
//
// Credentials are never read from agent files; they come from Settings.
package config
