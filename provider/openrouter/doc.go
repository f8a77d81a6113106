// Package openrouter talks to OpenRouter through its OpenAI compatible chat
// completions endpoint.
//
// Model names are OpenRouter identifiers of the form "vendor/model", for
// example "openai/gpt-4" or "anthropic/claude-3-opus". When a site URL or site
// name is configured they are sent as the HTTP-Referer and X-Title headers so
// the calls show up attributed on openrouter.ai.
package openrouter
