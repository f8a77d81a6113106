// Package ai binds a completion provider, its credential and a model into a
// single value that agents share.
//
//	model, err := ai.New(
//	    ai.Provider(provider.OpenRouter),
//	    ai.APIKey(os.Getenv("OPENROUTER_API_KEY")),
//	    ai.Model("claude-3-opus"),
//	)
//
// Model names are looked up in the model catalog (see package models) and
// replaced by the identifier the provider expects; names the catalog doesn't
// know are sent as they are.
//
// Complete blocks until the whole answer is available. CompleteStream calls
// onChunk for every fragment, on the calling goroutine and in order, and then
// returns the full text, which is always the concatenation of the fragments.
// Chunks offers the same stream as an iterator; leaving the loop early cancels
// the request.
//
// An AI never retries and never keeps state between calls, so it can be used
// by any number of agents at once.
package ai
