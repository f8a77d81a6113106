// Package openai implements provider.Provider on top of the official openai-go
// client. Any endpoint speaking the OpenAI chat completions protocol works, which
// is how provider/openrouter reuses it.
//
// The client is built without automatic retries: failures surface to the caller
// immediately, classified as provider or network errors (see pkg/errs).
//
// Example usage:
//
//	prov := openai.New(option.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	events, err := prov.ChatCompletion(ctx, provider.CompletionParams{
//	    RunID:    uuidx.New(),
//	    Model:    openai.DefaultModel,
//	    Messages: []messages.Message{messages.User("Tell me a joke!")},
//	})
package openai
