// Package provider abstracts the hosted chat completion APIs brainstorm talks to.
//
// A Provider turns a CompletionParams into an ordered, finite channel of
// StreamEvent values. The channel is closed once the request is over, whatever
// the outcome:
//
//   - non streaming: a single Response, or a single Error.
//   - streaming: Delim{"start"}, one Chunk per non-empty text fragment in arrival
//     order, Delim{"end"}, then a Response whose Content is the concatenation of
//     every chunk. A failure at any point ends the stream with an Error.
//
// Example usage:
//
//	events, err := prov.ChatCompletion(ctx, provider.CompletionParams{
//	    RunID:    uuidx.New(),
//	    Model:    "gpt-4",
//	    Messages: msgs,
//	    Stream:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	for event := range events {
//	    switch e := event.(type) {
//	    case provider.Chunk:
//	        fmt.Print(e.Content)
//	    case provider.Response:
//	        // complete text, usage, finish reason
//	    case provider.Error:
//	        return e
//	    }
//	}
//
// The set of providers is closed: Kind enumerates them and provider/openai and
// provider/openrouter implement them. Selection happens once, when an AI is built.
package provider
