// Package shorttermmemory holds the conversation history of a single agent
// session together with the token usage reported for it.
//
// An Aggregator is an ordered, append-only log of messages. It never contains
// the system prompt: agents prepend that at request time.
//
// Turns are transactional. A turn works on a Fork of the aggregator and is merged
// back with Join only once the full response is known, so a failed or abandoned
// turn leaves the original history untouched:
//
//	turn := history.Fork()
//	turn.AddUserPrompt(messages.User("Hello"))
//	// ... call the provider ...
//	turn.AddAssistantMessage(messages.Assistant(reply))
//	history.Join(turn)
//
// Checkpoints are immutable snapshots with a JSON form; Save and Load persist them
// to disk so a session can be resumed later.
//
// Memory is unbounded. There is no eviction or context-window truncation.
package shorttermmemory
