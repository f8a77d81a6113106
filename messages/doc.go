// Package messages defines the chat messages exchanged with a completion provider.
//
// A conversation is an ordered sequence of Message values. Each message carries a
// role (system, user or assistant), its text content, an optional sender label and
// the time it was created. Messages are plain values: once created they are never
// mutated in place, and every collection handing them out returns copies.
//
// Example usage:
//
//	history := []messages.Message{
//	    messages.System("You are a helpful assistant"),
//	    messages.User("Hello").WithSender("alice"),
//	}
//
// The system message is never part of stored history; agents prepend it when a
// request is built.
package messages
