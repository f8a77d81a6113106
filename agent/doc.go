// Package agent turns prompts into answers while keeping the conversation.
//
// An Agent has a name, a description that becomes the system prompt of every
// request, an *ai.AI to talk to, and its own conversation memory. Run sends
// the system prompt, the history so far and the new prompt; when the answer
// is complete the prompt and the answer are appended to the history together.
// A run that fails for any reason, including a stream that breaks halfway,
// leaves the history exactly as it was.
//
//	poet, err := agent.New(
//	    agent.Name("poet"),
//	    agent.Description("You answer in rhyme."),
//	    agent.AI(model),
//	)
//	if err != nil {
//	    return err
//	}
//
//	answer, err := poet.Run(ctx, "Hello", agent.Streaming(true), agent.StreamHandler(func(s string) {
//	    fmt.Print(s)
//	}))
//
// Runs on the same agent are serialized. The stream handler runs while the
// agent is busy, so it must not call back into the same agent.
package agent
