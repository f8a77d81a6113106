// Package repl runs an interactive conversation with an agent.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/casualjim/brainstorm/agent"
	"github.com/casualjim/brainstorm/internal/msgfmt"
	"github.com/fatih/color"
)

const (
	cmdExit    = "/exit"
	cmdReset   = "/reset"
	cmdHistory = "/history"
	cmdUsage   = "/usage"
)

// Options tune a session.
type Options struct {
	Stream   bool
	Renderer msgfmt.Renderer
	// AfterTurn runs after every successful exchange, e.g. to save the
	// conversation.
	AfterTurn func(*agent.Agent) error
}

// Run reads prompts from in until it is exhausted or the user exits. A failed
// turn is reported and the session continues with the conversation unchanged.
func Run(ctx context.Context, in io.Reader, out io.Writer, a *agent.Agent, opts Options) error {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanLines)

	for {
		fmt.Fprintf(out, "%s: ", color.CyanString("User"))
		if !scanner.Scan() {
			fmt.Fprintln(out, "Exiting...")
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "exit"), input == cmdExit:
			return nil
		case input == cmdReset:
			a.Reset()
			fmt.Fprintln(out, color.YellowString("conversation reset"))
			continue
		case input == cmdHistory:
			for _, m := range a.History() {
				fmt.Fprintln(out, m.String())
			}
			continue
		case input == cmdUsage:
			u := a.Usage()
			fmt.Fprintf(out, "prompt=%d completion=%d total=%d\n", u.PromptTokens, u.CompletionTokens, u.TotalTokens)
			continue
		}

		if err := turn(ctx, out, a, input, opts); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			fmt.Fprintf(out, "%s %v\n", color.RedString("Error:"), err)
			continue
		}
		if opts.AfterTurn != nil {
			if err := opts.AfterTurn(a); err != nil {
				return err
			}
		}
	}
}

func turn(ctx context.Context, out io.Writer, a *agent.Agent, prompt string, opts Options) error {
	prefix := color.MagentaString(a.Name()) + ": "
	if !opts.Stream {
		answer, err := a.Run(ctx, prompt)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, prefix+msgfmt.Render(opts.Renderer, answer))
		return nil
	}

	var started bool
	_, err := a.Run(ctx, prompt, agent.Streaming(true), agent.StreamHandler(func(chunk string) {
		if !started {
			started = true
			fmt.Fprint(out, prefix)
		}
		fmt.Fprint(out, chunk)
	}))
	if started {
		fmt.Fprintln(out)
	}
	return err
}
