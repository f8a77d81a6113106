package main

import (
	"fmt"
	"log/slog"

	"github.com/casualjim/brainstorm/agent"
	"github.com/casualjim/brainstorm/events"
	"github.com/casualjim/brainstorm/internal/broker"
	"github.com/casualjim/brainstorm/internal/repl"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newChatCmd(a *app) *cobra.Command {
	var (
		stream  bool
		history string
	)
	cmd := &cobra.Command{
		Use:   "chat <agent>",
		Short: "Start an interactive conversation",
		Long:  "Start an interactive conversation. /reset starts over, /history shows the conversation, /usage the tokens spent and exit leaves.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Run events go to the debug log through a local topic.
			topic := broker.Local().Topic(ctx, "chat")
			sub, err := topic.Subscribe(ctx, events.LoggingHook(slog.Default()))
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()

			ag, path, err := a.loadAgent(ctx, args[0], history, agent.Publisher(topic))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.GreenString(ag.String()), color.HiBlackString("(%s)", ag.AI().Version()))

			var afterTurn func(*agent.Agent) error
			if path != "" {
				afterTurn = func(ag *agent.Agent) error { return saveHistory(path, ag) }
			}
			return repl.Run(ctx, cmd.InOrStdin(), out, ag, repl.Options{
				Stream:    stream,
				Renderer:  markdown(),
				AfterTurn: afterTurn,
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&stream, "stream", "s", true, "print answers while they are generated")
	flags.StringVar(&history, "history", "", "file that keeps the conversation between sessions; without a value one is named after the agent")
	flags.Lookup("history").NoOptDefVal = autoHistory
	return cmd
}
