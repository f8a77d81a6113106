package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/casualjim/brainstorm/agent"
	"github.com/casualjim/brainstorm/internal/broker"
	"github.com/casualjim/brainstorm/internal/msgfmt"
	"github.com/casualjim/brainstorm/pkg/natsx"
	"github.com/casualjim/brainstorm/pkg/slogx"
	"github.com/spf13/cobra"
)

type runFlags struct {
	stream  bool
	history string
	publish string
	timeout time.Duration
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <agent> <prompt>...",
		Short: "Send one prompt to an agent",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], strings.Join(args[1:], " "), f)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&f.stream, "stream", "s", false, "print the answer while it is generated")
	flags.StringVar(&f.history, "history", "", "file that keeps the conversation between runs; without a value one is named after the agent")
	flags.Lookup("history").NoOptDefVal = autoHistory
	flags.StringVar(&f.publish, "publish", "", "NATS subject to publish the run events on")
	flags.DurationVar(&f.timeout, "timeout", 0, "give up after this long (default $BRAINSTORM_REQUEST_TIMEOUT, none when unset)")
	return cmd
}

func (a *app) run(cmd *cobra.Command, name, prompt string, f runFlags) error {
	ctx := cmd.Context()
	if timeout := firstPositive(f.timeout, a.settings.RequestTimeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var options []agent.Option
	if f.publish != "" {
		conn, err := natsx.NewClient(a.settings.NATSURL)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer func() {
			if err := conn.Drain(); err != nil {
				slog.Warn("failed to drain nats connection", slogx.Error(err))
			}
		}()
		options = append(options, agent.Publisher(broker.NATS(conn).Topic(ctx, f.publish)))
	}

	ag, path, err := a.loadAgent(ctx, name, f.history, options...)
	if err != nil {
		return err
	}
	slog.Debug("agent loaded", slogx.Agent(ag.Name()), slog.String("ai", ag.AI().Version()))

	out := cmd.OutOrStdout()
	if f.stream {
		_, err = ag.Run(ctx, prompt, agent.Streaming(true), agent.StreamHandler(func(chunk string) {
			fmt.Fprint(out, chunk)
		}))
		fmt.Fprintln(out)
	} else {
		var answer string
		if answer, err = ag.Run(ctx, prompt); err == nil {
			fmt.Fprintln(out, msgfmt.Render(markdown(), answer))
		}
	}
	if err != nil {
		return err
	}

	if path != "" {
		return saveHistory(path, ag)
	}
	return nil
}

func firstPositive(flag, setting time.Duration) time.Duration {
	if flag > 0 {
		return flag
	}
	return setting
}

// markdown returns the terminal renderer, or nil when the terminal can't be
// styled.
func markdown() msgfmt.Renderer {
	r, err := msgfmt.Markdown()
	if err != nil {
		slog.Debug("markdown rendering unavailable", slogx.Error(err))
		return nil
	}
	return r
}
