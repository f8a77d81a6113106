package main

import (
	"fmt"
	"log/slog"

	"github.com/casualjim/brainstorm/internal/broker"
	"github.com/casualjim/brainstorm/internal/msgfmt"
	"github.com/casualjim/brainstorm/pkg/natsx"
	"github.com/casualjim/brainstorm/pkg/slogx"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <subject>",
		Short: "Print the events published on a NATS subject until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := natsx.NewClient(a.settings.NATSURL)
			if err != nil {
				return fmt.Errorf("connect to nats: %w", err)
			}
			defer conn.Close()

			topic := broker.NATS(conn).Topic(ctx, args[0])
			sub, err := topic.Subscribe(ctx, msgfmt.Console(cmd.OutOrStdout(), markdown()))
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()

			slog.Info("watching", slog.String("subject", args[0]), slog.String("server", conn.ConnectedUrl()))
			<-ctx.Done()
			if err := ctx.Err(); err != nil {
				slog.Debug("watch stopped", slogx.Error(err))
			}
			return nil
		},
	}
}
