package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/casualjim/brainstorm/ai"
	"github.com/casualjim/brainstorm/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAgentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the configured agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configs, err := config.LoadDir(cmd.Context(), a.settings.AgentsDir)
			if err != nil {
				return err
			}
			if len(configs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no agents in %s\n", a.settings.AgentsDir)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, cfg := range configs {
				model := cfg.AI.Model
				if model == "" {
					model = ai.DefaultModel(cfg.AI.Provider)
				}
				fmt.Fprintf(tw, "%s\t%s/%s\t%s\n", color.GreenString(cfg.Name), cfg.AI.Provider, model, cfg.Description)
			}
			return tw.Flush()
		},
	}
}
