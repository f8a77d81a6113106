package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/casualjim/brainstorm/models"
	"github.com/casualjim/brainstorm/pkg/errs"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	var providerName, category string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the known models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := a.settings.Models()
			if err != nil {
				return err
			}

			list := registry.All()
			if providerName != "" {
				list = registry.ByProvider(providerName)
			}
			if category != "" {
				c, err := models.ParseCategory(category)
				if err != nil {
					return err
				}
				list = filterCategory(list, c)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, m := range list {
				name := m.Name
				if m.IsExperimental {
					name += color.YellowString(" (experimental)")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Provider, color.GreenString(name), m.Category, m.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "only models of this provider")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only models in this category")
	cmd.AddCommand(newModelsShowCmd(a))
	return cmd
}

func newModelsShowCmd(a *app) *cobra.Command {
	var providerName string
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show everything known about a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.settings.Models()
			if err != nil {
				return err
			}

			var (
				info models.Info
				ok   bool
			)
			if providerName != "" {
				info, ok = registry.Lookup(providerName, args[0])
			} else {
				info, ok = registry.Get(args[0])
			}
			if !ok {
				return errs.Configf("models.show", "unknown model %q", args[0])
			}

			printer := pp.New()
			printer.SetColoringEnabled(!color.NoColor)
			_, err = printer.Fprintln(cmd.OutOrStdout(), info)
			return err
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider the model belongs to")
	return cmd
}

func filterCategory(list []models.Info, c models.Category) []models.Info {
	out := list[:0:0]
	for _, m := range list {
		if m.Category == c {
			out = append(out, m)
		}
	}
	return out
}
