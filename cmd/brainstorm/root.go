package main

import (
	"log/slog"

	"github.com/casualjim/brainstorm/config"
	"github.com/spf13/cobra"
)

type app struct {
	settings config.Settings

	agentsDir  string
	modelsFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "brainstorm",
		Short:         "Chat with configured agents over OpenAI and OpenRouter",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.agentsDir, "agents-dir", "", "directory with agent files (default $BRAINSTORM_AGENTS_DIR or ./agents)")
	flags.StringVar(&a.modelsFile, "models-file", "", "model catalog to use instead of the built-in one")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default $BRAINSTORM_LOG_LEVEL or info)")

	root.AddCommand(
		newRunCmd(a),
		newChatCmd(a),
		newAgentsCmd(a),
		newModelsCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if a.agentsDir != "" {
		settings.AgentsDir = a.agentsDir
	}
	if a.modelsFile != "" {
		settings.ModelsFile = a.modelsFile
	}
	if a.logLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
			return err
		}
		settings.LogLevel = level
	}
	a.settings = settings
	setupLogging(cmd.ErrOrStderr(), settings.LogLevel)
	return nil
}
