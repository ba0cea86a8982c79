package main

import (
	"fmt"
	"mpdkit/internal/config"
	"mpdkit/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// commandContext carries the state shared by every subcommand.
type commandContext struct {
	configFlag   string
	logLevelFlag string

	cfg *config.Config
	log logger.Logger
}

// ensureConfig loads the configuration file once and applies flag overrides.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg := config.Default()
	if c.configFlag != "" {
		loaded, err := config.LoadConfig(c.configFlag)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.logLevelFlag != "" {
		cfg.LogLevel = c.logLevelFlag
	}

	c.cfg = cfg
	c.log = logger.NewLogger(cfg.LogLevel, zerolog.SyncWriter(cmd.ErrOrStderr()))
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "mpdtool",
		Short:         "Inspect DASH manifest timelines, templates and attribute values",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(cmd); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path (YAML)")
	rootCmd.PersistentFlags().StringVarP(&ctx.logLevelFlag, "log-level", "L", "", "Log level (error, warn, info, debug)")

	rootCmd.AddCommand(newTimelineCommand(ctx))
	rootCmd.AddCommand(newTemplateCommand(ctx))
	rootCmd.AddCommand(newParseCommand(ctx))

	return rootCmd
}
