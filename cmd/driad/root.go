package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/driad/internal/app"
	"github.com/dshills/driad/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	engine     string
}

// NewRootCommand builds the driad command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "driad",
		Short: "driad - a host for Lua drawing plugins",
		Long: `driad loads plugin packages (a TOML manifest plus a main.lua entry script),
initializes them in order and polls each plugin's draw_pass once per frame.

Loading a plugin runs its script with full interpreter privileges. Only
directories listed under "trusted" in the configuration (or the plugin dirs
themselves when none are listed) are loaded.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "driad.toml", "Path to configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.engine, "engine", "", "Script engine (gopher-lua, go-lua)")

	rootCmd.AddCommand(
		newRunCommand(opts),
		newInspectCommand(opts),
		newSnapshotCommand(opts),
	)

	return rootCmd
}

// loadConfig layers flags over the file and environment.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	required := cmd.Flags().Changed("config")
	cfg, err := config.Load(o.configPath, required)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = o.engine
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *app.Logger {
	lc := app.DefaultLoggerConfig()
	lc.Level = app.ParseLogLevel(cfg.LogLevel)
	lc.Output = w
	return app.NewLogger(lc)
}
