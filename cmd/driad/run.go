package main

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/driad/internal/app"
	"github.com/dshills/driad/internal/render"
)

type runOptions struct {
	frames   int
	fps      int
	strict   bool
	headless bool
	logFile  string
}

func newRunCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [plugin-dir...]",
		Short: "Load plugins and draw frames",
		Long: `Load every plugin package found in the given directories (or the configured
plugin_dirs), initialize them and draw frames until Escape, q or Ctrl-C.

A directory that holds a manifest or main.lua is one package; otherwise each
subdirectory that does is loaded, in name order.

When stdout is not a terminal, or --frames is set, frames are printed as text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("fps") {
				cfg.FPS = opts.fps
			}
			if cmd.Flags().Changed("strict") {
				cfg.Strict = opts.strict
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.PluginDirs = args
			}

			interactive := !opts.headless && opts.frames == 0 && term.IsTerminal(int(os.Stdout.Fd()))

			// Log lines would garble the screen; hold them until it is restored.
			var held bytes.Buffer
			logOut := io.Writer(cmd.ErrOrStderr())
			if opts.logFile != "" {
				f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logOut = f
			} else if interactive {
				logOut = &held
				defer func() { _, _ = cmd.ErrOrStderr().Write(held.Bytes()) }()
			}
			logger := newLogger(cfg, logOut)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			n, err := application.LoadPlugins(cfg.PluginDirs...)
			if err != nil {
				return err
			}
			logger.Info("loaded %d plugin(s)", n)

			if err := application.Start(); err != nil {
				return err
			}

			if !interactive {
				grid := render.NewGrid(cfg.Width, cfg.Height)
				grid.SetOutput(cmd.OutOrStdout())
				frames := opts.frames
				if frames == 0 {
					frames = 1
				}
				err := application.Run(cmd.Context(), grid, nil, frames)
				logSummary(logger, application.Metrics())
				return err
			}

			palette, err := cfg.ColorPalette()
			if err != nil {
				return err
			}
			terminal, err := render.NewTerminal(palette)
			if err != nil {
				return &app.StartError{Component: "terminal", Err: err}
			}
			if err := terminal.Init(); err != nil {
				return &app.StartError{Component: "terminal", Err: err}
			}
			defer terminal.Shutdown()

			err = application.Run(cmd.Context(), terminal, terminal.Events(), 0)
			logSummary(logger, application.Metrics())
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.frames, "frames", "n", 0, "Draw this many frames as text and exit")
	flags.IntVar(&opts.fps, "fps", 60, "Frames per second")
	flags.BoolVar(&opts.strict, "strict", false, "Abort on the first plugin that fails to load")
	flags.BoolVar(&opts.headless, "headless", false, "Print frames as text even on a terminal")
	flags.StringVar(&opts.logFile, "log-file", "", "Append logs to this file")

	return cmd
}

func logSummary(logger *app.Logger, m *app.Metrics) {
	snap := m.Snapshot()
	logger.Info("drew %d frame(s) in %v (avg %v, max %v), %d command(s), %d draw failure(s)",
		snap.Frames, snap.Uptime.Round(time.Millisecond), snap.AvgFrame, snap.MaxFrame,
		snap.Commands, snap.DrawFailures)
}
