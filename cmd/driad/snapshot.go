package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/driad/internal/app"
	"github.com/dshills/driad/internal/font"
	"github.com/dshills/driad/internal/render"
)

func newSnapshotCommand(global *globalOptions) *cobra.Command {
	var (
		frames int
		out    string
		atlas  string
	)

	cmd := &cobra.Command{
		Use:   "snapshot [plugin-dir...]",
		Short: "Render frames with the bitmap font and save a PNG",
		Long: `Load and initialize plugins like run, draw --frames frames onto a canvas
using the configured CP437 font atlas and write the last frame as PNG.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.PluginDirs = args
			}
			if cmd.Flags().Changed("atlas") {
				cfg.Atlas.Path = atlas
			}
			if cfg.Atlas.Path == "" {
				return errors.New("no font atlas configured (set [atlas] path or --atlas)")
			}

			key, err := cfg.ColorKey()
			if err != nil {
				return err
			}
			f, err := font.Load(cfg.Atlas.Path, cfg.Atlas.GlyphWidth, cfg.Atlas.GlyphHeight, key)
			if err != nil {
				return err
			}
			for name, ext := range cfg.Atlas.Extensions {
				if err := f.LoadExtension(name, ext.Table, ext.Atlas, key); err != nil {
					return fmt.Errorf("atlas extension %s: %w", name, err)
				}
			}
			palette, err := cfg.ColorPalette()
			if err != nil {
				return err
			}

			logger := newLogger(cfg, cmd.ErrOrStderr())
			if n := len(f.Extensions); n > 0 {
				logger.Debug("loaded %d atlas extension(s)", n)
			}
			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			if _, err := application.LoadPlugins(cfg.PluginDirs...); err != nil {
				return err
			}
			if err := application.Start(); err != nil {
				return err
			}

			canvas := render.NewCanvas(f, cfg.Width, cfg.Height, palette)
			for range max(frames, 1) {
				if err := application.Frame(canvas); err != nil {
					return err
				}
			}
			logSummary(logger, application.Metrics())
			if n := canvas.Missing(); n > 0 {
				logger.Warn("%d glyph(s) not in code page 437 were drawn as '?'", n)
			}

			if err := canvas.SavePNG(out); err != nil {
				return err
			}
			logger.Info("wrote %s", out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&frames, "frames", "n", 1, "Number of frames to draw")
	flags.StringVarP(&out, "out", "o", "snapshot.png", "Output PNG path")
	flags.StringVar(&atlas, "atlas", "", "Font atlas PNG (overrides [atlas] path)")
	return cmd
}
