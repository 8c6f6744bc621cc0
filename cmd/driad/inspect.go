package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/driad/internal/app"
	"github.com/dshills/driad/internal/plugin"
)

// pluginReport is the inspect output.
type pluginReport struct {
	Name         string   `yaml:"name" json:"name"`
	Authors      []string `yaml:"authors" json:"authors"`
	Version      string   `yaml:"version" json:"version"`
	Dir          string   `yaml:"dir" json:"dir"`
	Engine       string   `yaml:"engine" json:"engine"`
	Capabilities []string `yaml:"capabilities" json:"capabilities"`
}

func newInspectCommand(global *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <plugin-dir>",
		Short: "Show a plugin's metadata and capabilities",
		Long: `Load one plugin package and print its manifest and the capabilities its
entry script declares. No capability is invoked, but main.lua itself runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig(cmd)
			if err != nil {
				return err
			}

			engine, err := app.NewEngine(cfg.Engine, cfg.SafeLibs)
			if err != nil {
				return err
			}
			defer engine.Close()

			p, err := plugin.LoadFromPath(args[0], engine)
			if err != nil {
				return err
			}
			defer p.Close()

			md := p.Metadata()
			report := pluginReport{
				Name:         md.Name,
				Authors:      md.Authors,
				Version:      md.Version.String(),
				Dir:          p.Dir(),
				Engine:       engine.Name(),
				Capabilities: p.Capabilities(),
			}
			if report.Capabilities == nil {
				report.Capabilities = []string{}
			}
			return writeReport(cmd.OutOrStdout(), format, md, report)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, yaml, json)")
	return cmd
}

func writeReport(w io.Writer, format string, md plugin.Metadata, report pluginReport) error {
	switch format {
	case "text":
		caps := "none"
		if len(report.Capabilities) > 0 {
			caps = strings.Join(report.Capabilities, ", ")
		}
		_, err := fmt.Fprintf(w, "%s\nCapabilities: %s\n", md, caps)
		return err

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)

	default:
		return fmt.Errorf("unknown format %q (want text, yaml or json)", format)
	}
}
