// Package config loads the driad host configuration.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults (Default)
//  2. a TOML file
//  3. DRIAD_* environment variables
//  4. command-line flags, applied by the caller
//
// Example file:
//
//	plugin_dirs = ["plugins"]
//	trusted = ["plugins"]
//	engine = "gopher-lua"
//	fps = 30
//	safe_libs = true
//	banner = "Hello World!"
//
//	[atlas]
//	path = "assets/Alloy_curses_12x12.png"
//	glyph_width = 12
//	glyph_height = 12
//	color_key = "#ff00ff"
//
//	[atlas.extensions.icons]
//	table = "assets/icons.toml"
//	atlas = "assets/icons.png"
//
//	[palette]
//	fg = "#ffffff"
//	bg = "#000000"
package config

import (
	"github.com/dshills/driad/internal/color"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DRIAD_"

// Engine names.
const (
	EngineGopherLua = "gopher-lua"
	EngineGoLua     = "go-lua"
)

// Config is the host configuration.
type Config struct {
	PluginDirs []string `toml:"plugin_dirs" env:"PLUGIN_DIRS" envSeparator:":" validate:"dive,required"`
	Trusted    []string `toml:"trusted" env:"TRUSTED" envSeparator:":" validate:"dive,required"`
	Engine     string   `toml:"engine" env:"ENGINE" validate:"oneof=gopher-lua go-lua"`
	FPS        int      `toml:"fps" env:"FPS" validate:"min=1,max=240"`
	Strict     bool     `toml:"strict" env:"STRICT"`
	SafeLibs   bool     `toml:"safe_libs" env:"SAFE_LIBS"`
	LogLevel   string   `toml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Width      int      `toml:"width" env:"WIDTH" validate:"min=1,max=1000"`
	Height     int      `toml:"height" env:"HEIGHT" validate:"min=1,max=1000"`
	Banner     string   `toml:"banner" env:"BANNER"`

	Atlas   AtlasConfig   `toml:"atlas" envPrefix:"ATLAS_"`
	Palette PaletteConfig `toml:"palette" envPrefix:"PALETTE_"`
}

// AtlasConfig locates the bitmap font used by snapshots.
type AtlasConfig struct {
	Path        string `toml:"path" env:"PATH"`
	GlyphWidth  int    `toml:"glyph_width" env:"GLYPH_WIDTH" validate:"min=1"`
	GlyphHeight int    `toml:"glyph_height" env:"GLYPH_HEIGHT" validate:"min=1"`
	ColorKey    string `toml:"color_key" env:"COLOR_KEY" validate:"omitempty,hexcolor"`

	Extensions map[string]ExtensionConfig `toml:"extensions" validate:"dive"`
}

// ExtensionConfig names an icon atlas and the lookup table that indexes it.
type ExtensionConfig struct {
	Table string `toml:"table" validate:"required"`
	Atlas string `toml:"atlas" validate:"required"`
}

// PaletteConfig holds hex colours.
type PaletteConfig struct {
	Fg      string   `toml:"fg" env:"FG" validate:"hexcolor"`
	Bg      string   `toml:"bg" env:"BG" validate:"hexcolor"`
	Accents []string `toml:"accents" env:"ACCENTS" envSeparator:"," validate:"dive,hexcolor"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PluginDirs: []string{"plugins"},
		Engine:     EngineGopherLua,
		FPS:        60,
		LogLevel:   "info",
		Width:      80,
		Height:     25,
		Atlas: AtlasConfig{
			GlyphWidth:  12,
			GlyphHeight: 12,
			ColorKey:    "#ff00ff",
		},
		Palette: PaletteConfig{
			Fg: "#ffffff",
			Bg: "#000000",
		},
	}
}

// ColorPalette converts the palette section.
func (c *Config) ColorPalette() (color.Palette, error) {
	fg, err := color.Parse(c.Palette.Fg)
	if err != nil {
		return color.Palette{}, err
	}
	bg, err := color.Parse(c.Palette.Bg)
	if err != nil {
		return color.Palette{}, err
	}

	p := color.Palette{Fg: fg, Bg: bg}
	for _, s := range c.Palette.Accents {
		accent, err := color.Parse(s)
		if err != nil {
			return color.Palette{}, err
		}
		p.Accents = append(p.Accents, accent)
	}
	return p, nil
}

// ColorKey returns the atlas colour key, or nil when none is set.
func (c *Config) ColorKey() (*color.Color, error) {
	if c.Atlas.ColorKey == "" {
		return nil, nil
	}
	key, err := color.Parse(c.Atlas.ColorKey)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// TrustedDirs returns the trusted roots. When none are configured the
// plugin dirs themselves are trusted.
func (c *Config) TrustedDirs() []string {
	if len(c.Trusted) > 0 {
		return c.Trusted
	}
	return c.PluginDirs
}
