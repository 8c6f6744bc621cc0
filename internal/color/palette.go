package color

// Palette is a foreground/background pair plus optional accents.
type Palette struct {
	Fg      Color   `toml:"fg"`
	Bg      Color   `toml:"bg"`
	Accents []Color `toml:"accents"`
}

// DefaultPalette is white on black.
func DefaultPalette() Palette {
	return Palette{Fg: White, Bg: Black}
}

// Accent returns accent i, or Fg when the palette has no such accent.
func (p Palette) Accent(i int) Color {
	if i < 0 || i >= len(p.Accents) {
		return p.Fg
	}
	return p.Accents[i]
}
