// Package render provides the surfaces plugins draw on.
//
// A Surface is a grid of glyph cells addressed by column and row with the
// origin at the top left. Writes outside the grid are dropped.
package render

import "github.com/dshills/driad/internal/plugin/capability"

// Surface is a cell grid that can be presented.
type Surface interface {
	// Size returns the grid size in cells.
	Size() (width, height int)

	// Clear blanks every cell.
	Clear()

	// Put writes glyph at column x, row y.
	Put(glyph rune, x, y int)

	// Show presents the current contents.
	Show() error
}

// Draw writes a plugin draw command to s.
func Draw(s Surface, cmd capability.DrawCommand) {
	s.Put(cmd.Glyph, int(cmd.X), int(cmd.Y))
}

// PutString writes text left to right starting at (x, y). It does not wrap.
func PutString(s Surface, text string, x, y int) {
	for _, r := range text {
		s.Put(r, x, y)
		x++
	}
}

func inBounds(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}
