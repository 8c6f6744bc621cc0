package render

import (
	"io"
	"strings"
	"sync"
)

// Grid is an in-memory surface. It backs headless runs and tests.
type Grid struct {
	mu     sync.Mutex
	width  int
	height int
	cells  [][]rune
	frames int
	out    io.Writer
}

// NewGrid creates a blank grid.
func NewGrid(width, height int) *Grid {
	g := &Grid{width: max(width, 0), height: max(height, 0)}
	g.cells = make([][]rune, g.height)
	for y := range g.cells {
		g.cells[y] = make([]rune, g.width)
	}
	g.Clear()
	return g
}

// SetOutput makes Show write each frame to w. A nil writer disables output.
func (g *Grid) SetOutput(w io.Writer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.out = w
}

// Size implements Surface.
func (g *Grid) Size() (int, int) {
	return g.width, g.height
}

// Clear implements Surface.
func (g *Grid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for y := range g.cells {
		for x := range g.cells[y] {
			g.cells[y][x] = ' '
		}
	}
}

// Put implements Surface.
func (g *Grid) Put(glyph rune, x, y int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if inBounds(x, y, g.width, g.height) {
		g.cells[y][x] = glyph
	}
}

// Cell returns the glyph at (x, y), or 0 outside the grid.
func (g *Grid) Cell(x, y int) rune {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !inBounds(x, y, g.width, g.height) {
		return 0
	}
	return g.cells[y][x]
}

// Show implements Surface.
func (g *Grid) Show() error {
	g.mu.Lock()
	g.frames++
	out := g.out
	frame := g.stringLocked()
	g.mu.Unlock()

	if out == nil {
		return nil
	}
	_, err := io.WriteString(out, frame+"\n")
	return err
}

// Frames returns the number of Show calls.
func (g *Grid) Frames() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frames
}

// String returns the rows joined by newlines, trailing blanks trimmed.
func (g *Grid) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stringLocked()
}

func (g *Grid) stringLocked() string {
	rows := make([]string, len(g.cells))
	for y, row := range g.cells {
		rows[y] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(rows, "\n")
}
