package render

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"sync"

	"github.com/dshills/driad/internal/color"
	"github.com/dshills/driad/internal/font"
)

// fallbackGlyph is drawn for runes the font cannot render.
const fallbackGlyph = '?'

// Canvas renders cells into an RGBA image using a font atlas.
type Canvas struct {
	mu      sync.Mutex
	font    *font.Font
	palette color.Palette
	cols    int
	rows    int
	img     *image.RGBA
	frames  int
	missing int
}

// NewCanvas creates a canvas of cols x rows cells.
func NewCanvas(f *font.Font, cols, rows int, palette color.Palette) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &Canvas{
		font:    f,
		palette: palette,
		cols:    cols,
		rows:    rows,
		img:     image.NewRGBA(image.Rect(0, 0, cols*f.GlyphWidth, rows*f.GlyphHeight)),
	}
	c.Clear()
	return c
}

// Size implements Surface.
func (c *Canvas) Size() (int, int) {
	return c.cols, c.rows
}

// Clear implements Surface.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(c.palette.Bg), image.Point{}, draw.Src)
}

// Put implements Surface. The glyph is tinted with the palette foreground
// over a background-filled cell.
func (c *Canvas) Put(glyph rune, x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !inBounds(x, y, c.cols, c.rows) {
		return
	}

	src, err := c.font.Offset(glyph)
	if err != nil {
		c.missing++
		if src, err = c.font.Offset(fallbackGlyph); err != nil {
			return
		}
	}

	gw, gh := c.font.GlyphWidth, c.font.GlyphHeight
	dst := image.Rect(x*gw, y*gh, (x+1)*gw, (y+1)*gh)
	draw.Draw(c.img, dst, image.NewUniform(c.palette.Bg), image.Point{}, draw.Src)
	draw.DrawMask(c.img, dst, image.NewUniform(c.palette.Fg), image.Point{}, c.font.Atlas, src.Min, draw.Over)
}

// Show implements Surface. It only counts frames; use WritePNG to export.
func (c *Canvas) Show() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
	return nil
}

// Frames returns the number of Show calls.
func (c *Canvas) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Missing returns how many Put calls used the fallback glyph.
func (c *Canvas) Missing() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.missing
}

// Image returns a copy of the current contents.
func (c *Canvas) Image() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// WritePNG encodes the current contents as PNG.
func (c *Canvas) WritePNG(w io.Writer) error {
	if err := png.Encode(w, c.Image()); err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}
	return nil
}

// SavePNG writes the current contents to path.
func (c *Canvas) SavePNG(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return c.WritePNG(file)
}
