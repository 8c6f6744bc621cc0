// Package font loads code page 437 bitmap font atlases.
//
// An atlas is an image laid out as a grid of equally sized glyph cells, cell
// i holding CP437 character i in row-major order. Extension atlases hold
// named icons located through a LookupTable.
package font

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/text/encoding/charmap"

	"github.com/dshills/driad/internal/color"
)

// Font errors.
var (
	ErrNoGlyph      = errors.New("rune has no glyph in code page 437")
	ErrNoExtension  = errors.New("font extension not found")
	ErrNoIcon       = errors.New("icon not found")
	ErrBadGlyphSize = errors.New("glyph size must be positive and fit the atlas")
)

// Font is a CP437 atlas plus named extension atlases.
type Font struct {
	GlyphWidth  int
	GlyphHeight int
	Atlas       *image.NRGBA
	Extensions  map[string]Extension
}

// Extension is an icon atlas and the table locating icons in it.
type Extension struct {
	Table LookupTable
	Atlas *image.NRGBA
}

// New builds a font from a decoded atlas. Pixels equal to colorKey, when
// non-nil, become fully transparent.
func New(atlas image.Image, glyphWidth, glyphHeight int, colorKey *color.Color) (*Font, error) {
	b := atlas.Bounds()
	if glyphWidth <= 0 || glyphHeight <= 0 || glyphWidth > b.Dx() || glyphHeight > b.Dy() {
		return nil, fmt.Errorf("%w: %dx%d for %dx%d atlas", ErrBadGlyphSize, glyphWidth, glyphHeight, b.Dx(), b.Dy())
	}

	return &Font{
		GlyphWidth:  glyphWidth,
		GlyphHeight: glyphHeight,
		Atlas:       keyed(atlas, colorKey),
		Extensions:  make(map[string]Extension),
	}, nil
}

// Load decodes the PNG atlas at path.
func Load(path string, glyphWidth, glyphHeight int, colorKey *color.Color) (*Font, error) {
	img, err := decodePNG(path)
	if err != nil {
		return nil, err
	}
	return New(img, glyphWidth, glyphHeight, colorKey)
}

// Columns returns the number of glyph cells per atlas row.
func (f *Font) Columns() int {
	return f.Atlas.Bounds().Dx() / f.GlyphWidth
}

// Rows returns the number of glyph rows in the atlas.
func (f *Font) Rows() int {
	return f.Atlas.Bounds().Dy() / f.GlyphHeight
}

// Index returns the CP437 code of r.
func Index(r rune) (int, error) {
	b, ok := charmap.CodePage437.EncodeRune(r)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoGlyph, r)
	}
	return int(b), nil
}

// Offset returns the atlas rectangle holding the glyph for r.
func (f *Font) Offset(r rune) (image.Rectangle, error) {
	i, err := Index(r)
	if err != nil {
		return image.Rectangle{}, err
	}

	cols := f.Columns()
	row := i / cols
	if row >= f.Rows() {
		return image.Rectangle{}, fmt.Errorf("%w: %q is outside the atlas", ErrNoGlyph, r)
	}
	return f.cell(i%cols, row), nil
}

// AddExtension registers an icon atlas under name, replacing any previous one.
func (f *Font) AddExtension(name string, table LookupTable, atlas image.Image, colorKey *color.Color) {
	if f.Extensions == nil {
		f.Extensions = make(map[string]Extension)
	}
	f.Extensions[name] = Extension{Table: table, Atlas: keyed(atlas, colorKey)}
}

// LoadExtension reads a lookup table and its PNG atlas and registers them.
func (f *Font) LoadExtension(name, tablePath, atlasPath string, colorKey *color.Color) error {
	table, err := LoadLookupTable(tablePath)
	if err != nil {
		return err
	}
	img, err := decodePNG(atlasPath)
	if err != nil {
		return err
	}
	f.AddExtension(name, table, img, colorKey)
	return nil
}

// Icon returns the sub-image for icon in extension ext. Icon cells use the
// font's glyph size.
func (f *Font) Icon(ext, icon string) (image.Image, error) {
	e, ok := f.Extensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoExtension, ext)
	}
	pos, ok := e.Table.Data[icon]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoIcon, ext, icon)
	}

	rect := f.cell(int(pos[0]), int(pos[1]))
	if !rect.In(e.Atlas.Bounds()) {
		return nil, fmt.Errorf("%w: %s/%s lies outside the atlas", ErrNoIcon, ext, icon)
	}
	return e.Atlas.SubImage(rect), nil
}

func (f *Font) cell(col, row int) image.Rectangle {
	x, y := col*f.GlyphWidth, row*f.GlyphHeight
	return image.Rect(x, y, x+f.GlyphWidth, y+f.GlyphHeight).Add(f.Atlas.Bounds().Min)
}

func decodePNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atlas: %w", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode atlas %s: %w", path, err)
	}
	return img, nil
}

// keyed copies img into an NRGBA image, clearing pixels that match key.
func keyed(img image.Image, key *color.Color) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	if key == nil {
		return out
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := out.PixOffset(x, y)
			p := out.Pix[i : i+4 : i+4]
			if p[0] == key.R && p[1] == key.G && p[2] == key.B {
				p[0], p[1], p[2], p[3] = 0, 0, 0, 0
			}
		}
	}
	return out
}
