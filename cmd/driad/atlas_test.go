package main

import (
	"image"
	"image/png"
	"os"
	"testing"
)

// writeAtlas writes a 16x16 grid of opaque 12x12 glyphs.
func writeAtlas(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16*12, 16*12))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
