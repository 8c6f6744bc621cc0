package capability

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Coordinate converts a script number into a cell coordinate. The value must
// be integral and fit in an int32.
func Coordinate(f float64) (int32, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%v out of range", f)
	}
	return int32(f), nil
}

// Glyph converts a script string holding exactly one character.
func Glyph(s string) (rune, error) {
	if !utf8.ValidString(s) {
		return 0, fmt.Errorf("invalid UTF-8")
	}
	if n := utf8.RuneCountInString(s); n != 1 {
		return 0, fmt.Errorf("want exactly one character, got %d", n)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
