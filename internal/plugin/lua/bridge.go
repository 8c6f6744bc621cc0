package lua

import (
	"fmt"

	"github.com/dshills/driad/internal/plugin/capability"
	lua "github.com/yuin/gopher-lua"
)

// Bridge converts script values into host types. It never trusts the shape
// of a script-supplied value: every field is type- and range-checked.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// GetTableFunc gets a function field from a Lua table.
func (b *Bridge) GetTableFunc(t *lua.LTable, key string) (*lua.LFunction, bool) {
	v := t.RawGetString(key)
	if f, ok := v.(*lua.LFunction); ok {
		return f, true
	}
	return nil, false
}

// GetTableInt32 gets an integral number field that fits in an int32.
func (b *Bridge) GetTableInt32(t *lua.LTable, key string) (int32, error) {
	v := t.RawGetString(key)
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("field %q: want number, got %s", key, v.Type())
	}
	c, err := capability.Coordinate(float64(n))
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return c, nil
}

// GetTableRune gets a string field holding exactly one character.
func (b *Bridge) GetTableRune(t *lua.LTable, key string) (rune, error) {
	v := t.RawGetString(key)
	s, ok := v.(lua.LString)
	if !ok {
		return 0, fmt.Errorf("field %q: want string, got %s", key, v.Type())
	}
	r, err := capability.Glyph(string(s))
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return r, nil
}

// ToDrawCommand converts a draw_pass return value.
func (b *Bridge) ToDrawCommand(v lua.LValue) (capability.DrawCommand, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return capability.DrawCommand{}, fmt.Errorf("want table, got %s", v.Type())
	}

	x, err := b.GetTableInt32(t, "x")
	if err != nil {
		return capability.DrawCommand{}, err
	}
	y, err := b.GetTableInt32(t, "y")
	if err != nil {
		return capability.DrawCommand{}, err
	}
	glyph, err := b.GetTableRune(t, "glyph")
	if err != nil {
		return capability.DrawCommand{}, err
	}

	return capability.DrawCommand{X: x, Y: y, Glyph: glyph}, nil
}
