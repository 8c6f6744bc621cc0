package lua

import (
	"math"
	"testing"

	"github.com/dshills/driad/internal/plugin/capability"
	glua "github.com/yuin/gopher-lua"
)

func TestNewBridge(t *testing.T) {
	L := glua.NewState()
	defer L.Close()

	bridge := NewBridge(L)
	if bridge.L != L {
		t.Error("NewBridge() has wrong LState")
	}
}

func TestBridgeToDrawCommand(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tbl := L.NewTable()
	tbl.RawSetString("x", glua.LNumber(12))
	tbl.RawSetString("y", glua.LNumber(-4))
	tbl.RawSetString("glyph", glua.LString("\u00e9"))

	cmd, err := bridge.ToDrawCommand(tbl)
	if err != nil {
		t.Fatalf("ToDrawCommand() error = %v", err)
	}
	want := capability.DrawCommand{X: 12, Y: -4, Glyph: '\u00e9'}
	if cmd != want {
		t.Errorf("ToDrawCommand() = %v, want %v", cmd, want)
	}
}

func TestBridgeToDrawCommandMalformed(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	build := func(x, y, glyph glua.LValue) *glua.LTable {
		tbl := L.NewTable()
		tbl.RawSetString("x", x)
		tbl.RawSetString("y", y)
		tbl.RawSetString("glyph", glyph)
		return tbl
	}

	tests := []struct {
		name  string
		value glua.LValue
	}{
		{"nil", glua.LNil},
		{"number", glua.LNumber(1)},
		{"string x", build(glua.LString("not-a-number"), glua.LNumber(2), glua.LString("@"))},
		{"numeric string x", build(glua.LString("3"), glua.LNumber(2), glua.LString("@"))},
		{"missing y", build(glua.LNumber(1), glua.LNil, glua.LString("@"))},
		{"fractional x", build(glua.LNumber(1.5), glua.LNumber(2), glua.LString("@"))},
		{"nan y", build(glua.LNumber(1), glua.LNumber(math.NaN()), glua.LString("@"))},
		{"huge x", build(glua.LNumber(1<<40), glua.LNumber(2), glua.LString("@"))},
		{"empty glyph", build(glua.LNumber(1), glua.LNumber(2), glua.LString(""))},
		{"long glyph", build(glua.LNumber(1), glua.LNumber(2), glua.LString("@@"))},
		{"numeric glyph", build(glua.LNumber(1), glua.LNumber(2), glua.LNumber(64))},
		{"invalid utf8", build(glua.LNumber(1), glua.LNumber(2), glua.LString("\xff"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := bridge.ToDrawCommand(tt.value); err == nil {
				t.Errorf("ToDrawCommand(%s) should fail", tt.name)
			}
		})
	}
}

func TestBridgeGetTableInt32Bounds(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tbl := L.NewTable()
	tbl.RawSetString("max", glua.LNumber(math.MaxInt32))
	tbl.RawSetString("min", glua.LNumber(math.MinInt32))
	tbl.RawSetString("over", glua.LNumber(math.MaxInt32+1))

	if v, err := bridge.GetTableInt32(tbl, "max"); err != nil || v != math.MaxInt32 {
		t.Errorf("max = %d, %v", v, err)
	}
	if v, err := bridge.GetTableInt32(tbl, "min"); err != nil || v != math.MinInt32 {
		t.Errorf("min = %d, %v", v, err)
	}
	if _, err := bridge.GetTableInt32(tbl, "over"); err == nil {
		t.Error("over should be rejected")
	}
}

func TestBridgeGetTableFunc(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tbl := L.NewTable()
	tbl.RawSetString("fn", L.NewFunction(func(*glua.LState) int { return 0 }))
	tbl.RawSetString("str", glua.LString("init"))

	if _, ok := bridge.GetTableFunc(tbl, "fn"); !ok {
		t.Error("GetTableFunc(fn) should succeed")
	}
	if _, ok := bridge.GetTableFunc(tbl, "str"); ok {
		t.Error("GetTableFunc(str) should fail")
	}
	if _, ok := bridge.GetTableFunc(tbl, "missing"); ok {
		t.Error("GetTableFunc(missing) should fail")
	}
}
