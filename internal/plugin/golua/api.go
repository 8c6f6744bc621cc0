package golua

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Shopify/go-lua"
	"github.com/dshills/driad/internal/plugin/capability"
)

// API is the go-lua implementation of capability.API.
type API struct {
	engine *Engine
	key    string

	// Guarded by engine.mu.
	resolved map[string]bool
	closed   bool
}

var _ capability.API = (*API)(nil)

func (a *API) slot(name string) string {
	return a.key + "." + name
}

// pushCapability pushes the named callable and returns true, or pushes
// nothing and returns false. The caller must hold engine.mu.
func (a *API) pushCapability(name string) bool {
	l := a.engine.l

	present, ok := a.resolved[name]
	if !ok {
		l.Field(lua.RegistryIndex, a.key)
		l.PushString(name)
		l.RawGet(-2)
		present = l.IsFunction(-1)
		if present {
			l.SetField(lua.RegistryIndex, a.slot(name))
		} else {
			l.Pop(1)
		}
		l.Pop(1)
		a.resolved[name] = present
	}

	if !present {
		return false
	}
	l.Field(lua.RegistryIndex, a.slot(name))
	return true
}

// usable reports whether calls may reach the interpreter. The caller must
// hold engine.mu.
func (a *API) usable() bool {
	return !a.closed && !a.engine.refs.Released()
}

// TryInit calls init(). A raised error or a false first return value fails.
func (a *API) TryInit() (bool, error) {
	a.engine.mu.Lock()
	defer a.engine.mu.Unlock()

	if !a.usable() {
		return false, capability.ErrEngineClosed
	}

	l := a.engine.l
	top := l.Top()
	defer l.SetTop(top)

	if !a.pushCapability(capability.Init) {
		return false, nil
	}
	if err := protect(func() error { return l.ProtectedCall(0, 2, 0) }); err != nil {
		return true, capability.Invocation(capability.Init, err)
	}

	if l.TypeOf(-2) == lua.TypeBoolean && !l.ToBoolean(-2) {
		reason := "init returned false"
		if l.TypeOf(-1) == lua.TypeString {
			if s, _ := l.ToString(-1); s != "" {
				reason = s
			}
		}
		return true, capability.Invocation(capability.Init, errors.New(reason))
	}
	return true, nil
}

// TryDrawPass calls draw_pass() and marshals the returned table.
func (a *API) TryDrawPass() (capability.DrawCommand, bool, error) {
	a.engine.mu.Lock()
	defer a.engine.mu.Unlock()

	if !a.usable() {
		return capability.DrawCommand{}, false, capability.ErrEngineClosed
	}

	l := a.engine.l
	top := l.Top()
	defer l.SetTop(top)

	if !a.pushCapability(capability.DrawPass) {
		return capability.DrawCommand{}, false, nil
	}
	if err := protect(func() error { return l.ProtectedCall(0, 1, 0) }); err != nil {
		return capability.DrawCommand{}, true, capability.Invocation(capability.DrawPass, err)
	}

	cmd, err := toDrawCommand(l)
	if err != nil {
		return capability.DrawCommand{}, true, capability.Malformed(capability.DrawPass, "%w", err)
	}
	return cmd, true, nil
}

// Capabilities returns the recognized capabilities present, sorted.
func (a *API) Capabilities() []string {
	a.engine.mu.Lock()
	defer a.engine.mu.Unlock()

	if !a.usable() {
		return nil
	}

	l := a.engine.l
	var names []string
	for _, name := range capability.Names {
		if a.pushCapability(name) {
			l.Pop(1)
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Close removes the registry anchors and releases this API's share.
func (a *API) Close() error {
	a.engine.mu.Lock()
	defer a.engine.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if !a.engine.refs.Released() {
		l := a.engine.l
		l.PushNil()
		l.SetField(lua.RegistryIndex, a.key)
		for name, present := range a.resolved {
			if present {
				l.PushNil()
				l.SetField(lua.RegistryIndex, a.slot(name))
			}
		}
	}
	a.resolved = nil
	a.engine.refs.Release()
	return nil
}

// toDrawCommand converts the value on top of the stack.
func toDrawCommand(l *lua.State) (capability.DrawCommand, error) {
	if t := l.TypeOf(-1); t != lua.TypeTable {
		return capability.DrawCommand{}, fmt.Errorf("want table, got %s", typeName(t))
	}

	x, err := intField(l, "x")
	if err != nil {
		return capability.DrawCommand{}, err
	}
	y, err := intField(l, "y")
	if err != nil {
		return capability.DrawCommand{}, err
	}
	glyph, err := runeField(l, "glyph")
	if err != nil {
		return capability.DrawCommand{}, err
	}
	return capability.DrawCommand{X: x, Y: y, Glyph: glyph}, nil
}

// rawField pushes table[key] for the table on top of the stack.
func rawField(l *lua.State, key string) lua.Type {
	l.PushString(key)
	l.RawGet(-2)
	return l.TypeOf(-1)
}

func intField(l *lua.State, key string) (int32, error) {
	t := rawField(l, key)
	defer l.Pop(1)

	if t != lua.TypeNumber {
		return 0, fmt.Errorf("field %q: want number, got %s", key, typeName(t))
	}
	n, _ := l.ToNumber(-1)
	c, err := capability.Coordinate(n)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return c, nil
}

func runeField(l *lua.State, key string) (rune, error) {
	t := rawField(l, key)
	defer l.Pop(1)

	if t != lua.TypeString {
		return 0, fmt.Errorf("field %q: want string, got %s", key, typeName(t))
	}
	s, _ := l.ToString(-1)
	r, err := capability.Glyph(s)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return r, nil
}
