package lua

import (
	"errors"
	"sort"

	"github.com/dshills/driad/internal/plugin/capability"
	lua "github.com/yuin/gopher-lua"
)

// API is the gopher-lua implementation of capability.API.
type API struct {
	state  *State
	bridge *Bridge

	// Guarded by state.mu.
	table    *lua.LTable
	resolved map[string]*lua.LFunction
	closed   bool
}

var _ capability.API = (*API)(nil)

func newAPI(s *State, table *lua.LTable) *API {
	return &API{
		state:    s,
		bridge:   NewBridge(s.L),
		table:    table,
		resolved: make(map[string]*lua.LFunction, len(capability.Names)),
	}
}

// NewAPI wraps a capability table that already lives in s. The API takes its
// own share of s.
func NewAPI(s *State, table *lua.LTable) (*API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.refs.Retain() {
		return nil, capability.ErrEngineClosed
	}
	return newAPI(s, table), nil
}

// lookup resolves a capability on first use. Non-function values count as
// absent. The caller must hold state.mu.
func (a *API) lookup(name string) *lua.LFunction {
	if fn, ok := a.resolved[name]; ok {
		return fn
	}
	fn, _ := a.bridge.GetTableFunc(a.table, name)
	a.resolved[name] = fn
	return fn
}

// usable reports whether calls may reach the interpreter. The caller must
// hold state.mu.
func (a *API) usable() bool {
	return !a.closed && !a.state.refs.Released()
}

// TryInit calls init(). A raised error or a false first return value fails.
func (a *API) TryInit() (bool, error) {
	a.state.mu.Lock()
	defer a.state.mu.Unlock()

	if !a.usable() {
		return false, capability.ErrEngineClosed
	}

	fn := a.lookup(capability.Init)
	if fn == nil {
		return false, nil
	}

	rets, err := a.state.callLocked(fn, 2)
	if err != nil {
		return true, capability.Invocation(capability.Init, err)
	}

	if rets[0] == lua.LFalse {
		reason := "init returned false"
		if s, ok := rets[1].(lua.LString); ok && s != "" {
			reason = string(s)
		}
		return true, capability.Invocation(capability.Init, errors.New(reason))
	}
	return true, nil
}

// TryDrawPass calls draw_pass() and marshals the returned table.
func (a *API) TryDrawPass() (capability.DrawCommand, bool, error) {
	a.state.mu.Lock()
	defer a.state.mu.Unlock()

	if !a.usable() {
		return capability.DrawCommand{}, false, capability.ErrEngineClosed
	}

	fn := a.lookup(capability.DrawPass)
	if fn == nil {
		return capability.DrawCommand{}, false, nil
	}

	rets, err := a.state.callLocked(fn, 1)
	if err != nil {
		return capability.DrawCommand{}, true, capability.Invocation(capability.DrawPass, err)
	}

	cmd, err := a.bridge.ToDrawCommand(rets[0])
	if err != nil {
		return capability.DrawCommand{}, true, capability.Malformed(capability.DrawPass, "%w", err)
	}
	return cmd, true, nil
}

// Capabilities returns the recognized capabilities present, sorted.
func (a *API) Capabilities() []string {
	a.state.mu.Lock()
	defer a.state.mu.Unlock()

	if !a.usable() {
		return nil
	}

	var names []string
	for _, name := range capability.Names {
		if a.lookup(name) != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Close drops the table and releases this API's share of the State.
func (a *API) Close() error {
	a.state.mu.Lock()
	defer a.state.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	a.table = nil
	a.resolved = nil
	a.state.refs.Release()
	return nil
}
