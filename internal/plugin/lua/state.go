package lua

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/driad/internal/plugin/capability"
	lua "github.com/yuin/gopher-lua"
)

// EngineName identifies this backend.
const EngineName = "gopher-lua"

// State wraps a gopher-lua interpreter shared by every plugin compiled on it.
//
// IMPORTANT: gopher-lua's LState is not goroutine-safe. The mutex serializes
// all access made through State and the APIs it produced. Code that reaches
// the LState directly via LuaState must hold no expectation of safety.
type State struct {
	L *lua.LState

	mu            sync.Mutex
	refs          *capability.RefCount
	ownerReleased bool

	safeLibs bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithSafeLibraries opens only base, table, string and math instead of the
// full standard library.
func WithSafeLibraries() StateOption {
	return func(s *State) {
		s.safeLibs = true
	}
}

// NewState creates an interpreter holding one share for the caller.
func NewState(opts ...StateOption) *State {
	s := &State{}
	for _, opt := range opts {
		opt(s)
	}

	if s.safeLibs {
		s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
		openSafeLibraries(s.L)
	} else {
		s.L = lua.NewState()
	}

	// Runs with s.mu held by whoever dropped the last share.
	s.refs = capability.NewRefCount(func() {
		s.L.Close()
	})
	return s
}

// openSafeLibraries opens only libraries without filesystem or process access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, package.
	for _, name := range []string{"dofile", "loadfile"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Name returns the backend name.
func (s *State) Name() string {
	return EngineName
}

// Compile evaluates source and wraps the table it returns.
//
// WARNING: this executes arbitrary plugin code.
func (s *State) Compile(chunk, source string) (capability.API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs.Released() {
		return nil, capability.ErrEngineClosed
	}

	var result lua.LValue
	err := s.doWithRecovery(func() error {
		fn, err := s.L.Load(strings.NewReader(source), chunk)
		if err != nil {
			return err
		}
		rets, err := s.callLocked(fn, 1)
		if err != nil {
			return err
		}
		result = rets[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	tbl, ok := result.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s: %w (got %s)", chunk, ErrNotTable, result.Type())
	}

	if !s.refs.Retain() {
		return nil, capability.ErrEngineClosed
	}
	return newAPI(s, tbl), nil
}

// DoString executes a Lua string in the shared interpreter.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs.Released() {
		return capability.ErrEngineClosed
	}

	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// callLocked calls fn with no arguments and returns exactly nret values.
// The caller must hold s.mu.
func (s *State) callLocked(fn *lua.LFunction, nret int) ([]lua.LValue, error) {
	stackTop := s.L.GetTop()

	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("lua panic: %v", r)
			}
		}()
		callErr = s.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true})
	}()

	if callErr != nil {
		s.L.SetTop(stackTop)
		return nil, callErr
	}

	results := make([]lua.LValue, nret)
	for i := 0; i < nret; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.SetTop(stackTop)
	return results, nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs.Released() {
		return lua.LNil
	}

	return s.L.GetGlobal(name)
}

// Shares returns the number of live shares (owner plus open APIs).
func (s *State) Shares() int64 {
	return s.refs.Count()
}

// IsClosed returns true once the interpreter has been torn down.
func (s *State) IsClosed() bool {
	return s.refs.Released()
}

// Close releases the owner's share. The interpreter itself is closed once
// every API compiled from it has been closed too. Close is idempotent.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerReleased {
		return nil
	}
	s.ownerReleased = true
	s.refs.Release()
	return nil
}
