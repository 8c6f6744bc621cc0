package golua

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"
	"github.com/dshills/driad/internal/plugin/capability"
)

// EngineName identifies this backend.
const EngineName = "go-lua"

// ErrNotTable is returned when an entry script does not evaluate to a table.
var ErrNotTable = errors.New("entry script must return a table")

// Engine is a go-lua interpreter shared by every plugin compiled on it.
type Engine struct {
	mu            sync.Mutex
	l             *lua.State
	refs          *capability.RefCount
	ownerReleased bool
	seq           int
	safeLibs      bool
}

var _ capability.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithSafeLibraries opens only base, table, string and math instead of the
// full standard library.
func WithSafeLibraries() Option {
	return func(e *Engine) {
		e.safeLibs = true
	}
}

// NewEngine creates an interpreter. The full standard library is opened
// unless WithSafeLibraries is given.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{l: lua.NewState()}
	for _, opt := range opts {
		opt(e)
	}

	if e.safeLibs {
		openSafeLibraries(e.l)
	} else {
		lua.OpenLibraries(e.l)
	}
	e.refs = capability.NewRefCount(func() {
		e.l = nil
	})
	return e
}

func openSafeLibraries(l *lua.State) {
	libs := []lua.RegistryFunction{
		{Name: "_G", Function: lua.BaseOpen},
		{Name: "table", Function: lua.TableOpen},
		{Name: "string", Function: lua.StringOpen},
		{Name: "math", Function: lua.MathOpen},
	}
	for _, lib := range libs {
		lua.Require(l, lib.Name, lib.Function, true)
		l.Pop(1)
	}

	for _, name := range []string{"dofile", "loadfile"} {
		l.PushNil()
		l.SetGlobal(name)
	}
}

// Name returns the backend name.
func (e *Engine) Name() string {
	return EngineName
}

// Compile evaluates source and anchors the returned table in the registry.
//
// WARNING: this executes arbitrary plugin code.
func (e *Engine) Compile(chunk, source string) (capability.API, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.refs.Released() {
		return nil, capability.ErrEngineClosed
	}

	l := e.l
	top := l.Top()
	defer l.SetTop(top)

	err := protect(func() error {
		if err := l.Load(strings.NewReader(source), "@"+chunk, ""); err != nil {
			return err
		}
		return l.ProtectedCall(0, 1, 0)
	})
	if err != nil {
		return nil, err
	}

	if !l.IsTable(-1) {
		return nil, fmt.Errorf("%s: %w (got %s)", chunk, ErrNotTable, typeName(l.TypeOf(-1)))
	}

	e.seq++
	key := fmt.Sprintf("driad.capabilities.%d", e.seq)
	l.SetField(lua.RegistryIndex, key)

	if !e.refs.Retain() {
		return nil, capability.ErrEngineClosed
	}
	return &API{
		engine:   e,
		key:      key,
		resolved: make(map[string]bool, len(capability.Names)),
	}, nil
}

// DoString runs a chunk in the shared interpreter.
func (e *Engine) DoString(code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.refs.Released() {
		return capability.ErrEngineClosed
	}

	top := e.l.Top()
	defer e.l.SetTop(top)
	return protect(func() error {
		if err := e.l.Load(strings.NewReader(code), "=driad", ""); err != nil {
			return err
		}
		return e.l.ProtectedCall(0, 0, 0)
	})
}

// Global returns a global number, string or boolean converted to Go.
// Other types come back as nil.
func (e *Engine) Global(name string) any {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.refs.Released() {
		return nil
	}

	e.l.Global(name)
	defer e.l.Pop(1)

	switch e.l.TypeOf(-1) {
	case lua.TypeNumber:
		n, _ := e.l.ToNumber(-1)
		return n
	case lua.TypeString:
		s, _ := e.l.ToString(-1)
		return s
	case lua.TypeBoolean:
		return e.l.ToBoolean(-1)
	}
	return nil
}

// Shares returns the number of live shares (owner plus open APIs).
func (e *Engine) Shares() int64 {
	return e.refs.Count()
}

// IsClosed returns true once the interpreter has been dropped.
func (e *Engine) IsClosed() bool {
	return e.refs.Released()
}

// Close releases the owner's share. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ownerReleased {
		return nil
	}
	e.ownerReleased = true
	e.refs.Release()
	return nil
}

// protect turns Go panics raised inside the interpreter into errors.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

func typeName(t lua.Type) string {
	switch t {
	case lua.TypeNil:
		return "nil"
	case lua.TypeBoolean:
		return "boolean"
	case lua.TypeNumber:
		return "number"
	case lua.TypeString:
		return "string"
	case lua.TypeTable:
		return "table"
	case lua.TypeFunction:
		return "function"
	case lua.TypeUserData, lua.TypeLightUserData:
		return "userdata"
	case lua.TypeThread:
		return "thread"
	}
	return "no value"
}
