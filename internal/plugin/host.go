package plugin

import (
	"errors"
	"sync"

	"github.com/dshills/driad/internal/plugin/capability"
)

// Host owns the plugin collection and the shared script engine.
//
// Plugins are kept in registration order. Once Initialize succeeds the host
// is Running: the collection is frozen and further Register, Add and
// Initialize calls return false without doing anything.
type Host struct {
	mu sync.RWMutex

	engine  capability.Engine
	plugins []*Plugin
	ready   []bool // initializer succeeded, indexed like plugins
	state   HostState
	closed  bool

	trust       TrustPolicy
	logger      Logger
	handlers    []subscription
	nextHandler uint64
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithTrustPolicy sets the policy consulted by Register.
func WithTrustPolicy(policy TrustPolicy) HostOption {
	return func(h *Host) {
		if policy != nil {
			h.trust = policy
		}
	}
}

// WithLogger sets the host logger.
func WithLogger(logger Logger) HostOption {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHost creates an empty host that takes ownership of engine. Closing the
// host closes the engine.
func NewHost(engine capability.Engine, opts ...HostOption) (*Host, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	h := &Host{
		engine: engine,
		state:  StateEmpty,
		trust:  TrustAll(),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Engine returns the shared engine.
func (h *Host) Engine() capability.Engine {
	return h.engine
}

// State returns the lifecycle state.
func (h *Host) State() HostState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Len returns the number of registered plugins.
func (h *Host) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.plugins)
}

// Plugins returns the plugins in registration order.
func (h *Host) Plugins() []*Plugin {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Plugin, len(h.plugins))
	copy(out, h.plugins)
	return out
}

// Register loads the plugin package in dir and appends it to the collection.
// It returns false with a nil error when the host is already Running, and
// false with an error when loading fails or the trust policy rejects dir.
// A failed load leaves the collection unchanged.
func (h *Host) Register(dir string) (bool, error) {
	ok, event, err := h.register(dir)
	h.emit(event)
	return ok, err
}

func (h *Host) register(dir string) (bool, Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false, Event{Type: EventLoadFailed, Dir: dir, Error: ErrHostClosed}, ErrHostClosed
	}
	if !h.state.AcceptsPlugins() {
		h.logger.Debug("ignoring registration of %s: host is running", dir)
		return false, Event{Type: EventIgnored, Dir: dir}, nil
	}
	if !h.trust.Trusted(dir) {
		err := &LoadError{Dir: dir, Err: ErrUntrusted}
		h.logger.Warn("refusing untrusted plugin directory %s", dir)
		return false, Event{Type: EventLoadFailed, Dir: dir, Error: err}, err
	}

	p, err := LoadFromPath(dir, h.engine)
	if err != nil {
		h.logger.Error("%v", err)
		return false, Event{Type: EventLoadFailed, Dir: dir, Error: err}, err
	}

	h.appendLocked(p)
	h.logger.Info("registered plugin %s from %s", p, dir)
	return true, Event{Type: EventRegistered, Plugin: p.Name(), Dir: dir}, nil
}

// Add appends an already-built plugin. It returns false when the host is
// Running or closed, or p is nil or has no API.
func (h *Host) Add(p *Plugin) bool {
	if p == nil || p.api == nil {
		return false
	}

	h.mu.Lock()
	if h.closed || !h.state.AcceptsPlugins() {
		h.mu.Unlock()
		h.emit(Event{Type: EventIgnored, Plugin: p.Name(), Dir: p.Dir()})
		return false
	}
	h.appendLocked(p)
	h.mu.Unlock()

	h.emit(Event{Type: EventRegistered, Plugin: p.Name(), Dir: p.Dir()})
	return true
}

func (h *Host) appendLocked(p *Plugin) {
	h.plugins = append(h.plugins, p)
	h.ready = append(h.ready, false)
	h.state = StateRegistered
}

// Initialize runs each plugin's initializer in registration order and stops
// at the first failure, returning an *InitError for it. On success the host
// becomes Running. It returns false with a nil error when already Running.
//
// An initializer that succeeded is never run again, so calling Initialize
// after a failure resumes with the plugin that failed.
func (h *Host) Initialize() (bool, error) {
	ok, events, err := h.initialize()
	h.emit(events...)
	return ok, err
}

func (h *Host) initialize() (bool, []Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false, nil, ErrHostClosed
	}
	if h.state == StateRunning {
		h.logger.Debug("ignoring initialize: host is running")
		return false, []Event{{Type: EventIgnored}}, nil
	}

	var events []Event
	for i, p := range h.plugins {
		if h.ready[i] {
			continue
		}

		present, err := p.TryInit()
		if err != nil {
			ierr := &InitError{Plugin: p.Name(), Index: i, Err: err}
			h.logger.Error("%v", ierr)
			events = append(events, Event{Type: EventInitFailed, Plugin: p.Name(), Dir: p.Dir(), Error: ierr})
			return false, events, ierr
		}

		h.ready[i] = true
		if present {
			h.logger.Debug("initialized plugin %s", p)
		}
		events = append(events, Event{Type: EventInitialized, Plugin: p.Name(), Dir: p.Dir()})
	}

	h.state = StateRunning
	h.logger.Info("plugin host running with %d plugin(s)", len(h.plugins))
	events = append(events, Event{Type: EventRunning})
	return true, events, nil
}

// Close releases every plugin and then the engine. It is idempotent.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	var errs []error
	for i := len(h.plugins) - 1; i >= 0; i-- {
		if err := h.plugins[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := h.engine.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
