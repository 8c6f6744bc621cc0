// Package app wires configuration, the plugin host and a render surface
// into the driad frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/driad/internal/config"
	"github.com/dshills/driad/internal/plugin"
	"github.com/dshills/driad/internal/plugin/capability"
	"github.com/dshills/driad/internal/plugin/golua"
	plua "github.com/dshills/driad/internal/plugin/lua"
	"github.com/dshills/driad/internal/render"
)

// NewEngine creates the script engine named by config.Engine*. With safeLibs
// the engine opens only the libraries without filesystem or process access.
func NewEngine(name string, safeLibs bool) (capability.Engine, error) {
	switch name {
	case "", config.EngineGopherLua:
		if safeLibs {
			return plua.NewState(plua.WithSafeLibraries()), nil
		}
		return plua.NewState(), nil
	case config.EngineGoLua:
		if safeLibs {
			return golua.NewEngine(golua.WithSafeLibraries()), nil
		}
		return golua.NewEngine(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Application owns the plugin host and drives frames.
type Application struct {
	cfg     *config.Config
	logger  *Logger
	host    *plugin.Host
	metrics *Metrics
	running atomic.Bool

	unsubscribe func()

	// failing holds plugins whose last draw_pass failed. Only the frame
	// loop touches it.
	failing map[uuid.UUID]bool
}

// New creates an application for cfg. The host trusts cfg.TrustedDirs().
func New(cfg *config.Config, logger *Logger) (*Application, error) {
	if logger == nil {
		logger = NewNullLogger()
	}

	engine, err := NewEngine(cfg.Engine, cfg.SafeLibs)
	if err != nil {
		return nil, &StartError{Component: "engine", Err: err}
	}

	host, err := plugin.NewHost(engine,
		plugin.WithLogger(logger.WithComponent("host")),
		plugin.WithTrustPolicy(plugin.TrustDirs(cfg.TrustedDirs()...)),
	)
	if err != nil {
		return nil, &StartError{Component: "host", Err: errors.Join(err, engine.Close())}
	}

	logger.Debug("using %s engine", engine.Name())
	a := &Application{
		cfg:     cfg,
		logger:  logger,
		host:    host,
		metrics: NewMetrics(),
		failing: make(map[uuid.UUID]bool),
	}
	a.unsubscribe = host.Subscribe(a.onHostEvent)
	return a, nil
}

// onHostEvent runs outside the host lock and must not call back into it.
func (a *Application) onHostEvent(e plugin.Event) {
	switch e.Type {
	case plugin.EventLoadFailed:
		a.metrics.RecordSkippedPlugin()
	case plugin.EventRunning:
		a.logger.Debug("plugin host is running")
	}
}

// Host returns the plugin host.
func (a *Application) Host() *plugin.Host {
	return a.host
}

// Metrics returns the frame loop metrics.
func (a *Application) Metrics() *Metrics {
	return a.metrics
}

// LoadPlugins discovers packages under roots and registers them in order.
// A package that fails to load is logged and skipped, unless the
// configuration is strict, in which case the first failure is returned.
// It returns the number of plugins registered.
func (a *Application) LoadPlugins(roots ...string) (int, error) {
	dirs, err := plugin.Discover(roots...)
	if err != nil {
		return 0, err
	}
	if len(dirs) == 0 {
		return 0, ErrNoPlugins
	}

	n := 0
	for _, dir := range dirs {
		ok, err := a.host.Register(dir)
		if err != nil {
			if a.cfg.Strict {
				return n, err
			}
			a.logger.Warn("skipping plugin: %v", err)
			continue
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Start initializes every registered plugin.
func (a *Application) Start() error {
	if _, err := a.host.Initialize(); err != nil {
		return &StartError{Component: "plugins", Err: err}
	}
	return nil
}

// Frame runs one draw pass over every plugin and presents s. The configured
// banner is written first at (2, 2), so plugin glyphs land on top of it. A
// plugin whose draw_pass fails is logged and skipped for this frame; the
// others still draw. Frame must not be called concurrently.
func (a *Application) Frame(s render.Surface) error {
	start := time.Now()
	s.Clear()
	if a.cfg.Banner != "" {
		render.PutString(s, a.cfg.Banner, 2, 2)
	}

	for _, p := range a.host.Plugins() {
		cmd, ok, err := p.TryDrawPass()
		if err != nil {
			a.drawFailed(p, err)
			continue
		}
		if a.failing[p.ID()] {
			delete(a.failing, p.ID())
			a.logger.Info("plugin %s is drawing again", p)
		}
		if !ok {
			continue
		}
		render.Draw(s, cmd)
		a.metrics.RecordCommand()
	}

	err := s.Show()
	a.metrics.RecordFrame(time.Since(start))
	return err
}

// drawFailed logs the first failure of a streak at warn level and repeats
// at debug level.
func (a *Application) drawFailed(p *plugin.Plugin, err error) {
	a.metrics.RecordDrawFailure()
	if a.failing[p.ID()] {
		a.logger.Debug("plugin %s draw failed again: %v", p, err)
		return
	}
	a.failing[p.ID()] = true
	a.logger.Warn("plugin %s draw failed: %v", p, err)
}

// Run draws frames at the configured rate until ctx is done, a quit event
// arrives on events, or frames frames have been drawn (frames <= 0 means no
// limit). events may be nil.
func (a *Application) Run(ctx context.Context, s render.Surface, events <-chan render.Event, frames int) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	fps := a.cfg.FPS
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	drawn := 0
	draw := func() (bool, error) {
		if err := a.Frame(s); err != nil {
			return true, err
		}
		drawn++
		return frames > 0 && drawn >= frames, nil
	}

	if done, err := draw(); done || err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.IsQuit() {
				a.logger.Debug("quit requested")
				return nil
			}

		case <-ticker.C:
			if done, err := draw(); done || err != nil {
				return err
			}
		}
	}
}

// Close releases the host and its engine.
func (a *Application) Close() error {
	a.unsubscribe()
	return a.host.Close()
}
