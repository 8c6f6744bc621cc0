package plugin

import (
	"github.com/dshills/driad/internal/plugin/capability"
	"github.com/google/uuid"
)

// Plugin is a loaded plugin package: its metadata plus the capability API
// bound to the shared engine. A Plugin is immutable after construction.
type Plugin struct {
	id       uuid.UUID
	dir      string
	metadata Metadata
	api      capability.API
}

// FromParts builds a plugin from metadata and an API obtained elsewhere.
func FromParts(metadata Metadata, api capability.API) *Plugin {
	return &Plugin{
		id:       uuid.New(),
		metadata: metadata,
		api:      api,
	}
}

// LoadFromPath loads the plugin package in dir. The manifest is decoded
// first so that no script code runs for a package with a bad manifest.
func LoadFromPath(dir string, engine capability.Engine) (*Plugin, error) {
	if engine == nil {
		return nil, &LoadError{Dir: dir, Err: ErrNilEngine}
	}

	metadata, err := LoadMetadata(dir)
	if err != nil {
		return nil, &LoadError{Dir: dir, Err: err}
	}

	api, err := LoadScript(dir, engine)
	if err != nil {
		return nil, &LoadError{Dir: dir, Err: err}
	}

	p := FromParts(metadata, api)
	p.dir = dir
	return p, nil
}

// ID returns the instance id. Two plugins with the same name have
// different ids.
func (p *Plugin) ID() uuid.UUID {
	return p.id
}

// Dir returns the package directory, or "" for plugins built with FromParts.
func (p *Plugin) Dir() string {
	return p.dir
}

// Name returns the plugin name from its metadata.
func (p *Plugin) Name() string {
	return p.metadata.Name
}

// Metadata returns a copy of the plugin metadata.
func (p *Plugin) Metadata() Metadata {
	return p.metadata.Clone()
}

// API returns the plugin's capability API.
func (p *Plugin) API() capability.API {
	return p.api
}

// TryInit runs the plugin's init capability, if any.
func (p *Plugin) TryInit() (bool, error) {
	return p.api.TryInit()
}

// TryDrawPass runs the plugin's draw_pass capability, if any.
func (p *Plugin) TryDrawPass() (capability.DrawCommand, bool, error) {
	return p.api.TryDrawPass()
}

// Capabilities returns the recognized capabilities the plugin declares.
func (p *Plugin) Capabilities() []string {
	return p.api.Capabilities()
}

// Close releases the plugin's share of the engine.
func (p *Plugin) Close() error {
	return p.api.Close()
}

// String returns "name vX.Y.Z".
func (p *Plugin) String() string {
	return p.metadata.Name + " v" + p.metadata.Version.String()
}
