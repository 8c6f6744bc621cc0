package plugin

import (
	"errors"
	"fmt"
)

// Plugin system errors.
var (
	// ErrMalformedVersion is returned when a version string is not a dotted
	// triple of unsigned integers.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrManifestNotFound is returned when a plugin directory has no manifest.
	ErrManifestNotFound = errors.New("plugin manifest not found (metadata.toml, meta.toml or data.toml)")

	// ErrManifestUnreadable is returned when the manifest cannot be read.
	ErrManifestUnreadable = errors.New("plugin manifest unreadable")

	// ErrManifestMalformed is returned when the manifest cannot be decoded
	// into a name, a non-empty author list and a version.
	ErrManifestMalformed = errors.New("plugin manifest malformed")

	// ErrEntryScriptNotFound is returned when a plugin directory has no main.lua.
	ErrEntryScriptNotFound = errors.New("plugin entry script not found (main.lua)")

	// ErrEntryScriptUnreadable is returned when main.lua cannot be read.
	ErrEntryScriptUnreadable = errors.New("plugin entry script unreadable")

	// ErrScriptEvaluation is returned when the entry script fails to compile
	// or evaluate.
	ErrScriptEvaluation = errors.New("plugin entry script evaluation failed")

	// ErrUntrusted is returned when the host's trust policy rejects a directory.
	ErrUntrusted = errors.New("plugin directory is not trusted")

	// ErrNilEngine is returned when a host is created without an engine.
	ErrNilEngine = errors.New("script engine is nil")

	// ErrHostClosed is returned when using a host after Close.
	ErrHostClosed = errors.New("plugin host is closed")
)

// LoadError reports a failure to load the plugin package at Dir.
type LoadError struct {
	Dir string
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load plugin %s: %v", e.Dir, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// InitError reports the plugin whose initializer stopped Host.Initialize.
type InitError struct {
	Plugin string
	Index  int
	Err    error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("initialize plugin %q (#%d): %v", e.Plugin, e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
