// Package plugin provides the plugin host for driad.
//
// A plugin is a directory holding a TOML manifest and a Lua entry script:
//
//	plugins/stars/
//	├── metadata.toml    # Manifest (metadata.toml, meta.toml or data.toml)
//	└── main.lua         # Entry script
//
// # Manifest
//
//	name = "stars"
//	authors = ["A. Person"]
//	version = "1.0.2"
//
// All three keys are required and authors must not be empty. File names are
// matched ignoring case.
//
// # Entry Script
//
// main.lua must evaluate to a table. Recognized keys are:
//
//	return {
//	    init = function() return true end,
//	    draw_pass = function() return { x = 3, y = 4, glyph = "*" } end,
//	}
//
// Both are optional. init may return false and a message to fail host
// initialization. draw_pass must return a table with integer x and y and a
// single-character glyph.
//
// # Host Lifecycle
//
// A Host moves through Empty, Registered and Running. Register and Add append
// plugins in order; Initialize runs every initializer in that order and stops
// at the first failure. Once Running the collection is frozen and lifecycle
// calls return false.
//
//	host, err := plugin.NewHost(lua.NewState(), plugin.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer host.Close()
//
//	for _, dir := range dirs {
//	    if _, err := host.Register(dir); err != nil {
//	        return err
//	    }
//	}
//	if _, err := host.Initialize(); err != nil {
//	    return err
//	}
//
// # Trust
//
// Loading a plugin executes its script with the engine's full privilege.
// The host consults a TrustPolicy before loading; the default trusts every
// directory.
//
// # Engines
//
// Two engines implement capability.Engine: package lua (gopher-lua) and
// package golua (Shopify/go-lua). All plugins of a host share one engine.
package plugin
