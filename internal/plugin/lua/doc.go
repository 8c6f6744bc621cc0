// Package lua is the gopher-lua script backend for the plugin host.
//
// A State owns one gopher-lua interpreter and implements capability.Engine.
// Every plugin compiled against the State shares that interpreter:
//
//	state := lua.NewState()
//	defer state.Close()
//
//	api, err := state.Compile("main.lua", `
//	    return {
//	        init = function() end,
//	        draw_pass = function() return { x = 1, y = 2, glyph = "@" } end,
//	    }
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer api.Close()
//
//	cmd, ok, err := api.TryDrawPass()
//
// The interpreter is torn down only after the State and every API compiled
// from it have been closed.
//
// # Trust
//
// Compile runs the script's top level with the full privilege of the
// interpreter: io, os and debug are available unless the State was created
// with WithSafeLibraries. Deciding which plugin directories may be loaded at
// all is the host's job.
//
// # Concurrency
//
// gopher-lua's LState is not goroutine-safe. Every entry point takes the
// State's mutex, so all plugins on one State are serialized.
package lua
