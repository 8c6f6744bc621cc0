// Package capability defines the typed surface a plugin exposes to the host.
//
// A plugin's entry script evaluates to a table of named callables. Script
// backends wrap that table in an API so callers only ever see typed,
// optional results:
//
//	ok, err := api.TryInit()
//	if !ok {
//	    // plugin has no init
//	}
//
//	cmd, ok, err := api.TryDrawPass()
//	switch {
//	case !ok:
//	    // no draw_pass
//	case errors.Is(err, capability.ErrMalformedReturn):
//	    // the plugin returned garbage
//	case err != nil:
//	    // the plugin crashed
//	}
//
// The recognized capability names are fixed by the host (Init, DrawPass).
// Anything else in the table is ignored.
package capability
