package plugin

import (
	"fmt"
	"os"

	"github.com/dshills/driad/internal/plugin/capability"
)

// LoadScript finds the entry script in dir and compiles it in engine.
//
// TRUST BOUNDARY: compiling runs the script's top-level code with the full
// privilege of the engine. LoadScript performs no isolation; only call it for
// directories the caller has decided to trust (see TrustPolicy).
func LoadScript(dir string, engine capability.Engine) (capability.API, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	path, err := findFile(dir, EntryScriptName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntryScriptNotFound, err)
	}
	if path == "" {
		return nil, fmt.Errorf("%w in %s", ErrEntryScriptNotFound, dir)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntryScriptUnreadable, err)
	}

	api, err := engine.Compile(path, string(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptEvaluation, err)
	}
	return api, nil
}
