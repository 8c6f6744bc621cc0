package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestNames are the accepted manifest file names, matched
// case-insensitively.
var ManifestNames = []string{"metadata.toml", "meta.toml", "data.toml"}

// EntryScriptName is the entry script file name, matched case-insensitively.
const EntryScriptName = "main.lua"

// findFile returns the path of the first regular entry in dir, in directory
// iteration order, whose name matches one of names ignoring case. It returns
// "" when nothing matches.
func findFile(dir string, names ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, name := range names {
			if strings.EqualFold(entry.Name(), name) {
				return filepath.Join(dir, entry.Name()), nil
			}
		}
	}
	return "", nil
}

// IsPackage reports whether dir holds a manifest or an entry script.
func IsPackage(dir string) bool {
	names := append([]string{EntryScriptName}, ManifestNames...)
	path, err := findFile(dir, names...)
	return err == nil && path != ""
}

// Discover returns the plugin package directories under the given roots.
// A root that is itself a package is returned as is; otherwise each
// immediate subdirectory that looks like a package is returned, in name
// order. Missing roots are skipped.
func Discover(roots ...string) ([]string, error) {
	var dirs []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("discover plugins in %s: %w", root, err)
		}
		if !info.IsDir() {
			continue
		}

		if IsPackage(root) {
			dirs = append(dirs, root)
			continue
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("discover plugins in %s: %w", root, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(root, entry.Name())
			if IsPackage(dir) {
				dirs = append(dirs, dir)
			}
		}
	}

	return dirs, nil
}
