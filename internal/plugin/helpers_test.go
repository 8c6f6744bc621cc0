package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

const validManifest = `
name = "stars"
authors = ["Ada", "Lin"]
version = "1.0.2"
`

// writePackage creates a plugin directory under parent. Empty contents skip
// the corresponding file.
func writePackage(t *testing.T, parent, name, manifest, script string) string {
	t.Helper()

	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if manifest != "" {
		writeFile(t, filepath.Join(dir, "metadata.toml"), manifest)
	}
	if script != "" {
		writeFile(t, filepath.Join(dir, "main.lua"), script)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func manifestFor(name string) string {
	return "name = \"" + name + "\"\nauthors = [\"Ada\"]\nversion = \"0.1.0\"\n"
}

// danglingLink returns a setup func that creates name as a symlink to a
// file that does not exist.
func danglingLink(name string) func(t *testing.T, dir string) {
	return func(t *testing.T, dir string) {
		t.Helper()
		if err := os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, name)); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
	}
}
