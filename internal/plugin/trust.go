package plugin

import (
	"path/filepath"
	"strings"
)

// TrustPolicy decides whether the host may execute a plugin directory.
// Loading a plugin runs its script with the engine's full privilege, so the
// policy is the only gate between a directory and code execution.
type TrustPolicy interface {
	Trusted(dir string) bool
}

// TrustFunc adapts a function to TrustPolicy.
type TrustFunc func(dir string) bool

// Trusted implements TrustPolicy.
func (f TrustFunc) Trusted(dir string) bool {
	return f(dir)
}

// TrustAll trusts every directory.
func TrustAll() TrustPolicy {
	return TrustFunc(func(string) bool { return true })
}

// TrustNone trusts nothing.
func TrustNone() TrustPolicy {
	return TrustFunc(func(string) bool { return false })
}

// TrustDirs trusts directories at or below one of roots. Paths are compared
// after symlink resolution, so a link inside a root that points elsewhere is
// not trusted.
func TrustDirs(roots ...string) TrustPolicy {
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		resolved = append(resolved, resolvePath(root))
	}

	return TrustFunc(func(dir string) bool {
		target := resolvePath(dir)
		for _, root := range resolved {
			if within(root, target) {
				return true
			}
		}
		return false
	})
}

// resolvePath makes path absolute and resolves symlinks in its longest
// existing prefix.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	rest := ""
	for dir := abs; ; {
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(real, rest)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
	}
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
