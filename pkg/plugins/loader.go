package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"
	"strings"
)

// SharedLibraryExt is the extension of packages opened as Go shared libraries
const SharedLibraryExt = ".so"

// openSharedLibrary loads a Go plugin so that its init functions register
// their classes
func openSharedLibrary(path string) error {
	_, err := goplugin.Open(path)
	return err
}

// locatePackage resolves a package path relative to dir. When the exact name
// is missing, a directory entry differing only in case is used instead.
func locatePackage(dir, pkg string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(strings.TrimSpace(pkg), `\`, "/"))
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, rel)
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}

	parent := filepath.Dir(path)
	want := filepath.Base(path)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", fmt.Errorf("package %s not found: %w", path, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), want) {
			return filepath.Join(parent, e.Name()), nil
		}
	}
	return "", fmt.Errorf("package %s not found", path)
}
