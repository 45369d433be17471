package plugins

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Factory creates a new plugin instance
type Factory func() any

// Registry maps package names to the classes they provide. Package names are
// compared case-insensitively and without their file extension.
type Registry struct {
	mu       sync.RWMutex
	packages map[string]map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{packages: make(map[string]map[string]Factory)}
}

// DefaultRegistry receives registrations made through Register
var DefaultRegistry = NewRegistry()

// Register adds a class to the default registry. Plugin packages call it from
// an init function, either compiled in or loaded as a shared library.
func Register(pkg, class string, factory Factory) {
	DefaultRegistry.Register(pkg, class, factory)
}

// PackageKey normalizes a package name or file path for registry lookups
func PackageKey(pkg string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(pkg), `\`, "/"))
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.ToLower(base)
}

// Register adds or replaces a class factory
func (r *Registry) Register(pkg, class string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := PackageKey(pkg)
	classes, ok := r.packages[key]
	if !ok {
		classes = make(map[string]Factory)
		r.packages[key] = classes
	}
	classes[class] = factory
}

// HasPackage reports whether any class was registered for pkg
func (r *Registry) HasPackage(pkg string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.packages[PackageKey(pkg)]
	return ok
}

// Lookup returns the factory of class in pkg
func (r *Registry) Lookup(pkg, class string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes, ok := r.packages[PackageKey(pkg)]
	if !ok {
		return nil, false
	}
	f, ok := classes[class]
	return f, ok
}

// Classes returns the classes registered for pkg, sorted
func (r *Registry) Classes(pkg string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.packages[PackageKey(pkg)] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
