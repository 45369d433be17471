package plugins

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gridworks/anmgr/pkg/log"
	"github.com/gridworks/anmgr/pkg/metrics"
	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/summary"
)

// Options configures a Resolver
type Options struct {
	// Registry holds the known classes; DefaultRegistry when nil
	Registry *Registry

	// Summary receives one entry per resolution, successful or not
	Summary *summary.Summary

	// OpenLibrary loads a shared library package; Go's plugin loader when nil
	OpenLibrary func(path string) error

	Logger *zerolog.Logger
}

// Resolver maps step tool names to plugin instances through the descriptor
// document. The descriptor is read again on every lookup so that edits take
// effect without restarting the manager.
type Resolver struct {
	store  *params.Store
	opts   Options
	logger zerolog.Logger
}

// NewResolver creates a resolver reading its directories from store
func NewResolver(store *params.Store, opts Options) *Resolver {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry
	}
	if opts.OpenLibrary == nil {
		opts.OpenLibrary = openSharedLibrary
	}
	logger := log.WithComponent("plugins")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Resolver{store: store, opts: opts, logger: logger}
}

// PluginDir returns the directory packages and the descriptor are resolved against
func (r *Resolver) PluginDir() string {
	dir := r.store.GetString(params.PluginDirectory, "")
	if dir == "" {
		dir = r.store.GetString(params.ManagerDir, ".")
	}
	return dir
}

// DescriptorPath returns the descriptor document location
func (r *Resolver) DescriptorPath() string {
	path := r.store.GetString(params.PluginInfoFile, DefaultDescriptorFile)
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.PluginDir(), path)
	}
	return path
}

// ResolveToolRunner instantiates the tool runner mapped to toolName
func (r *Resolver) ResolveToolRunner(toolName string) (ToolRunner, *Failure) {
	return resolveAs[ToolRunner](r, CategoryToolRunner, toolName)
}

// ResolveResourceStager instantiates the resource stager mapped to toolName
func (r *Resolver) ResolveResourceStager(toolName string) (ResourceStager, *Failure) {
	return resolveAs[ResourceStager](r, CategoryResourcer, toolName)
}

func resolveAs[T any](r *Resolver, category Category, toolName string) (T, *Failure) {
	var zero T

	entry, instance, failure := r.instantiate(category, toolName)
	if failure == nil {
		if typed, ok := instance.(T); ok {
			r.record(category, toolName, entry, nil)
			return typed, nil
		}
		failure = &Failure{
			Kind:    CapabilityMismatch,
			Message: fmt.Sprintf("class %s from %s (%T) does not implement %s", entry.Class, entry.Package, instance, capabilityName(category)),
		}
	}

	failure.Category = category
	failure.Tool = toolName
	failure.Class = entry.Class
	failure.Package = entry.Package
	r.record(category, toolName, entry, failure)
	return zero, failure
}

func capabilityName(category Category) string {
	if category == CategoryResourcer {
		return "ResourceStager"
	}
	return "ToolRunner"
}

func (r *Resolver) instantiate(category Category, toolName string) (Entry, any, *Failure) {
	path := r.DescriptorPath()
	descriptor, err := LoadDescriptor(path)
	if err != nil {
		msg := fmt.Sprintf("cannot read plugin descriptor %s", path)
		if errors.Is(err, os.ErrNotExist) {
			msg = fmt.Sprintf("plugin descriptor %s not found", path)
		}
		return Entry{}, nil, &Failure{Kind: DescriptorNotFound, Message: msg, Err: err}
	}

	lookup := fmt.Sprintf("%s[tool=%s]", category, toolName)
	matches := descriptor.Find(category, toolName)
	if len(matches) != 1 {
		return Entry{}, nil, &Failure{
			Kind:    AmbiguousOrMissingMapping,
			Message: fmt.Sprintf("ambiguous or missing mapping: %s matched %d entries in %s", lookup, len(matches), path),
		}
	}
	entry := matches[0]

	pkgPath, err := locatePackage(r.PluginDir(), entry.Package)
	if err != nil {
		return entry, nil, &Failure{Kind: PackageNotFound, Message: fmt.Sprintf("package for %s not found", lookup), Err: err}
	}

	if !r.opts.Registry.HasPackage(pkgPath) {
		if !strings.EqualFold(filepath.Ext(pkgPath), SharedLibraryExt) {
			return entry, nil, &Failure{
				Kind:    TypeLoadFailure,
				Message: fmt.Sprintf("package %s is not registered and is not a shared library", pkgPath),
			}
		}
		if err := r.opts.OpenLibrary(pkgPath); err != nil {
			return entry, nil, &Failure{Kind: TypeLoadFailure, Message: fmt.Sprintf("cannot load package %s", pkgPath), Err: err}
		}
	}

	factory, ok := r.opts.Registry.Lookup(pkgPath, entry.Class)
	if !ok {
		return entry, nil, &Failure{
			Kind:    TypeLoadFailure,
			Message: fmt.Sprintf("class %s not found in package %s (registered: %s)", entry.Class, pkgPath, strings.Join(r.opts.Registry.Classes(pkgPath), ", ")),
		}
	}

	instance, err := construct(factory)
	if err != nil {
		return entry, nil, &Failure{Kind: InstantiationFailure, Message: fmt.Sprintf("cannot create %s from %s", entry.Class, pkgPath), Err: err}
	}
	return entry, instance, nil
}

func construct(factory Factory) (instance any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("factory panicked: %v", p)
		}
	}()

	instance = factory()
	if instance == nil {
		return nil, errors.New("factory returned nil")
	}
	return instance, nil
}

func (r *Resolver) record(category Category, toolName string, entry Entry, failure *Failure) {
	result := "success"
	if failure != nil {
		result = string(failure.Kind)
	}
	metrics.PluginResolutions.WithLabelValues(string(category), result).Inc()

	logger := log.WithTool(r.logger, toolName)
	if failure != nil {
		logger.Error().
			Str("category", string(category)).
			Str("class", entry.Class).
			Str("package", entry.Package).
			Str("kind", string(failure.Kind)).
			Err(failure.Err).
			Msg(failure.Message)
	} else {
		logger.Info().
			Str("category", string(category)).
			Str("class", entry.Class).
			Str("package", entry.Package).
			Msg("plugin loaded")
	}

	if r.opts.Summary == nil {
		return
	}
	if failure != nil {
		r.opts.Summary.Add(zerolog.ErrorLevel, "plugin resolution failed: "+failure.Message,
			"category", string(category), "tool", toolName, "class", entry.Class, "package", entry.Package, "kind", string(failure.Kind))
		return
	}
	r.opts.Summary.Add(zerolog.InfoLevel, "plugin loaded",
		"category", string(category), "tool", toolName, "class", entry.Class, "package", entry.Package)
}
