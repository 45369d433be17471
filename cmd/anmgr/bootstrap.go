package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/gridworks/anmgr/pkg/log"
	"github.com/gridworks/anmgr/pkg/metrics"
	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/recovery"
	"github.com/gridworks/anmgr/pkg/settings"
	"github.com/gridworks/anmgr/pkg/storage"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func printOK(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

func printWarn(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", yellow("!"), fmt.Sprintf(format, args...))
}

func printFail(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

// inManagerDir resolves a relative path against the manager directory
func inManagerDir(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cli.env.ManagerDir, path)
}

func stateDBPath() string {
	if cli.env.StateDB != "" {
		return cli.env.StateDB
	}
	return storage.DefaultPath(cli.env.ManagerDir)
}

// resolveSettings loads the local parameter file and resolves the full
// parameter set. A non-fatal failure is returned alongside the store.
func resolveSettings(ctx context.Context) (*params.Store, *settings.Failure, error) {
	path := inManagerDir(cli.env.LocalConfig)
	local, err := settings.LoadLocalParams(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load local parameters: %v", err)
	}
	if cli.env.Offline {
		local[params.OfflineMode] = "true"
	}

	resolver := settings.NewResolver(settings.Options{ManagerDir: cli.env.ManagerDir})
	store, failure := resolver.Resolve(ctx, local)
	store.SetIfAbsent(params.ManagerDir, cli.env.ManagerDir)
	metrics.SetManager(store.GetString(params.ManagerName, ""))

	if failure != nil {
		metrics.UpdateComponent(metrics.ComponentSettings, false, failure.Message)
		if failure.Fatal() {
			return store, failure, failure
		}
		return store, failure, nil
	}
	metrics.UpdateComponent(metrics.ComponentSettings, true, "")
	return store, nil, nil
}

// mustResolve resolves settings and treats deactivation as an error
func mustResolve(ctx context.Context) (*params.Store, error) {
	store, failure, err := resolveSettings(ctx)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}
	return store, nil
}

func saveSnapshot(store *params.Store) error {
	db, err := storage.NewBoltStore(stateDBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	mode := "online"
	if store.GetBool(params.OfflineMode, false) {
		mode = "offline"
	}
	return db.SaveSnapshot(&storage.Snapshot{
		Manager:    store.GetString(params.ManagerName, ""),
		RunID:      cli.runID,
		Mode:       mode,
		ResolvedAt: time.Now(),
		Params:     store.Snapshot(),
	})
}

func newRecovery(store *params.Store) *recovery.Manager {
	return recovery.NewManager(store, recovery.Options{ManagerDir: cli.env.ManagerDir})
}

// cleanupMode reads ManagerErrorCleanupMode, treating a bad value as Disabled
func cleanupMode(store *params.Store) recovery.Mode {
	mode, err := recovery.ParseMode(store.GetString(params.CleanupMode, "0"))
	if err != nil {
		log.Logger.Warn().Err(err).Msg("Ignoring invalid cleanup mode")
		return recovery.Disabled
	}
	return mode
}

func writeSummary(cmdSummaryFile string) {
	if cmdSummaryFile == "" {
		return
	}
	if err := cli.summary.WriteFile(cmdSummaryFile); err != nil {
		log.Logger.Error().Err(err).Str("path", cmdSummaryFile).Msg("Failed to write run summary")
	}
}

func printParams(values map[string]string) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, name := range names {
		fmt.Printf("  %s  %s\n", bold(fmt.Sprintf("%-*s", width, name)), values[name])
	}
}
