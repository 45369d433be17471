package recovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gridworks/anmgr/pkg/metrics"
	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/retry"
)

// cleanupRun carries the counters of one RunAutoCleanup call
type cleanupRun struct {
	debugLevel int
	policy     retry.Policy
	deleted    int
	failures   int
	lastErr    error

	// remediated holds the directories whose permissions were widened
	remediated map[string]bool
}

func (c *cleanupRun) fail(err error) {
	c.failures++
	c.lastErr = err
}

// RunAutoCleanup wipes the contents of the work directory after a crash and
// deletes the status flags. It returns true when nothing was left behind.
// Disabled mode returns false without touching anything.
func (m *Manager) RunAutoCleanup(ctx context.Context, mode Mode, debugLevel int) bool {
	if mode == Disabled {
		m.logger.Info().Msg("automatic cleanup is disabled")
		return false
	}
	if mode == CleanupOnce {
		m.logger.Warn().
			Msgf("cleanup mode is %q; an operator must reset %s once the manager is healthy", mode, params.CleanupMode)
	}

	m.report(ctx, StateStart, "")

	run := &cleanupRun{
		debugLevel: debugLevel,
		remediated: make(map[string]bool),
		policy: retry.Policy{
			MaxAttempts: retry.FileDeleteAttempts,
			Holdoff:     m.Holdoff(),
			Sleep:       m.opts.Sleep,
		},
	}

	workDir := m.WorkDir()
	if workDir == "" {
		run.fail(errors.New("work directory is not defined"))
		m.logger.Error().Msg("Cannot clean up: work directory is not defined")
	} else {
		m.logger.Info().Str("work_dir", workDir).Str("mode", mode.String()).Msg("cleaning work directory")
		m.wipe(ctx, run, workDir, false)
	}

	for _, name := range []string{StatusFlagFile, LegacyFlagFile} {
		if err := m.removeFlag(name); err != nil {
			run.fail(err)
			m.logger.Error().Err(err).Msg("Failed to delete flag file")
		}
	}

	m.lastFailures = run.failures
	metrics.CleanupEntriesDeleted.Add(float64(run.deleted))

	if run.failures > 0 {
		summary := fmt.Sprintf("cleanup of %s failed for %d entries; last error: %v", workDir, run.failures, run.lastErr)
		metrics.CleanupRuns.WithLabelValues("fail").Inc()
		metrics.CleanupFailures.Add(float64(run.failures))
		m.logger.Error().Int("failures", run.failures).Int("deleted", run.deleted).Msg(summary)
		m.report(ctx, StateFail, summary)
		return false
	}

	metrics.CleanupRuns.WithLabelValues("success").Inc()
	m.logger.Info().Int("deleted", run.deleted).Msg("work directory cleaned")
	m.report(ctx, StateSuccess, "")
	return true
}

// wipe deletes the children of dir, continuing past failures. It reports
// whether dir could be listed.
func (m *Manager) wipe(ctx context.Context, run *cleanupRun, dir string, canRemediate bool) bool {
	entries, err := m.listDir(run, dir, canRemediate)
	if err != nil {
		run.fail(err)
		m.logger.Error().Err(err).Str("path", dir).Msg("Failed to list directory")
		return false
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.IsDir() {
			m.removeEntry(ctx, run, path)
			continue
		}

		// an unlistable directory was counted once and is left as-is
		if !m.wipe(ctx, run, path, true) {
			continue
		}
		if remaining, err := m.opts.FS.ReadDir(path); err == nil && len(remaining) > 0 {
			m.logger.Warn().Str("path", path).Int("remaining", len(remaining)).Msg("directory not empty after cleanup; leaving it")
			continue
		}
		m.removeDir(ctx, run, path)
	}
	return true
}

// listDir lists dir. A subdirectory refusing to be listed with a permission
// error is remediated once and listed again.
func (m *Manager) listDir(run *cleanupRun, dir string, canRemediate bool) ([]os.DirEntry, error) {
	entries, err := m.opts.FS.ReadDir(dir)
	if err == nil || !canRemediate || !errors.Is(err, fs.ErrPermission) || run.remediated[dir] {
		return entries, err
	}
	m.remediate(run, dir)
	return m.opts.FS.ReadDir(dir)
}

func (m *Manager) removeEntry(ctx context.Context, run *cleanupRun, path string) {
	res := m.deleteWithRetry(ctx, run, path)
	if !res.OK() {
		run.fail(res.Err)
		m.logger.Error().Err(res.Err).Str("path", path).Int("attempts", res.Attempts).Msg("Failed to delete file")
		return
	}
	m.deleted(run, path)
}

// removeDir deletes an empty directory. A permission error earns one
// remediation pass and one more attempt.
func (m *Manager) removeDir(ctx context.Context, run *cleanupRun, path string) {
	res := m.deleteWithRetry(ctx, run, path)
	if res.OK() {
		m.deleted(run, path)
		return
	}

	err := res.Err
	if errors.Is(err, fs.ErrPermission) && !run.remediated[path] {
		m.remediate(run, path)
		err = m.opts.FS.Remove(path)
		if err == nil {
			m.deleted(run, path)
			return
		}
	}

	run.fail(err)
	m.logger.Error().Err(err).Str("path", path).Msg("Failed to delete directory")
}

func (m *Manager) deleteWithRetry(ctx context.Context, run *cleanupRun, path string) retry.Result {
	return run.policy.Do(ctx, func(context.Context, int) error {
		err := m.opts.FS.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}, func(attempt int, err error) {
		m.logger.Debug().Err(err).Str("path", path).Int("attempt", attempt).Msg("delete attempt failed")
	})
}

func (m *Manager) deleted(run *cleanupRun, path string) {
	run.deleted++
	if run.debugLevel >= 2 {
		m.logger.Debug().Str("path", path).Msg("deleted")
	}
}

// remediate grants the owner full rights on dir and everything below it,
// plus write access on its parent. This widens permissions and is logged.
func (m *Manager) remediate(run *cleanupRun, dir string) {
	run.remediated[dir] = true
	m.logger.Warn().Str("path", dir).Msg("granting owner read/write/execute rights to delete directory")
	metrics.PermissionRemediations.Inc()

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		mode := info.Mode().Perm() | 0o600
		if d.IsDir() {
			mode |= 0o700
		}
		if err := m.opts.FS.Chmod(path, mode); err != nil {
			m.logger.Debug().Err(err).Str("path", path).Msg("chmod failed")
		}
		return nil
	})

	parent := filepath.Dir(dir)
	if info, err := os.Stat(parent); err == nil {
		if err := m.opts.FS.Chmod(parent, info.Mode().Perm()|0o700); err != nil {
			m.logger.Debug().Err(err).Str("path", parent).Msg("chmod failed")
		}
	}
}
