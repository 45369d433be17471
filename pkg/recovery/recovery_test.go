package recovery

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridworks/anmgr/pkg/params"
)

type report struct {
	manager string
	state   int
	message string
}

type fakeTracker struct {
	reports []report
	err     error
}

func (f *fakeTracker) ReportCleanup(_ context.Context, manager string, state int, message string) error {
	f.reports = append(f.reports, report{manager: manager, state: state, message: message})
	return f.err
}

func (f *fakeTracker) states() []int {
	var states []int
	for _, r := range f.reports {
		states = append(states, r.state)
	}
	return states
}

// faultyFS fails removals of selected paths
type faultyFS struct {
	osFS
	fail     map[string]error
	listFail map[string]error
	healable map[string]bool
	removes  map[string]int
	chmods   map[string]int
}

func newFaultyFS() *faultyFS {
	return &faultyFS{
		fail:     map[string]error{},
		listFail: map[string]error{},
		healable: map[string]bool{},
		removes:  map[string]int{},
		chmods:   map[string]int{},
	}
}

func (f *faultyFS) Remove(path string) error {
	f.removes[path]++
	if err, ok := f.fail[path]; ok {
		return &fs.PathError{Op: "remove", Path: path, Err: err}
	}
	return f.osFS.Remove(path)
}

func (f *faultyFS) ReadDir(path string) ([]os.DirEntry, error) {
	if err, ok := f.listFail[path]; ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}
	return f.osFS.ReadDir(path)
}

func (f *faultyFS) Chmod(path string, mode os.FileMode) error {
	f.chmods[path]++
	if f.healable[path] {
		delete(f.fail, path)
		delete(f.listFail, path)
	}
	return f.osFS.Chmod(path, mode)
}

type fixture struct {
	mgr     *Manager
	store   *params.Store
	fs      *faultyFS
	tracker *fakeTracker
	mgrDir  string
	workDir string
	sleeps  []time.Duration
}

func newFixture(t *testing.T, extra map[string]string) *fixture {
	t.Helper()
	f := &fixture{
		fs:      newFaultyFS(),
		tracker: &fakeTracker{},
		mgrDir:  t.TempDir(),
		workDir: t.TempDir(),
	}
	values := map[string]string{
		params.ManagerName:        "Pub-10-1",
		params.WorkDir:            f.workDir,
		params.TrackingConnection: "sqlite://tracking.db",
		params.CleanupHoldoff:     "0.5",
	}
	for k, v := range extra {
		values[k] = v
	}
	f.store = params.FromMap(values)
	f.mgr = NewManager(f.store, Options{
		ManagerDir: f.mgrDir,
		NewTracker: func(string) (Tracker, error) { return f.tracker, nil },
		FS:         f.fs,
		Hostname:   func() (string, error) { return "proto-3", nil },
		Sleep:      func(d time.Duration) { f.sleeps = append(f.sleeps, d) },
	})
	return f
}

func (f *fixture) writeFile(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(f.workDir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	return path
}

func (f *fixture) mkdir(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(f.workDir, rel)
	require.NoError(t, os.MkdirAll(path, 0o755))
	return path
}

func TestStatusFlagLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	assert.False(t, f.mgr.DetectPriorCrash())
	f.mgr.CreateStatusFlag()
	assert.True(t, f.mgr.DetectPriorCrash())
	f.mgr.CreateStatusFlag()
	assert.True(t, f.mgr.DetectPriorCrash())

	data, err := os.ReadFile(filepath.Join(f.mgrDir, StatusFlagFile))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	f.mgr.DeleteStatusFlag()
	assert.False(t, f.mgr.DetectPriorCrash())
	f.mgr.DeleteStatusFlag()
	assert.False(t, f.mgr.DetectPriorCrash())
}

func TestDeleteErrorFlagLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	f.mgr.AcknowledgeDeleteError()
	assert.False(t, f.mgr.DetectUnresolvedDeleteError())

	f.mgr.CreateDeleteErrorFlag()
	assert.True(t, f.mgr.DetectUnresolvedDeleteError())

	f.mgr.AcknowledgeDeleteError()
	assert.False(t, f.mgr.DetectUnresolvedDeleteError())
	f.mgr.AcknowledgeDeleteError()
	assert.False(t, f.mgr.DetectUnresolvedDeleteError())
}

func TestRunAutoCleanup_Disabled(t *testing.T) {
	f := newFixture(t, nil)
	path := f.writeFile(t, "keep.txt")
	f.mgr.CreateStatusFlag()

	assert.False(t, f.mgr.RunAutoCleanup(context.Background(), Disabled, 0))
	assert.FileExists(t, path)
	assert.True(t, f.mgr.DetectPriorCrash())
	assert.Empty(t, f.tracker.reports)
	assert.Empty(t, f.fs.removes)
}

func TestRunAutoCleanup_RemovesEverything(t *testing.T) {
	f := newFixture(t, nil)
	f.writeFile(t, "a.txt")
	f.writeFile(t, "b.raw")
	f.writeFile(t, "sub/c.txt")
	f.writeFile(t, "sub/deeper/d.txt")
	f.mkdir(t, "empty1")
	f.mkdir(t, "empty2")
	f.mgr.CreateStatusFlag()
	require.NoError(t, os.WriteFile(filepath.Join(f.mgrDir, LegacyFlagFile), []byte("x\n"), 0o644))

	ok := f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 2)
	require.True(t, ok)
	assert.Zero(t, f.mgr.LastCleanupFailures())

	entries, err := os.ReadDir(f.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.DirExists(t, f.workDir)

	assert.False(t, f.mgr.DetectPriorCrash())
	assert.NoFileExists(t, filepath.Join(f.mgrDir, LegacyFlagFile))

	assert.Equal(t, []int{int(StateStart), int(StateSuccess)}, f.tracker.states())
	assert.Equal(t, "Pub-10-1", f.tracker.reports[0].manager)
	assert.Empty(t, f.sleeps)
}

func TestRunAutoCleanup_StubbornFile(t *testing.T) {
	f := newFixture(t, nil)
	stuck := f.writeFile(t, "locked.dat")
	f.writeFile(t, "other1.txt")
	f.writeFile(t, "nested/other2.txt")
	f.fs.fail[stuck] = errors.New("file in use")

	ok := f.mgr.RunAutoCleanup(context.Background(), CleanupOnce, 0)
	assert.False(t, ok)
	assert.Equal(t, 1, f.mgr.LastCleanupFailures())

	assert.Equal(t, 3, f.fs.removes[stuck])
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, f.sleeps)

	entries, err := os.ReadDir(f.workDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "locked.dat", entries[0].Name())

	require.Len(t, f.tracker.reports, 2)
	assert.Equal(t, int(StateFail), f.tracker.reports[1].state)
	assert.Contains(t, f.tracker.reports[1].message, "file in use")
}

func TestRunAutoCleanup_NonEmptyDirectoryLeft(t *testing.T) {
	f := newFixture(t, nil)
	stuck := f.writeFile(t, "results/locked.dat")
	f.fs.fail[stuck] = errors.New("file in use")

	assert.False(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.Equal(t, 1, f.mgr.LastCleanupFailures())
	assert.Zero(t, f.fs.removes[filepath.Join(f.workDir, "results")])
	assert.FileExists(t, stuck)
}

func TestRunAutoCleanup_PermissionRemediation(t *testing.T) {
	f := newFixture(t, nil)
	dir := f.mkdir(t, "readonly")
	f.fs.fail[dir] = fs.ErrPermission
	f.fs.healable[dir] = true

	assert.True(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.NoDirExists(t, dir)
	assert.Equal(t, 1, f.fs.chmods[dir])
	assert.Equal(t, 4, f.fs.removes[dir])
}

func TestRunAutoCleanup_RemediationAttemptedOnce(t *testing.T) {
	f := newFixture(t, nil)
	dir := f.mkdir(t, "stubborn")
	f.fs.fail[dir] = fs.ErrPermission

	assert.False(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.Equal(t, 1, f.mgr.LastCleanupFailures())
	assert.Equal(t, 1, f.fs.chmods[dir])
	assert.Equal(t, 4, f.fs.removes[dir])
}

func TestRunAutoCleanup_UnlistableDirectoryRemediated(t *testing.T) {
	f := newFixture(t, nil)
	f.writeFile(t, "locked/inside.txt")
	dir := filepath.Join(f.workDir, "locked")
	f.fs.listFail[dir] = fs.ErrPermission
	f.fs.healable[dir] = true

	assert.True(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.Zero(t, f.mgr.LastCleanupFailures())
	assert.Equal(t, 1, f.fs.chmods[dir])
	assert.NoDirExists(t, dir)
}

func TestRunAutoCleanup_UnlistableDirectoryCountedOnce(t *testing.T) {
	f := newFixture(t, nil)
	f.writeFile(t, "locked/inside.txt")
	f.writeFile(t, "other.txt")
	dir := filepath.Join(f.workDir, "locked")
	f.fs.listFail[dir] = fs.ErrPermission

	assert.False(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.Equal(t, 1, f.mgr.LastCleanupFailures())
	assert.Equal(t, 1, f.fs.chmods[dir])
	assert.Zero(t, f.fs.removes[dir])
	assert.FileExists(t, filepath.Join(dir, "inside.txt"))
	assert.NoFileExists(t, filepath.Join(f.workDir, "other.txt"))
}

func TestRunAutoCleanup_UnlistableWorkDirNotRemediated(t *testing.T) {
	f := newFixture(t, nil)
	f.fs.listFail[f.workDir] = fs.ErrPermission

	assert.False(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.Equal(t, 1, f.mgr.LastCleanupFailures())
	assert.Empty(t, f.fs.chmods)
}

func TestRunAutoCleanup_FlagDeleteFailureCounts(t *testing.T) {
	f := newFixture(t, nil)
	f.mgr.CreateStatusFlag()
	f.fs.fail[filepath.Join(f.mgrDir, StatusFlagFile)] = fs.ErrPermission

	assert.False(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.Equal(t, 1, f.mgr.LastCleanupFailures())
}

func TestRunAutoCleanup_MissingWorkDir(t *testing.T) {
	f := newFixture(t, nil)
	f.store.Set(params.WorkDir, filepath.Join(f.workDir, "gone"))

	assert.False(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.Equal(t, 1, f.mgr.LastCleanupFailures())
}

func TestRunAutoCleanup_NoTrackingConnection(t *testing.T) {
	tests := []struct {
		name    string
		offline string
	}{
		{name: "online", offline: "false"},
		{name: "offline", offline: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]string{
				params.TrackingConnection: "",
				params.OfflineMode:        tt.offline,
			})
			called := false
			f.mgr.opts.NewTracker = func(string) (Tracker, error) {
				called = true
				return f.tracker, nil
			}

			assert.True(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
			assert.False(t, called)
		})
	}
}

func TestRunAutoCleanup_TrackerErrorIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.tracker.err = errors.New("tracking down")
	f.writeFile(t, "a.txt")

	assert.True(t, f.mgr.RunAutoCleanup(context.Background(), CleanupAlways, 0))
	assert.Len(t, f.tracker.reports, 2)
}

func TestHoldoff(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		devHosts  string
		wantDelay time.Duration
	}{
		{name: "default", value: "", wantDelay: DefaultHoldoff},
		{name: "zero clamps to minimum", value: "0", wantDelay: MinHoldoff},
		{name: "negative clamps to minimum", value: "-4", wantDelay: MinHoldoff},
		{name: "fractional", value: "2.5", wantDelay: 2500 * time.Millisecond},
		{name: "clamps to maximum", value: "1000", wantDelay: MaxHoldoff},
		{name: "developer host", value: "30", devHosts: "build-1, PROTO-3", wantDelay: DeveloperHoldoff},
		{name: "developer host keeps short holdoff", value: "0.2", devHosts: "proto-3", wantDelay: 200 * time.Millisecond},
		{name: "other host", value: "30", devHosts: "build-1", wantDelay: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]string{
				params.CleanupHoldoff: tt.value,
				params.DeveloperHosts: tt.devHosts,
			})
			assert.Equal(t, tt.wantDelay, f.mgr.Holdoff())
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "0", want: Disabled},
		{in: "1", want: CleanupOnce},
		{in: "2", want: CleanupAlways},
		{in: "", want: Disabled},
		{in: "Always", want: CleanupAlways},
		{in: " once ", want: CleanupOnce},
		{in: "3", wantErr: true},
		{in: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
