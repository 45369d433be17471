package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/recovery"
	"github.com/gridworks/anmgr/pkg/settings"
)

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.Flags().Parse([]string{"--config", "local.yaml", "--offline", "--log-level", "debug"}))

	env := settings.Environment{LocalConfig: "manager.yaml", LogLevel: "info", StateDB: "/var/lib/anmgr.db"}
	applyFlags(cmd, &env)

	assert.Equal(t, "local.yaml", env.LocalConfig)
	assert.Equal(t, "debug", env.LogLevel)
	assert.True(t, env.Offline)
	assert.Equal(t, "/var/lib/anmgr.db", env.StateDB, "unset flags keep environment values")
}

func TestInManagerDir(t *testing.T) {
	cli.env.ManagerDir = "/opt/anmgr"
	t.Cleanup(func() { cli.env.ManagerDir = "" })

	assert.Equal(t, filepath.Join("/opt/anmgr", "manager.yaml"), inManagerDir("manager.yaml"))
	assert.Equal(t, "/etc/manager.yaml", inManagerDir("/etc/manager.yaml"))
	assert.Equal(t, "", inManagerDir(""))
}

func newRecoveryFixture(t *testing.T, mode string) (*recovery.Manager, *params.Store, string) {
	t.Helper()
	mgrDir := t.TempDir()
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "leftover.txt"), []byte("x"), 0o644))

	store := params.FromMap(map[string]string{
		params.ManagerName:    "Pub-10-1",
		params.OfflineMode:    "true",
		params.WorkDir:        workDir,
		params.CleanupMode:    mode,
		params.CleanupHoldoff: "0.1",
	})
	return recovery.NewManager(store, recovery.Options{ManagerDir: mgrDir}), store, workDir
}

func TestRecoverPriorRun(t *testing.T) {
	t.Run("clean start", func(t *testing.T) {
		rec, store, workDir := newRecoveryFixture(t, "2")
		require.NoError(t, recoverPriorRun(context.Background(), rec, store))
		assert.FileExists(t, filepath.Join(workDir, "leftover.txt"))
	})

	t.Run("crash with cleanup enabled", func(t *testing.T) {
		rec, store, workDir := newRecoveryFixture(t, "2")
		rec.CreateStatusFlag()

		require.NoError(t, recoverPriorRun(context.Background(), rec, store))
		assert.NoFileExists(t, filepath.Join(workDir, "leftover.txt"))
		assert.False(t, rec.DetectPriorCrash())
	})

	t.Run("crash with cleanup disabled", func(t *testing.T) {
		rec, store, workDir := newRecoveryFixture(t, "0")
		rec.CreateStatusFlag()

		assert.Error(t, recoverPriorRun(context.Background(), rec, store))
		assert.FileExists(t, filepath.Join(workDir, "leftover.txt"))
		assert.True(t, rec.DetectPriorCrash())
	})

	t.Run("unacknowledged delete error", func(t *testing.T) {
		rec, store, _ := newRecoveryFixture(t, "2")
		rec.CreateDeleteErrorFlag()

		err := recoverPriorRun(context.Background(), rec, store)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ack-delete-error")

		rec.AcknowledgeDeleteError()
		assert.NoError(t, recoverPriorRun(context.Background(), rec, store))
	})
}

func TestCleanupMode(t *testing.T) {
	assert.Equal(t, recovery.CleanupOnce, cleanupMode(params.FromMap(map[string]string{params.CleanupMode: "1"})))
	assert.Equal(t, recovery.Disabled, cleanupMode(params.FromMap(map[string]string{params.CleanupMode: "bogus"})))
	assert.Equal(t, recovery.Disabled, cleanupMode(params.New()))
}

func TestCachedManagerName(t *testing.T) {
	mgrDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(mgrDir, "manager.yaml"),
		[]byte("MgrName: $ComputerName$_CyclopsA\n"), 0o644))
	cli.env.ManagerDir = mgrDir
	cli.env.LocalConfig = "manager.yaml"
	t.Cleanup(func() {
		cli.env.ManagerDir = ""
		cli.env.LocalConfig = ""
	})
	host := func() (string, error) { return "pub-10", nil }

	name, err := cachedManagerName("", host)
	require.NoError(t, err)
	assert.Equal(t, "pub-10_CyclopsA", name, "local MgrName is expanded")

	name, err = cachedManagerName("$ComputerName$_Other", host)
	require.NoError(t, err)
	assert.Equal(t, "pub-10_Other", name, "flag value is expanded")
}
