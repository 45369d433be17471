package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/recovery"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Wipe the manager's work directory",
	Long: `Wipe the contents of the manager's work directory and delete the status
flags, reporting the outcome to the tracking service.

The mode defaults to ManagerErrorCleanupMode. Pass --mode always to clean
regardless of the configured mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := mustResolve(cmd.Context())
		if err != nil {
			return err
		}

		mode := cleanupMode(store)
		if cmd.Flags().Changed("mode") {
			value, _ := cmd.Flags().GetString("mode")
			if mode, err = recovery.ParseMode(value); err != nil {
				return err
			}
		}
		if mode == recovery.Disabled {
			printWarn("Cleanup mode is disabled; nothing done")
			return nil
		}

		rec := newRecovery(store)
		if !rec.RunAutoCleanup(cmd.Context(), mode, store.GetInt(params.DebugLevel, 1)) {
			rec.CreateDeleteErrorFlag()
			printFail("Cleanup of %s failed for %d entries", rec.WorkDir(), rec.LastCleanupFailures())
			return fmt.Errorf("cleanup failed")
		}
		printOK("Work directory %s cleaned", rec.WorkDir())
		return nil
	},
}

func init() {
	cleanupCmd.Flags().String("mode", "", "Cleanup mode: 0/disabled, 1/once, 2/always")
}
