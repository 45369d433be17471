package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/recovery"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Inspect and reset the manager's sentinel files",
}

// flagManager works on the manager directory alone; no settings are resolved
func flagManager() *recovery.Manager {
	return recovery.NewManager(params.New(), recovery.Options{ManagerDir: cli.env.ManagerDir})
}

var flagsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the sentinel files",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := flagManager()
		fmt.Printf("Manager directory: %s\n", rec.ManagerDir())

		if rec.DetectPriorCrash() {
			printWarn("Status flag present: the manager is running or did not exit cleanly")
		} else {
			printOK("No status flag")
		}
		if rec.DetectUnresolvedDeleteError() {
			printFail("Delete-error flag present: an earlier cleanup left files behind")
		} else {
			printOK("No delete-error flag")
		}
		return nil
	},
}

var flagsAckCmd = &cobra.Command{
	Use:   "ack-delete-error",
	Short: "Acknowledge a failed cleanup so the manager can start again",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagManager().AcknowledgeDeleteError()
		printOK("Delete-error flag cleared")
		return nil
	},
}

var flagsClearStatusCmd = &cobra.Command{
	Use:   "clear-status",
	Short: "Delete the status flag after a manual cleanup",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagManager().DeleteStatusFlag()
		printOK("Status flag cleared")
		return nil
	},
}

func init() {
	flagsCmd.AddCommand(flagsStatusCmd)
	flagsCmd.AddCommand(flagsAckCmd)
	flagsCmd.AddCommand(flagsClearStatusCmd)
}
