package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/settings"
	"github.com/gridworks/anmgr/pkg/storage"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect manager settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Resolve and print the manager's parameters",
	Long: `Resolve and print the manager's parameters.

With --cached the parameters of the last successful 'anmgr run' are read
from the state database instead; no service is contacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cached, _ := cmd.Flags().GetBool("cached")
		if cached {
			manager, _ := cmd.Flags().GetString("manager")
			return showCachedSettings(manager)
		}

		store, failure, err := resolveSettings(cmd.Context())
		if err != nil {
			printFail("%v", err)
			if store == nil {
				return err
			}
		} else if failure != nil {
			printWarn("%s", failure.Message)
		}

		fmt.Printf("Parameters for %s:\n", bold(store.GetString(params.ManagerName, "?")))
		printParams(store.Snapshot())
		return err
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)

	settingsShowCmd.Flags().Bool("cached", false, "Show the snapshot saved by the last run")
	settingsShowCmd.Flags().String("manager", "", "Manager name for --cached (default MgrName from the local parameter file)")
}

func showCachedSettings(manager string) error {
	manager, err := cachedManagerName(manager, os.Hostname)
	if err != nil {
		return err
	}

	db, err := storage.NewBoltStore(stateDBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	if manager == "" {
		names, err := db.ListManagers()
		if err != nil {
			return err
		}
		fmt.Println("Saved snapshots:")
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	snap, err := db.LatestSnapshot(manager)
	if err != nil {
		return err
	}
	fmt.Printf("Parameters for %s (%s, resolved %s, run %s):\n",
		bold(snap.Manager), snap.Mode, snap.ResolvedAt.Format("2006-01-02 15:04:05"), snap.RunID)
	printParams(snap.Params)
	return nil
}

// cachedManagerName returns the snapshot key for --cached: the flag value or
// the local MgrName, expanded the way the resolver expands it
func cachedManagerName(manager string, hostname func() (string, error)) (string, error) {
	if manager == "" {
		local, err := settings.LoadLocalParams(inManagerDir(cli.env.LocalConfig))
		if err != nil {
			return "", nil
		}
		manager = params.FromMap(local).GetString(params.ManagerName, "")
	}
	name, err := settings.ExpandManagerName(manager, hostname)
	if err != nil {
		return "", fmt.Errorf("failed to expand manager name %s: %v", manager, err)
	}
	return name, nil
}
