package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridworks/anmgr/pkg/services"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage service databases for development and testing",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the service tables in a sqlite database",
	Long: `Create the manager parameter, step tool, log and cleanup report tables
in a sqlite database. One database may serve as control, broker and
tracking service at once.

Examples:
  anmgr db init --dsn sqlite:///var/lib/anmgr/services.db
  anmgr db set-param --dsn services.db Pub-10-1 WorkDir /data/work
  anmgr db set-storage-path --dsn services.db MSGFPlus /data/params/MSGFPlus`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")

		db, err := services.Open(dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := services.Bootstrap(cmd.Context(), db); err != nil {
			return err
		}
		printOK("Schema created in %s", services.DataSource(dsn))
		return nil
	},
}

var dbSetParamCmd = &cobra.Command{
	Use:   "set-param MANAGER NAME VALUE",
	Short: "Set a manager or settings group parameter in the control database",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")

		control, err := services.NewControlClient(dsn)
		if err != nil {
			return err
		}
		defer control.Close()

		if err := control.SetManagerParam(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return err
		}
		printOK("%s: %s = %s", args[0], args[1], args[2])
		return nil
	},
}

var dbSetStoragePathCmd = &cobra.Command{
	Use:   "set-storage-path TOOL PATH",
	Short: "Set a step tool's parameter file storage path in the broker database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")

		broker, err := services.NewBrokerClient(dsn)
		if err != nil {
			return err
		}
		defer broker.Close()

		if err := broker.SetStepToolStoragePath(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to set storage path: %v", err)
		}
		printOK("%s: %s", args[0], args[1])
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbSetParamCmd)
	dbCmd.AddCommand(dbSetStoragePathCmd)

	for _, c := range []*cobra.Command{dbInitCmd, dbSetParamCmd, dbSetStoragePathCmd} {
		c.Flags().String("dsn", "", "sqlite database path or sqlite:// URL")
		_ = c.MarkFlagRequired("dsn")
	}
}
