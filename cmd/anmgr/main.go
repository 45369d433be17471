package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gridworks/anmgr/pkg/log"
	"github.com/gridworks/anmgr/pkg/metrics"
	"github.com/gridworks/anmgr/pkg/settings"
	"github.com/gridworks/anmgr/pkg/summary"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "anmgr",
	Short: "anmgr - analysis manager bootstrap",
	Long: `anmgr resolves an analysis manager's settings from its local files or the
central control service, recovers from an abnormal prior exit by cleaning
the work directory, and resolves the plugins that run each step tool.

Environment variables prefixed with ANMGR_ supply defaults for the global
flags.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"anmgr version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Local parameter file (default $ANMGR_LOCAL_CONFIG or manager.yaml)")
	flags.String("manager-dir", "", "Manager directory holding flag files and plugins (default current directory)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.Bool("offline", false, "Resolve settings from local files only")
	flags.String("state-db", "", "State database (default <manager-dir>/anmgr.db)")
	flags.String("metrics-addr", "", "Serve metrics and health endpoints on this address")
	flags.String("summary-file", "", "Append the run summary to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(flagsCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(dbCmd)
}

// app holds the process-wide state built before any command runs
type app struct {
	env     settings.Environment
	runID   string
	summary *summary.Summary
}

var cli app

func setup(cmd *cobra.Command, args []string) error {
	env, err := settings.LoadEnvironment()
	if err != nil {
		return fmt.Errorf("failed to read environment: %v", err)
	}
	applyFlags(cmd, &env)
	if env.ManagerDir == "" {
		env.ManagerDir = "."
	}

	log.Init(log.Config{
		Level:      log.ParseLevel(env.LogLevel),
		JSONOutput: env.LogJSON,
		Output:     os.Stderr,
	})

	cli.env = env
	cli.runID = uuid.NewString()
	cli.summary = summary.New(cli.runID)
	log.WithRunID(cli.runID)
	metrics.SetVersion(Version)
	return nil
}

// applyFlags overrides environment values with flags set on the command line
func applyFlags(cmd *cobra.Command, env *settings.Environment) {
	flags := cmd.Flags()
	if flags.Changed("config") {
		env.LocalConfig, _ = flags.GetString("config")
	}
	if flags.Changed("manager-dir") {
		env.ManagerDir, _ = flags.GetString("manager-dir")
	}
	if flags.Changed("log-level") {
		env.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		env.LogJSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("offline") {
		env.Offline, _ = flags.GetBool("offline")
	}
	if flags.Changed("state-db") {
		env.StateDB, _ = flags.GetString("state-db")
	}
	if flags.Changed("metrics-addr") {
		env.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
}
