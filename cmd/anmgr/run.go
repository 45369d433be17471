package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gridworks/anmgr/pkg/log"
	"github.com/gridworks/anmgr/pkg/metrics"
	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/recovery"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the manager",
	Long: `Start the manager: resolve its settings, recover from an abnormal
prior exit, then mark it as running until interrupted.

A manager whose previous cleanup left files behind does not start until
the delete-error flag is acknowledged with 'anmgr flags ack-delete-error'.`,
	RunE: runManager,
}

func init() {
	runCmd.Flags().Bool("once", false, "Exit after startup instead of waiting for a signal")
}

func runManager(cmd *cobra.Command, args []string) error {
	once, _ := cmd.Flags().GetBool("once")
	summaryFile, _ := cmd.Flags().GetString("summary-file")
	defer writeSummary(summaryFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cli.env.MetricsAddr != "" {
		srv := startMetricsServer(cli.env.MetricsAddr)
		defer shutdownMetricsServer(srv)
	}

	fmt.Println("Starting manager...")
	fmt.Printf("  Manager Directory: %s\n", cli.env.ManagerDir)
	fmt.Printf("  Run ID: %s\n", cli.runID)
	fmt.Println()

	store, failure, err := resolveSettings(ctx)
	if err != nil {
		printFail("Settings: %v", err)
		return err
	}
	if failure != nil {
		printWarn("%s", failure.Message)
		cli.summary.Add(zerolog.WarnLevel, failure.Message, "kind", string(failure.Kind))
		return nil
	}
	name := store.GetString(params.ManagerName, "")
	printOK("Settings resolved for %s (%d parameters)", bold(name), store.Len())

	if err := saveSnapshot(store); err != nil {
		log.Logger.Warn().Err(err).Msg("Failed to save settings snapshot")
	}

	rec := newRecovery(store)
	if err := recoverPriorRun(ctx, rec, store); err != nil {
		metrics.UpdateComponent(metrics.ComponentRecovery, false, err.Error())
		cli.summary.Add(zerolog.ErrorLevel, err.Error(), "manager", name)
		printFail("%v", err)
		return err
	}

	rec.CreateStatusFlag()
	metrics.UpdateComponent(metrics.ComponentRecovery, true, "")
	cli.summary.Add(zerolog.InfoLevel, "manager started", "manager", name)

	if once {
		rec.DeleteStatusFlag()
		printOK("Startup complete")
		return nil
	}

	fmt.Println()
	fmt.Println("Manager is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	fmt.Println("\nShutting down...")
	rec.DeleteStatusFlag()
	cli.summary.Add(zerolog.InfoLevel, "manager stopped", "manager", name)
	printOK("Shutdown complete")
	return nil
}

// recoverPriorRun refuses to start over an unacknowledged delete error and
// cleans up after a crash when the cleanup mode allows it
func recoverPriorRun(ctx context.Context, rec *recovery.Manager, store *params.Store) error {
	if rec.DetectUnresolvedDeleteError() {
		return fmt.Errorf("an earlier cleanup left files in %s; check it, then run 'anmgr flags ack-delete-error'", rec.WorkDir())
	}
	if !rec.DetectPriorCrash() {
		return nil
	}

	printWarn("Previous run did not exit cleanly")
	mode := cleanupMode(store)
	if mode == recovery.Disabled {
		return errors.New("automatic cleanup is disabled; clean the work directory and run 'anmgr flags clear-status'")
	}

	if !rec.RunAutoCleanup(ctx, mode, store.GetInt(params.DebugLevel, 1)) {
		rec.CreateDeleteErrorFlag()
		return fmt.Errorf("cleanup of %s failed for %d entries", rec.WorkDir(), rec.LastCleanupFailures())
	}
	printOK("Work directory %s cleaned", rec.WorkDir())
	return nil
}

func startMetricsServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Logger.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	printOK("Metrics listening on %s", addr)
	return srv
}

func shutdownMetricsServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Logger.Warn().Err(err).Msg("Metrics server shutdown failed")
	}
}
