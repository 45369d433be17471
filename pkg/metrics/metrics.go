package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Service call metrics
	ServiceCallAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anmgr_service_call_attempts_total",
			Help: "Total number of control, broker and tracking service call attempts by outcome",
		},
		[]string{"service", "outcome"},
	)

	SettingsResolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anmgr_settings_resolve_duration_seconds",
			Help:    "Time taken to resolve manager settings in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	SettingsResolveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anmgr_settings_resolve_failures_total",
			Help: "Total number of settings resolution failures by kind",
		},
		[]string{"kind"},
	)

	// Cleanup metrics
	CleanupRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anmgr_cleanup_runs_total",
			Help: "Total number of working directory cleanups by result",
		},
		[]string{"result"},
	)

	CleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anmgr_cleanup_failures_total",
			Help: "Total number of files or directories that could not be deleted",
		},
	)

	CleanupEntriesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anmgr_cleanup_entries_deleted_total",
			Help: "Total number of files and directories deleted by cleanup",
		},
	)

	PermissionRemediations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "anmgr_cleanup_permission_remediations_total",
			Help: "Total number of permission repair passes applied to stubborn directories",
		},
	)

	// Plugin metrics
	PluginResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anmgr_plugin_resolutions_total",
			Help: "Total number of plugin resolutions by category and result",
		},
		[]string{"category", "result"},
	)
)

func init() {
	prometheus.MustRegister(ServiceCallAttempts)
	prometheus.MustRegister(SettingsResolveDuration)
	prometheus.MustRegister(SettingsResolveFailures)
	prometheus.MustRegister(CleanupRuns)
	prometheus.MustRegister(CleanupFailures)
	prometheus.MustRegister(CleanupEntriesDeleted)
	prometheus.MustRegister(PermissionRemediations)
	prometheus.MustRegister(PluginResolutions)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Mux returns a ServeMux with the metrics and health endpoints mounted
func Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", HealthHandler())
	mux.HandleFunc("/ready", ReadyHandler())
	mux.HandleFunc("/live", LivenessHandler())
	return mux
}
