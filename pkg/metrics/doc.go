/*
Package metrics provides Prometheus metrics and health endpoints for anmgr.

All collectors are registered with the default Prometheus registry at init.

Settings:

  - anmgr_service_call_attempts_total{service,outcome}: control and broker
    query attempts, one per try
  - anmgr_settings_resolve_duration_seconds{mode}: time spent resolving
  - anmgr_settings_resolve_failures_total{kind}

Recovery:

  - anmgr_cleanup_runs_total{result}
  - anmgr_cleanup_failures_total
  - anmgr_cleanup_entries_deleted_total
  - anmgr_cleanup_permission_remediations_total: directories whose permissions
    were widened to allow deletion

Plugins:

  - anmgr_plugin_resolutions_total{category,result}

Mux serves /metrics together with /health, /ready and /live. A manager is
ready once the settings and recovery components report healthy.

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.SettingsResolveDuration, "online")
*/
package metrics
