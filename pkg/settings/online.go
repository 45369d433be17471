package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gridworks/anmgr/pkg/metrics"
	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/retry"
	"github.com/gridworks/anmgr/pkg/services"
)

func (r *Resolver) resolveOnline(ctx context.Context, store *params.Store) *Failure {
	if !store.GetBool(params.ManagerActiveLocal, true) {
		return newFailure(DeactivatedLocally, StageActivity, nil,
			"manager deactivated locally (%s=false)", params.ManagerActiveLocal)
	}

	if failure := r.loadCentralParams(ctx, store); failure != nil {
		return failure
	}

	if !store.GetBool(params.ManagerActive, true) {
		return newFailure(DeactivatedCentrally, StageActivity, nil,
			"manager deactivated in the control service (%s=false)", params.ManagerActive)
	}

	return r.loadStoragePaths(ctx, store)
}

func (r *Resolver) policy(store *params.Store) retry.Policy {
	holdoff := r.opts.ServiceHoldoff
	if secs := store.GetFloat(params.ServiceRetryHoldoff, -1); secs >= 0 {
		holdoff = time.Duration(secs * float64(time.Second))
	}
	p := retry.ServicePolicy(holdoff)
	p.Sleep = r.opts.Sleep
	return p
}

// loadCentralParams merges the manager's parameters (overwrite) and then each
// settings group of the chain (no overwrite).
func (r *Resolver) loadCentralParams(ctx context.Context, store *params.Store) *Failure {
	profile := services.ProfileFromParams(store)
	if !profile.HasControl() {
		r.logger.Warn().
			Str("parameter", params.ControlConnection).
			Msg("control service connection string is blank; manager parameters will not be loaded")
		return nil
	}

	conn := profile.Control
	control, err := r.opts.NewControl(conn)
	if err != nil {
		return newFailure(ServiceUnreachable, StageControl, err, "cannot connect to control service %s", conn)
	}
	if c, ok := control.(interface{ Close() error }); ok {
		defer c.Close()
	}

	managerName := store.GetString(params.ManagerName, "")
	rows, failure := r.queryParams(ctx, store, control, conn, managerName, StageControl)
	if failure != nil {
		return failure
	}
	if len(rows) == 0 {
		return newFailure(MissingRequiredParameter, StageControl, nil,
			"manager %s is not defined in the control service %s", managerName, conn)
	}
	merged := store.Merge(paramMap(rows), true)
	r.logger.Debug().Str("manager", managerName).Int("parameters", merged).Msg("merged manager parameters")

	visited := map[string]bool{strings.ToLower(managerName): true}
	group := strings.TrimSpace(store.GetString(params.SettingsGroupName, ""))
	for group != "" {
		key := strings.ToLower(group)
		if visited[key] {
			r.logger.Warn().
				Str("group", group).
				Msg("settings group chain loops back to an already merged group; stopping")
			break
		}
		visited[key] = true

		rows, failure := r.queryParams(ctx, store, control, conn, group, StageGroup)
		if failure != nil {
			return failure
		}
		if len(rows) == 0 {
			r.logger.Debug().Str("group", group).Msg("settings group has no parameters; chain ends")
			break
		}

		values := paramMap(rows)
		merged := store.Merge(values, false)
		r.logger.Debug().Str("group", group).Int("parameters", merged).Msg("merged settings group parameters")

		group = strings.TrimSpace(lookup(values, params.SettingsGroupName))
	}
	return nil
}

func (r *Resolver) queryParams(ctx context.Context, store *params.Store, control ControlService, conn, name string, stage Stage) ([]services.Param, *Failure) {
	var rows []services.Param
	res := r.policy(store).Do(ctx, func(ctx context.Context, attempt int) error {
		var err error
		rows, err = control.ManagerParams(ctx, name)
		recordAttempt("control", err)
		return err
	}, func(attempt int, err error) {
		r.logger.Warn().
			Err(err).
			Str("connection", conn).
			Str("name", name).
			Int("attempt", attempt).
			Msg("control service query failed")
	})
	if res.OK() {
		return rows, nil
	}

	msg := fmt.Sprintf("control service %s unreachable after %d attempts querying %s", conn, res.Attempts, name)
	r.reportError(ctx, store, control, msg)
	return nil, newFailure(ServiceUnreachable, stage, res.Err, "%s", msg)
}

// reportError posts to the control service's error channel unless a
// maintenance window is active. The post is a single best-effort attempt.
func (r *Resolver) reportError(ctx context.Context, store *params.Store, control ControlService, msg string) {
	window, err := ParseMaintenanceWindow(store.GetString(params.MaintenanceWindow, ""))
	if err != nil {
		r.logger.Warn().Err(err).Msg("ignoring invalid maintenance window")
	}
	if window.Contains(r.opts.Now()) {
		r.logger.Info().Msg("maintenance window active; not posting error to the control service")
		return
	}

	postedBy := "Analysis Manager: " + store.GetString(params.ManagerName, "")
	if err := control.PostLogEntry(ctx, postedBy, "Error", msg); err != nil {
		r.logger.Debug().Err(err).Msg("could not post error to the control service")
	}
}

func (r *Resolver) loadStoragePaths(ctx context.Context, store *params.Store) *Failure {
	profile := services.ProfileFromParams(store)
	if !profile.HasBroker() {
		r.logger.Warn().
			Str("parameter", params.BrokerConnection).
			Msg("broker service connection string is blank; step tool storage paths will not be loaded")
		return nil
	}

	conn := profile.Broker
	broker, err := r.opts.NewBroker(conn)
	if err != nil {
		return newFailure(ServiceUnreachable, StageBroker, err, "cannot connect to broker service %s", conn)
	}
	if c, ok := broker.(interface{ Close() error }); ok {
		defer c.Close()
	}

	var rows []services.StoragePath
	res := r.policy(store).Do(ctx, func(ctx context.Context, attempt int) error {
		var err error
		rows, err = broker.StepToolStoragePaths(ctx)
		recordAttempt("broker", err)
		return err
	}, func(attempt int, err error) {
		r.logger.Warn().
			Err(err).
			Str("connection", conn).
			Int("attempt", attempt).
			Msg("broker service query failed")
	})
	if !res.OK() {
		return newFailure(ServiceUnreachable, StageBroker, res.Err,
			"broker service %s unreachable after %d attempts", conn, res.Attempts)
	}
	if len(rows) == 0 {
		return newFailure(MissingRequiredParameter, StageBroker, nil,
			"broker service %s returned no step tool storage paths", conn)
	}

	for _, row := range rows {
		store.Set(params.StepToolStoragePrefix+row.Tool, row.Path)
	}
	r.logger.Debug().Int("step_tools", len(rows)).Msg("loaded step tool storage paths")
	return nil
}

func recordAttempt(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.ServiceCallAttempts.WithLabelValues(service, outcome).Inc()
}

func paramMap(rows []services.Param) map[string]string {
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return values
}

func lookup(values map[string]string, name string) string {
	for k, v := range values {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
