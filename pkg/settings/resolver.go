package settings

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridworks/anmgr/pkg/log"
	"github.com/gridworks/anmgr/pkg/metrics"
	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/services"
)

const (
	// DefaultServiceHoldoff is the pause between service query attempts
	DefaultServiceHoldoff = 5 * time.Second

	computerNameToken = "$ComputerName$"
)

// ControlService provides manager and settings-group parameters and accepts
// error reports
type ControlService interface {
	ManagerParams(ctx context.Context, name string) ([]services.Param, error)
	PostLogEntry(ctx context.Context, postedBy, kind, message string) error
}

// BrokerService provides per-tool storage paths
type BrokerService interface {
	StepToolStoragePaths(ctx context.Context) ([]services.StoragePath, error)
}

// Options configures a Resolver
type Options struct {
	// ManagerDir is the manager's own directory, used for relative paths
	ManagerDir string

	// ServiceHoldoff is the pause between service attempts, overridden by
	// the ServiceRetryHoldoffSeconds parameter
	ServiceHoldoff time.Duration

	// NewControl builds a control service client from a connection string
	NewControl func(conn string) (ControlService, error)

	// NewBroker builds a broker service client from a connection string
	NewBroker func(conn string) (BrokerService, error)

	Hostname func() (string, error)
	Now      func() time.Time
	Sleep    func(time.Duration)
	Logger   *zerolog.Logger
}

// Resolver builds the manager's parameter store from local and central sources
type Resolver struct {
	opts   Options
	logger zerolog.Logger
}

// NewResolver creates a resolver, filling unset options with defaults
func NewResolver(opts Options) *Resolver {
	if opts.ManagerDir == "" {
		opts.ManagerDir = "."
	}
	if opts.ServiceHoldoff == 0 {
		opts.ServiceHoldoff = DefaultServiceHoldoff
	}
	if opts.NewControl == nil {
		opts.NewControl = func(conn string) (ControlService, error) {
			return services.NewControlClient(conn)
		}
	}
	if opts.NewBroker == nil {
		opts.NewBroker = func(conn string) (BrokerService, error) {
			return services.NewBrokerClient(conn)
		}
	}
	if opts.Hostname == nil {
		opts.Hostname = os.Hostname
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := log.WithComponent("settings")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Resolver{opts: opts, logger: logger}
}

// Resolve merges local parameters with the offline settings document or the
// central services. The returned store holds everything merged so far, even
// when a failure is returned.
func (r *Resolver) Resolve(ctx context.Context, local map[string]string) (*params.Store, *Failure) {
	store := params.FromMap(local)

	mode := "online"
	if store.GetBool(params.OfflineMode, false) {
		mode = "offline"
	}
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.SettingsResolveDuration, mode)

	failure := r.resolve(ctx, store, mode == "offline")
	if failure != nil {
		metrics.SettingsResolveFailures.WithLabelValues(string(failure.Kind)).Inc()
		event := r.logger.Error()
		if !failure.Fatal() {
			event = r.logger.Warn()
		}
		event.Str("kind", string(failure.Kind)).
			Str("stage", string(failure.Stage)).
			Err(failure.Err).
			Msg(failure.Message)
		return store, failure
	}

	r.logger.Info().
		Str("manager", store.GetString(params.ManagerName, "")).
		Str("mode", mode).
		Int("parameters", store.Len()).
		Msg("manager settings resolved")
	return store, nil
}

func (r *Resolver) resolve(ctx context.Context, store *params.Store, offline bool) *Failure {
	if store.GetBool(params.UsingDefaults, false) {
		return newFailure(MissingRequiredParameter, StageLocal, nil,
			"local configuration is an unconfigured template (%s=true); edit it before starting the manager", params.UsingDefaults)
	}

	name := strings.TrimSpace(store.GetString(params.ManagerName, ""))
	if name == "" {
		return newFailure(MissingRequiredParameter, StageLocal, nil, "parameter %s is not defined", params.ManagerName)
	}
	name, err := ExpandManagerName(name, r.opts.Hostname)
	if err != nil {
		return newFailure(MissingRequiredParameter, StageLocal, err, "cannot expand %s in %s", computerNameToken, params.ManagerName)
	}
	store.Set(params.ManagerName, name)

	if offline {
		return r.resolveOffline(store)
	}
	return r.resolveOnline(ctx, store)
}

// ExpandManagerName replaces $ComputerName$ in a manager name with the host
// name. hostname is only called when the token is present.
func ExpandManagerName(name string, hostname func() (string, error)) (string, error) {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, computerNameToken) {
		return name, nil
	}
	host, err := hostname()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(name, computerNameToken, host), nil
}
