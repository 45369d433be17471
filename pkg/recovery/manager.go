package recovery

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridworks/anmgr/pkg/log"
	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/services"
)

// CleanupState is the lifecycle code reported to the tracking service
type CleanupState int

const (
	StateStart   CleanupState = 1
	StateSuccess CleanupState = 2
	StateFail    CleanupState = 3
)

func (s CleanupState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateSuccess:
		return "success"
	case StateFail:
		return "fail"
	default:
		return "unknown"
	}
}

const (
	// DefaultHoldoff is the pause between delete attempts when
	// ManagerErrorCleanupHoldoffSeconds is not set
	DefaultHoldoff = 3 * time.Second

	MinHoldoff       = 100 * time.Millisecond
	MaxHoldoff       = 300 * time.Second
	DeveloperHoldoff = time.Second
)

// Tracker receives cleanup lifecycle reports
type Tracker interface {
	ReportCleanup(ctx context.Context, manager string, state int, message string) error
}

// Options configures a Manager
type Options struct {
	// ManagerDir holds the sentinel files; the ManagerDirectory parameter
	// or the current directory when empty
	ManagerDir string

	// NewTracker builds a tracking client from the DefaultDMSConnString value
	NewTracker func(conn string) (Tracker, error)

	FS       FileSystem
	Hostname func() (string, error)
	Now      func() time.Time
	Sleep    func(time.Duration)
	Logger   *zerolog.Logger
}

// Manager detects an abnormal prior exit through sentinel files and wipes
// the work directory when asked to
type Manager struct {
	store  *params.Store
	opts   Options
	logger zerolog.Logger

	lastFailures int
}

// NewManager creates a recovery manager over the resolved parameter store
func NewManager(store *params.Store, opts Options) *Manager {
	if opts.ManagerDir == "" {
		opts.ManagerDir = store.GetString(params.ManagerDir, ".")
	}
	if opts.NewTracker == nil {
		opts.NewTracker = func(conn string) (Tracker, error) {
			return services.NewTrackingClient(conn)
		}
	}
	if opts.FS == nil {
		opts.FS = osFS{}
	}
	if opts.Hostname == nil {
		opts.Hostname = os.Hostname
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	logger := log.WithComponent("recovery")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = log.WithManager(logger, store.GetString(params.ManagerName, ""))

	return &Manager{store: store, opts: opts, logger: logger}
}

// ManagerDir returns the directory holding the sentinel files
func (m *Manager) ManagerDir() string {
	return m.opts.ManagerDir
}

// WorkDir returns the directory wiped by RunAutoCleanup
func (m *Manager) WorkDir() string {
	return strings.TrimSpace(m.store.GetString(params.WorkDir, ""))
}

// LastCleanupFailures returns the failure count of the most recent cleanup
func (m *Manager) LastCleanupFailures() int {
	return m.lastFailures
}

// Holdoff returns the pause between delete attempts. The configured value
// is clamped to [MinHoldoff, MaxHoldoff] and capped at DeveloperHoldoff on a
// host listed in DeveloperHosts.
func (m *Manager) Holdoff() time.Duration {
	seconds := m.store.GetFloat(params.CleanupHoldoff, DefaultHoldoff.Seconds())
	holdoff := time.Duration(seconds * float64(time.Second))
	if holdoff < MinHoldoff {
		holdoff = MinHoldoff
	}
	if holdoff > MaxHoldoff {
		holdoff = MaxHoldoff
	}
	if holdoff > DeveloperHoldoff && m.isDeveloperHost() {
		holdoff = DeveloperHoldoff
	}
	return holdoff
}

func (m *Manager) isDeveloperHost() bool {
	host, err := m.opts.Hostname()
	if err != nil || host == "" {
		return false
	}
	for _, h := range strings.Split(m.store.GetString(params.DeveloperHosts, ""), ",") {
		if strings.EqualFold(strings.TrimSpace(h), host) {
			return true
		}
	}
	return false
}

// report sends a cleanup state to the tracking service. Any error is logged.
func (m *Manager) report(ctx context.Context, state CleanupState, message string) {
	profile := services.ProfileFromParams(m.store)
	if !profile.HasTracking() {
		event := m.logger.Error()
		if m.store.GetBool(params.OfflineMode, false) {
			event = m.logger.Debug()
		}
		event.Str("state", state.String()).
			Msgf("%s is not defined; skipping cleanup report", params.TrackingConnection)
		return
	}

	conn := profile.Tracking
	tracker, err := m.opts.NewTracker(conn)
	if err != nil {
		m.logger.Error().Err(err).Str("connection", conn).Msg("Failed to connect to tracking service")
		return
	}
	if c, ok := tracker.(io.Closer); ok {
		defer c.Close()
	}

	name := m.store.GetString(params.ManagerName, "")
	if err := tracker.ReportCleanup(ctx, name, int(state), message); err != nil {
		m.logger.Error().Err(err).
			Str("connection", conn).
			Str("state", state.String()).
			Msg("Failed to report cleanup state")
		return
	}
	m.logger.Debug().Str("state", state.String()).Msg("cleanup state reported")
}
