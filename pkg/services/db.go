package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gridworks/anmgr/pkg/params"
)

const (
	driverName = "sqlite"

	// DefaultQueryTimeout bounds a single query attempt
	DefaultQueryTimeout = 30 * time.Second
)

// ErrNotConfigured is returned by clients built from a blank connection string
var ErrNotConfigured = errors.New("connection string not configured")

// ConnectionProfile holds the connection strings of the central services.
// A blank entry disables the matching functionality.
type ConnectionProfile struct {
	Control  string
	Broker   string
	Tracking string
}

// ProfileFromParams reads the three connection strings from the parameter
// store, trimmed
func ProfileFromParams(store *params.Store) ConnectionProfile {
	return ConnectionProfile{
		Control:  strings.TrimSpace(store.GetString(params.ControlConnection, "")),
		Broker:   strings.TrimSpace(store.GetString(params.BrokerConnection, "")),
		Tracking: strings.TrimSpace(store.GetString(params.TrackingConnection, "")),
	}
}

// HasControl reports whether the control service is configured
func (p ConnectionProfile) HasControl() bool { return strings.TrimSpace(p.Control) != "" }

// HasBroker reports whether the broker service is configured
func (p ConnectionProfile) HasBroker() bool { return strings.TrimSpace(p.Broker) != "" }

// HasTracking reports whether the tracking service is configured
func (p ConnectionProfile) HasTracking() bool { return strings.TrimSpace(p.Tracking) != "" }

// DataSource converts a connection string to a sqlite data source name.
// Accepted forms: "sqlite://<path>", "file:<path>?...", ":memory:" or a plain path.
func DataSource(conn string) string {
	conn = strings.TrimSpace(conn)
	if rest, ok := strings.CutPrefix(conn, "sqlite://"); ok {
		return rest
	}
	return conn
}

// Open opens a database handle for a connection string. The connection is
// established lazily by the first query.
func Open(conn string) (*sql.DB, error) {
	if strings.TrimSpace(conn) == "" {
		return nil, ErrNotConfigured
	}

	db, err := sql.Open(driverName, DataSource(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", conn, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Bootstrap creates the control, broker and tracking tables when they do not exist
func Bootstrap(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply schema statement %q: %w", abbreviate(stmt), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func abbreviate(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > 60 {
		return stmt[:60] + "..."
	}
	return stmt
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}
