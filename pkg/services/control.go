package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Param is a single (name, value) row returned by the control service
type Param struct {
	Name  string
	Value string
}

// ControlClient queries manager and settings-group parameters
type ControlClient struct {
	conn    string
	db      *sql.DB
	timeout time.Duration
}

// NewControlClient creates a control service client for a connection string
func NewControlClient(conn string) (*ControlClient, error) {
	db, err := Open(conn)
	if err != nil {
		return nil, err
	}
	return &ControlClient{conn: conn, db: db, timeout: DefaultQueryTimeout}, nil
}

// ConnectionString returns the connection string the client was built from
func (c *ControlClient) ConnectionString() string {
	return c.conn
}

// DB exposes the underlying handle
func (c *ControlClient) DB() *sql.DB {
	return c.db
}

// ManagerParams returns the parameters defined for a manager or settings group
func (c *ControlClient) ManagerParams(ctx context.Context, name string) ([]Param, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx,
		`SELECT param_name, param_value FROM manager_params WHERE mgr_name = ? ORDER BY param_name`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters for %s: %w", name, err)
	}
	defer rows.Close()

	var params []Param
	for rows.Next() {
		var p Param
		var value sql.NullString
		if err := rows.Scan(&p.Name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan parameter row: %w", err)
		}
		p.Value = value.String
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameters for %s: %w", name, err)
	}
	return params, nil
}

// SetManagerParam inserts or replaces a parameter row
func (c *ControlClient) SetManagerParam(ctx context.Context, name, param, value string) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO manager_params (mgr_name, param_name, param_value) VALUES (?, ?, ?)
		 ON CONFLICT (mgr_name, param_name) DO UPDATE SET param_value = excluded.param_value`,
		name, param, value)
	if err != nil {
		return fmt.Errorf("failed to set %s for %s: %w", param, name, err)
	}
	return nil
}

// PostLogEntry writes a message to the control service's error channel
func (c *ControlClient) PostLogEntry(ctx context.Context, postedBy, kind, message string) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO log_entries (posted_by, type, message) VALUES (?, ?, ?)`,
		postedBy, kind, message)
	if err != nil {
		return fmt.Errorf("failed to post log entry: %w", err)
	}
	return nil
}

// Close closes the database handle
func (c *ControlClient) Close() error {
	return c.db.Close()
}
