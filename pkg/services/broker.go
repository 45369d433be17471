package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StoragePath is a (step tool, parameter file storage path) row
type StoragePath struct {
	Tool string
	Path string
}

// BrokerClient queries per-tool storage paths
type BrokerClient struct {
	conn    string
	db      *sql.DB
	timeout time.Duration
}

// NewBrokerClient creates a broker service client for a connection string
func NewBrokerClient(conn string) (*BrokerClient, error) {
	db, err := Open(conn)
	if err != nil {
		return nil, err
	}
	return &BrokerClient{conn: conn, db: db, timeout: DefaultQueryTimeout}, nil
}

// ConnectionString returns the connection string the client was built from
func (c *BrokerClient) ConnectionString() string {
	return c.conn
}

// DB exposes the underlying handle
func (c *BrokerClient) DB() *sql.DB {
	return c.db
}

// StepToolStoragePaths returns every step tool with a non-empty storage path
func (c *BrokerClient) StepToolStoragePaths(ctx context.Context) ([]StoragePath, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx,
		`SELECT step_tool, param_file_storage_path FROM step_tools
		 WHERE param_file_storage_path IS NOT NULL AND TRIM(param_file_storage_path) <> ''
		 ORDER BY step_tool`)
	if err != nil {
		return nil, fmt.Errorf("failed to query step tool storage paths: %w", err)
	}
	defer rows.Close()

	var paths []StoragePath
	for rows.Next() {
		var sp StoragePath
		if err := rows.Scan(&sp.Tool, &sp.Path); err != nil {
			return nil, fmt.Errorf("failed to scan step tool row: %w", err)
		}
		paths = append(paths, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read step tool rows: %w", err)
	}
	return paths, nil
}

// SetStepToolStoragePath inserts or replaces a step tool row
func (c *BrokerClient) SetStepToolStoragePath(ctx context.Context, tool, path string) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO step_tools (step_tool, param_file_storage_path) VALUES (?, ?)
		 ON CONFLICT (step_tool) DO UPDATE SET param_file_storage_path = excluded.param_file_storage_path`,
		tool, path)
	if err != nil {
		return fmt.Errorf("failed to set storage path for %s: %w", tool, err)
	}
	return nil
}

// Close closes the database handle
func (c *BrokerClient) Close() error {
	return c.db.Close()
}
