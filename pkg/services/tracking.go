package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CleanupReport is a row recorded by the tracking service
type CleanupReport struct {
	Manager    string
	State      int
	Message    string
	ReportedAt string
}

// TrackingClient records cleanup lifecycle events
type TrackingClient struct {
	conn    string
	db      *sql.DB
	timeout time.Duration
}

// NewTrackingClient creates a tracking service client for a connection string
func NewTrackingClient(conn string) (*TrackingClient, error) {
	db, err := Open(conn)
	if err != nil {
		return nil, err
	}
	return &TrackingClient{conn: conn, db: db, timeout: DefaultQueryTimeout}, nil
}

// DB exposes the underlying handle
func (c *TrackingClient) DB() *sql.DB {
	return c.db
}

// ReportCleanup records a cleanup state change for a manager
func (c *TrackingClient) ReportCleanup(ctx context.Context, manager string, state int, message string) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO manager_cleanup_reports (mgr_name, state, failure_msg) VALUES (?, ?, ?)`,
		manager, state, message)
	if err != nil {
		return fmt.Errorf("failed to report cleanup state %d for %s: %w", state, manager, err)
	}
	return nil
}

// CleanupReports returns the reports recorded for a manager, oldest first
func (c *TrackingClient) CleanupReports(ctx context.Context, manager string) ([]CleanupReport, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx,
		`SELECT mgr_name, state, failure_msg, reported_at FROM manager_cleanup_reports
		 WHERE mgr_name = ? ORDER BY report_id`, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to query cleanup reports: %w", err)
	}
	defer rows.Close()

	var reports []CleanupReport
	for rows.Next() {
		var r CleanupReport
		if err := rows.Scan(&r.Manager, &r.State, &r.Message, &r.ReportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cleanup report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Close closes the database handle
func (c *TrackingClient) Close() error {
	return c.db.Close()
}
