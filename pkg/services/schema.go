package services

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS manager_params (
		mgr_name TEXT NOT NULL COLLATE NOCASE,
		param_name TEXT NOT NULL COLLATE NOCASE,
		param_value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (mgr_name, param_name)
	)`,
	`CREATE TABLE IF NOT EXISTS log_entries (
		entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
		posted_by TEXT NOT NULL,
		posting_time TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		type TEXT NOT NULL,
		message TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS step_tools (
		step_tool TEXT PRIMARY KEY COLLATE NOCASE,
		param_file_storage_path TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS manager_cleanup_reports (
		report_id INTEGER PRIMARY KEY AUTOINCREMENT,
		mgr_name TEXT NOT NULL,
		state INTEGER NOT NULL,
		failure_msg TEXT NOT NULL DEFAULT '',
		reported_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}
