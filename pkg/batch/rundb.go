package batch

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded batch invocation.
type Run struct {
	ID          int64
	Command     string
	StartedAt   int64
	FinishedAt  int64
	FilesOK     int
	FilesFailed int
	Records     int
	ReportPath  string
}

// RunDB persists batch run history in SQLite.
type RunDB struct {
	db *sql.DB
}

// OpenRunDB opens (or creates) the SQLite database at path and ensures the
// runs table exists.
func OpenRunDB(path string) (*RunDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open run db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		command       TEXT NOT NULL,
		started_at    INTEGER NOT NULL,
		finished_at   INTEGER NOT NULL,
		files_ok      INTEGER NOT NULL,
		files_failed  INTEGER NOT NULL,
		records       INTEGER NOT NULL,
		report_path   TEXT NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}

	return &RunDB{db: db}, nil
}

// Close closes the underlying database.
func (d *RunDB) Close() error {
	return d.db.Close()
}

// RecordReport inserts one run row summarizing a finished batch report.
func (d *RunDB) RecordReport(command string, started, finished time.Time, report *Report, reportPath string) (int64, error) {
	const q = `INSERT INTO runs
		(command, started_at, finished_at, files_ok, files_failed, records, report_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := d.db.Exec(q, command, started.Unix(), finished.Unix(),
		len(report.Files), len(report.Errors), report.TotalRecords(), reportPath)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 lists all.
func (d *RunDB) ListRuns(limit int) ([]Run, error) {
	q := `SELECT id, command, started_at, finished_at, files_ok, files_failed, records, report_path
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Command, &r.StartedAt, &r.FinishedAt,
			&r.FilesOK, &r.FilesFailed, &r.Records, &r.ReportPath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
