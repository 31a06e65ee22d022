package database

import (
	"database/sql"
	"fmt"
	"time"

	"imagedetective/logging"
	"imagedetective/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS targets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		size INTEGER,
		width INTEGER,
		height INTEGER,
		color_mode TEXT,
		format TEXT,
		camera TEXT,
		software TEXT,
		fingerprint TEXT,
		registered_at TEXT,
		UNIQUE(path)
	);
	CREATE INDEX IF NOT EXISTS idx_targets_name ON targets(name);
	CREATE TABLE IF NOT EXISTS verdicts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		candidate TEXT NOT NULL,
		matched_target TEXT,
		is_match INTEGER NOT NULL,
		total INTEGER NOT NULL,
		max_possible INTEGER NOT NULL,
		profile TEXT,
		report TEXT,
		created_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_verdicts_run ON verdicts(run_id);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, err
	}

	// Older databases lack the fingerprint column
	var hasFingerprintColumn bool
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('targets') WHERE name='fingerprint'").Scan(&hasFingerprintColumn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking for fingerprint column: %w", err)
	}
	if !hasFingerprintColumn {
		if _, err = db.Exec("ALTER TABLE targets ADD COLUMN fingerprint TEXT;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("error adding fingerprint column: %w", err)
		}
		logging.DebugLog("Added 'fingerprint' column to existing database schema")
	}

	return db, nil
}

// OpenDatabase opens an existing database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

const insertTargetSQL = `
	INSERT OR REPLACE INTO targets (
		name, path, size, width, height, color_mode, format, camera, software, fingerprint, registered_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// preparer is implemented by *sql.DB and *sql.Tx
type preparer interface {
	Prepare(query string) (*sql.Stmt, error)
}

// StoreTarget stores or refreshes the signature of a registered target
func StoreTarget(db *sql.DB, rec types.TargetRecord) error {
	return storeTargets(db, []types.TargetRecord{rec})
}

// ReplaceTargets swaps the stored target set for records in one
// transaction. Rows of earlier registrations are removed.
func ReplaceTargets(db *sql.DB, records []types.TargetRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM targets"); err != nil {
		tx.Rollback()
		return fmt.Errorf("cannot clear stored targets: %w", err)
	}
	if err := storeTargets(tx, records); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit targets: %w", err)
	}
	logging.DebugLog("Replaced stored targets with %d records", len(records))
	return nil
}

func storeTargets(p preparer, records []types.TargetRecord) error {
	stmt, err := p.Prepare(insertTargetSQL)
	if err != nil {
		return fmt.Errorf("cannot prepare target insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Format(time.RFC3339)
	for _, rec := range records {
		sig := rec.Signature
		_, err = stmt.Exec(
			rec.ID,
			rec.Path,
			nullable(sig.ByteSize),
			nullable(sig.Width),
			nullable(sig.Height),
			colorModeColumn(sig.ColorMode),
			nullable(sig.Format),
			sig.Camera,
			sig.Software,
			sig.Fingerprint,
			now,
		)
		if err != nil {
			return fmt.Errorf("cannot insert target %s: %w", rec.Path, err)
		}
	}
	return nil
}

// ListTargets returns stored targets ordered by name
func ListTargets(db *sql.DB) ([]types.TargetRecord, error) {
	rows, err := db.Query(`
		SELECT name, path, size, width, height, color_mode, format, camera, software, fingerprint
		FROM targets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var out []types.TargetRecord
	for rows.Next() {
		var (
			rec                        types.TargetRecord
			size                       sql.NullInt64
			width, height              sql.NullInt64
			mode, format               sql.NullString
			camera, software, printStr sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Path, &size, &width, &height, &mode, &format, &camera, &software, &printStr); err != nil {
			return nil, fmt.Errorf("failed to read target row: %w", err)
		}
		if size.Valid {
			rec.Signature.ByteSize = types.Known(size.Int64)
		}
		if width.Valid {
			rec.Signature.Width = types.Known(int(width.Int64))
		}
		if height.Valid {
			rec.Signature.Height = types.Known(int(height.Int64))
		}
		if format.Valid {
			rec.Signature.Format = types.Known(format.String)
		}
		rec.Signature.ColorMode = parseColorMode(mode.String)
		rec.Signature.Camera = camera.String
		rec.Signature.Software = software.String
		rec.Signature.Fingerprint = printStr.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// VerdictRow is one stored verdict
type VerdictRow struct {
	RunID         string
	Candidate     string
	MatchedTarget string
	IsMatch       bool
	Total         int
	MaxPossible   int
	Profile       string
	Report        string
	CreatedAt     string
}

// StoreVerdict appends a verdict to the history of a run
func StoreVerdict(db *sql.DB, runID, profile string, v types.Verdict, report string) error {
	_, err := db.Exec(`
		INSERT INTO verdicts (
			run_id, candidate, matched_target, is_match, total, max_possible, profile, report, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, v.Candidate, v.MatchedTarget, v.IsMatch, v.Total, v.MaxPossible, profile, report,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cannot insert verdict for %s: %w", v.Candidate, err)
	}
	return nil
}

// ListVerdicts returns stored verdicts, newest first. An empty runID returns
// every run; limit <= 0 means no limit.
func ListVerdicts(db *sql.DB, runID string, limit int) ([]VerdictRow, error) {
	query := `SELECT run_id, candidate, matched_target, is_match, total, max_possible, profile, report, created_at FROM verdicts`
	var args []interface{}
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var out []VerdictRow
	for rows.Next() {
		var (
			row     VerdictRow
			matched sql.NullString
			profile sql.NullString
			report  sql.NullString
			created sql.NullString
		)
		if err := rows.Scan(&row.RunID, &row.Candidate, &matched, &row.IsMatch, &row.Total, &row.MaxPossible, &profile, &report, &created); err != nil {
			return nil, fmt.Errorf("failed to read verdict row: %w", err)
		}
		row.MatchedTarget = matched.String
		row.Profile = profile.String
		row.Report = report.String
		row.CreatedAt = created.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// RunStats contains aggregate statistics of stored verdicts
type RunStats struct {
	Candidates int
	Matches    int
	Rejected   int
	Runs       int
}

// GetRunStats aggregates verdicts of one run, or of all runs when runID is empty
func GetRunStats(db *sql.DB, runID string) (*RunStats, error) {
	var stats RunStats

	query := "SELECT COUNT(*), COALESCE(SUM(is_match), 0), COUNT(DISTINCT run_id) FROM verdicts"
	var args []interface{}
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}

	if err := db.QueryRow(query, args...).Scan(&stats.Candidates, &stats.Matches, &stats.Runs); err != nil {
		return nil, fmt.Errorf("failed to get run stats: %w", err)
	}
	stats.Rejected = stats.Candidates - stats.Matches
	return &stats, nil
}

func nullable[T any](v types.Optional[T]) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Value
}

func colorModeColumn(m types.ColorMode) interface{} {
	if m == types.ColorModeUnknown {
		return nil
	}
	return m.String()
}

func parseColorMode(s string) types.ColorMode {
	switch s {
	case "GRAY":
		return types.ColorModeGray
	case "COLOR":
		return types.ColorModeColor
	default:
		return types.ColorModeUnknown
	}
}
