package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists evaluation runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so readers are not blocked while the watcher writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluation_runs (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			row_count INTEGER,
			failed    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON evaluation_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS decisions (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL REFERENCES evaluation_runs(id),
			row_no   INTEGER NOT NULL,
			ident    TEXT,
			rsi      REAL,
			macd     REAL,
			adx      REAL,
			centroid REAL,
			score    REAL,
			label    TEXT,
			error    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run and all of its rows in one transaction.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := run.At
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO evaluation_runs (id, timestamp, source, row_count, failed)
		VALUES (?,?,?,?,?)`,
		run.ID, at.Unix(), run.Source, len(run.Results), run.Failed(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO decisions
		(run_id, row_no, ident, rsi, macd, adx, centroid, score, label, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range run.Results {
		ind := res.Row.Indicators
		var centroid, score sql.NullFloat64
		var label, errText sql.NullString
		if res.OK() {
			centroid = sql.NullFloat64{Float64: res.Decision.Centroid, Valid: true}
			score = sql.NullFloat64{Float64: res.Decision.Score, Valid: true}
			label = sql.NullString{String: string(res.Decision.Label), Valid: true}
		} else if res.Err != nil {
			errText = sql.NullString{String: res.Err.Error(), Valid: true}
		}
		if _, err := stmt.Exec(run.ID, res.Row.Line, res.Row.ID,
			ind.RSI, ind.MACD, ind.ADX,
			centroid, score, label, errText,
		); err != nil {
			return fmt.Errorf("insert decision row %d: %w", res.Row.Line, err)
		}
	}
	return tx.Commit()
}

// Runs returns the latest recorded runs, newest first.
func (r *SQLiteRecorder) Runs(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, source, row_count, failed
		FROM evaluation_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&s.ID, &ts, &s.Source, &s.Rows, &s.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.At = time.Unix(ts, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Scores returns the recorded scores of a run by row number; failed rows are omitted.
func (r *SQLiteRecorder) Scores(runID string) (map[int]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT row_no, score FROM decisions
		WHERE run_id = ? AND score IS NOT NULL`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := make(map[int]float64)
	for rows.Next() {
		var n int
		var s float64
		if err := rows.Scan(&n, &s); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out[n] = s
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
