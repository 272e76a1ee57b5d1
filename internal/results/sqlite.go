package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clinicaldss/trialscreen/internal/screening"
)

const defaultPath = "data/screening.db"

// Store mirrors the results sink into SQLite for the dashboard collaborator.
type Store struct {
	path string
	db   *sql.DB
}

// OpenStore creates (if needed) and opens the SQLite database.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS screening_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_id TEXT NOT NULL,
	trial_id TEXT NOT NULL,
	decision TEXT NOT NULL,
	explanation TEXT,
	raw_response TEXT,
	screened_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_screening_results_trial ON screening_results (trial_id);
CREATE INDEX IF NOT EXISTS idx_screening_results_patient ON screening_results (patient_id);
`

// CreateTables ensures the results table exists.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropTables removes the results table.
func (s *Store) DropTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS screening_results;`)
	return err
}

// ClearTables truncates the results table.
func (s *Store) ClearTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM screening_results;`)
	return err
}

// InsertRow appends one screening result. Rows are never updated or
// deleted during a batch run.
func (s *Store) InsertRow(ctx context.Context, row Row) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO screening_results (patient_id, trial_id, decision, explanation, raw_response, screened_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		row.PatientID,
		row.TrialID,
		string(row.Decision),
		row.Explanation,
		row.RawResponse,
		row.ScreenedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Rows returns stored results, optionally filtered by trial id.
func (s *Store) Rows(ctx context.Context, trialID string) ([]Row, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialized")
	}
	query := `SELECT patient_id, trial_id, decision, explanation, raw_response, screened_at FROM screening_results`
	args := []any{}
	if trialID != "" {
		query += ` WHERE trial_id = ?`
		args = append(args, trialID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var screenedAt string
		if err := rows.Scan(&r.PatientID, &r.TrialID, (*string)(&r.Decision), &r.Explanation, &r.RawResponse, &screenedAt); err != nil {
			return nil, err
		}
		parsedAt, err := time.Parse(time.RFC3339Nano, screenedAt)
		if err != nil {
			return nil, fmt.Errorf("parse screened_at %q: %w", screenedAt, err)
		}
		r.ScreenedAt = parsedAt
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountByDecision returns the decision distribution across all stored rows.
func (s *Store) CountByDecision(ctx context.Context) (map[screening.Decision]int, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialized")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT decision, COUNT(*) FROM screening_results GROUP BY decision`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[screening.Decision]int)
	for rows.Next() {
		var decision string
		var n int
		if err := rows.Scan(&decision, &n); err != nil {
			return nil, err
		}
		counts[screening.Decision(decision)] = n
	}
	return counts, rows.Err()
}
