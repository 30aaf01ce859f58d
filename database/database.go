package database

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"imagediff/report"
	"imagediff/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a history database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create table if it doesn't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS comparisons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		image_a TEXT NOT NULL,
		image_b TEXT NOT NULL,
		algorithm TEXT,
		score REAL,
		passed INTEGER,
		differing_pixels INTEGER,
		total_pixels INTEGER,
		diff_image_path TEXT,
		error_kind TEXT,
		error_message TEXT,
		created_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_images ON comparisons(image_a, image_b);
	CREATE INDEX IF NOT EXISTS idx_created_at ON comparisons(created_at);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// OpenDatabase opens an existing history database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// StoreEntry records one comparison outcome (success or failure) in the
// history database
func StoreEntry(db *sql.DB, e report.Entry) error {
	now := time.Now().Format(time.RFC3339)

	stmt, err := db.Prepare(`
		INSERT INTO comparisons (
			name, image_a, image_b, algorithm, score, passed,
			differing_pixels, total_pixels, diff_image_path,
			error_kind, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s vs %s: %v", e.ImageA, e.ImageB, err)
	}
	defer stmt.Close()

	if e.Err != nil {
		_, err = stmt.Exec(
			e.Name, e.ImageA, e.ImageB,
			nil, nil, nil, nil, nil, nil,
			types.ErrorKind(e.Err), e.Err.Error(), now,
		)
	} else {
		r := e.Result
		_, err = stmt.Exec(
			e.Name, e.ImageA, e.ImageB,
			r.Algorithm.String(), storableScore(r.Score), r.Passed,
			r.DifferingPixels, r.TotalPixels, r.DiffImagePath,
			nil, nil, now,
		)
	}

	if err != nil {
		return fmt.Errorf("cannot insert history for %s vs %s: %v", e.ImageA, e.ImageB, err)
	}

	return nil
}

// storableScore clamps non-finite scores the same way the JSON reporter
// does, since SQLite text round-trips of IEEE infinities are unreliable
func storableScore(score float64) float64 {
	if math.IsInf(score, 1) {
		return math.MaxFloat64
	}
	if math.IsInf(score, -1) {
		return -math.MaxFloat64
	}
	return score
}

// HistoryEntry is one recorded comparison run
type HistoryEntry struct {
	Name          string
	ImageA        string
	ImageB        string
	Algorithm     string
	Score         float64
	Passed        bool
	ErrorKind     string
	ErrorMessage  string
	DiffImagePath string
	CreatedAt     string
}

// RecentRuns returns the most recent comparison runs, newest first
func RecentRuns(db *sql.DB, limit int) ([]HistoryEntry, error) {
	rows, err := db.Query(`
		SELECT name, image_a, image_b,
		       COALESCE(algorithm, ''), COALESCE(score, 0), COALESCE(passed, 0),
		       COALESCE(error_kind, ''), COALESCE(error_message, ''),
		       COALESCE(diff_image_path, ''), created_at
		FROM comparisons ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history query error: %v", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		err := rows.Scan(&e.Name, &e.ImageA, &e.ImageB,
			&e.Algorithm, &e.Score, &e.Passed,
			&e.ErrorKind, &e.ErrorMessage, &e.DiffImagePath, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning history row: %v", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RunStats contains aggregate statistics over the recorded history
type RunStats struct {
	TotalRuns int
	Passed    int
	Failed    int
	Errored   int
}

// GetRunStats retrieves aggregate statistics about recorded comparisons
func GetRunStats(db *sql.DB) (*RunStats, error) {
	var stats RunStats

	err := db.QueryRow("SELECT COUNT(*) FROM comparisons").Scan(&stats.TotalRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %v", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM comparisons WHERE passed = 1").Scan(&stats.Passed)
	if err != nil {
		return nil, fmt.Errorf("failed to count passed runs: %v", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM comparisons WHERE error_kind != '' AND error_kind IS NOT NULL").Scan(&stats.Errored)
	if err != nil {
		return nil, fmt.Errorf("failed to count errored runs: %v", err)
	}

	stats.Failed = stats.TotalRuns - stats.Passed - stats.Errored

	return &stats, nil
}
