// Package history keeps a queryable log of every application attempt
// in SQLite. The registry answers "have we handled this job"; history
// answers "what happened, and when".
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Attempt is one logged application attempt.
type Attempt struct {
	ID        int64  `json:"id"`
	JobKey    string `json:"job_key"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Company   string `json:"company,omitempty"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

var (
	historyDB   *sql.DB
	historyOnce sync.Once
	historyErr  error
	historyPath string
)

// SetPath overrides the database location. Must be called before the
// first Record/Recent; the default is ~/.indeed-bot/history.db.
func SetPath(path string) {
	historyPath = path
}

func openDB() (*sql.DB, error) {
	historyOnce.Do(func() {
		path := historyPath
		if path == "" {
			path = filepath.Join(os.Getenv("HOME"), ".indeed-bot", "history.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			historyErr = fmt.Errorf("history: mkdir %s: %w", filepath.Dir(path), err)
			return
		}
		db, err := sql.Open("sqlite", path)
		if err != nil {
			historyErr = fmt.Errorf("history: open db: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
		if err := initSchema(db); err != nil {
			historyErr = fmt.Errorf("history: init schema: %w", err)
			return
		}
		historyDB = db
	})
	return historyDB, historyErr
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS attempts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		job_key    TEXT NOT NULL,
		url        TEXT NOT NULL,
		title      TEXT,
		company    TEXT,
		status     TEXT NOT NULL,
		reason     TEXT,
		created_at TEXT NOT NULL
	)`)
	return err
}

// Record logs one attempt. Logging is auxiliary to the run, so callers
// treat an error here as non-fatal.
func Record(_ context.Context, a Attempt) (int64, error) {
	if a.JobKey == "" && a.URL == "" {
		return 0, fmt.Errorf("history: attempt needs a job key or url")
	}
	if a.Status == "" {
		return 0, fmt.Errorf("history: attempt needs a status")
	}

	db, err := openDB()
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Exec(
		`INSERT INTO attempts (job_key, url, title, company, status, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.JobKey, a.URL, a.Title, a.Company, a.Status, a.Reason, now,
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// Recent returns the most recent attempts, optionally filtered by
// status, newest first.
func Recent(_ context.Context, status string, limit int) ([]Attempt, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var rows *sql.Rows
	if status != "" {
		rows, err = db.Query(
			`SELECT id, job_key, url, title, company, status, reason, created_at
			 FROM attempts WHERE status = ? ORDER BY id DESC LIMIT ?`, status, limit)
	} else {
		rows, err = db.Query(
			`SELECT id, job_key, url, title, company, status, reason, created_at
			 FROM attempts ORDER BY id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		var a Attempt
		var title, company, reason sql.NullString
		if err := rows.Scan(&a.ID, &a.JobKey, &a.URL, &title, &company, &a.Status, &reason, &a.CreatedAt); err != nil {
			continue
		}
		a.Title = title.String
		a.Company = company.String
		a.Reason = reason.String
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// CountByStatus tallies logged attempts per status.
func CountByStatus(_ context.Context) (map[string]int, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT status, COUNT(*) FROM attempts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history: count: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			continue
		}
		counts[status] = n
	}
	return counts, nil
}
