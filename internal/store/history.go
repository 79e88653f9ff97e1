package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the stage a dashboard run has reached
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusValidating RunStatus = "validating"
	StatusAnalyzing  RunStatus = "analyzing"
	StatusGenerating RunStatus = "generating"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Run is one recorded dashboard generation
type Run struct {
	ID             string    `json:"id"`
	Dataset        string    `json:"dataset"`
	Source         string    `json:"source"`
	OutputFormat   string    `json:"output_format"`
	Status         RunStatus `json:"status"`
	FilePath       string    `json:"file_path"`
	GenerationTime float64   `json:"generation_time"`
	Warnings       []string  `json:"warnings"`
	ErrorMessage   string    `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HistoryStore records dashboard runs in a SQLite database
type HistoryStore struct {
	Path   string
	DB     *sql.DB
	Logger *logrus.Logger
}

// OpenHistoryStore opens (creating if needed) the history database at path
func OpenHistoryStore(path string, logger *logrus.Logger) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}

	hs := &HistoryStore{Path: path, DB: db, Logger: logger}
	if err := hs.init(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debugf("Opened history database %s", path)
	return hs, nil
}

func (hs *HistoryStore) init() error {
	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		dataset TEXT,
		source TEXT,
		output_format TEXT,
		status TEXT,
		file_path TEXT,
		generation_time REAL,
		warnings TEXT,
		error_message TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	if _, err := hs.DB.Exec(runTable); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	if _, err := hs.DB.Exec(errorTable); err != nil {
		return fmt.Errorf("failed to create run_errors table: %w", err)
	}
	return nil
}

// Close closes the database
func (hs *HistoryStore) Close() {
	if hs.DB != nil {
		if err := hs.DB.Close(); err != nil {
			hs.Logger.Errorf("Error closing history database: %v", err)
		}
	}
}

// SaveRun stores a new run in the pending state
func (hs *HistoryStore) SaveRun(id, dataset, source string, format models.OutputFormat) error {
	now := time.Now().UTC()
	_, err := hs.DB.Exec(`INSERT INTO runs (id, dataset, source, output_format, status, file_path, generation_time, warnings, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '', 0, '[]', '', ?, ?)`,
		id, dataset, source, string(format), string(StatusPending), now, now)
	return err
}

// UpdateRunStatus moves a run to another stage
func (hs *HistoryStore) UpdateRunStatus(id string, status RunStatus) error {
	now := time.Now().UTC()
	res, err := hs.DB.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// CompleteRun stores the outcome of a generation and marks the run completed or failed
func (hs *HistoryStore) CompleteRun(id string, result models.GenerationResult) error {
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return err
	}

	status := StatusCompleted
	if !result.Success {
		status = StatusFailed
	}

	now := time.Now().UTC()
	res, err := hs.DB.Exec(`UPDATE runs SET status = ?, file_path = ?, generation_time = ?, warnings = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), result.FilePath, result.GenerationTime, string(warningsJSON), result.Message(), now, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// FailRun marks a run failed and records the error
func (hs *HistoryStore) FailRun(id string, runErr error) error {
	if runErr == nil {
		return nil
	}
	now := time.Now().UTC()
	if _, err := hs.DB.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		id, runErr.Error(), now); err != nil {
		return err
	}
	_, err := hs.DB.Exec(`UPDATE runs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(StatusFailed), runErr.Error(), now, id)
	return err
}

// RunErrors returns the errors recorded for a run, oldest first
func (hs *HistoryStore) RunErrors(id string) ([]string, error) {
	rows, err := hs.DB.Query(`SELECT error_message FROM run_errors WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ListRuns returns the most recent runs first; limit <= 0 returns all of them
func (hs *HistoryStore) ListRuns(limit int) ([]Run, error) {
	query := `SELECT id, dataset, source, output_format, status, file_path, generation_time, warnings, error_message, created_at, updated_at
		FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := hs.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run
func (hs *HistoryStore) GetRun(id string) (*Run, error) {
	row := hs.DB.QueryRow(`SELECT id, dataset, source, output_format, status, file_path, generation_time, warnings, error_message, created_at, updated_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var status, warningsJSON string
	if err := s.Scan(&run.ID, &run.Dataset, &run.Source, &run.OutputFormat, &status, &run.FilePath,
		&run.GenerationTime, &warningsJSON, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if err := json.Unmarshal([]byte(warningsJSON), &run.Warnings); err != nil {
		return nil, fmt.Errorf("corrupt warnings for run %s: %w", run.ID, err)
	}
	return &run, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
