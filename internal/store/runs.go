package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run statuses
const (
	RunProcessing = "processing"
	RunDone       = "done"
	RunFailed     = "failed"
)

// ErrRunNotFound is returned for unknown run ids
var ErrRunNotFound = errors.New("run not found")

// Run is one processing run
type Run struct {
	ID                string     `json:"id"`
	Source            string     `json:"source"`
	Filename          string     `json:"filename"`
	OutputPath        string     `json:"outputPath"`
	SourceRows        int        `json:"sourceRows"`
	EntityRecords     int        `json:"entityRecords"`
	OutputRows        int        `json:"outputRows"`
	DuplicatesDropped int        `json:"duplicatesDropped"`
	PayloadsRepaired  int        `json:"payloadsRepaired"`
	PayloadsFailed    int        `json:"payloadsFailed"`
	Fallback          bool       `json:"fallback"`
	Status            string     `json:"status"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`
	StartedAt         time.Time  `json:"startedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

// RunStats are the counters recorded when a run completes
type RunStats struct {
	OutputPath        string
	SourceRows        int
	EntityRecords     int
	OutputRows        int
	DuplicatesDropped int
	PayloadsRepaired  int
	PayloadsFailed    int
	Fallback          bool
}

// CreateRun records the start of a run
func (s *Store) CreateRun(id, source, filename string, startedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, source, filename, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, source, filename, RunProcessing, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a run done with its counters
func (s *Store) CompleteRun(id string, stats RunStats) error {
	return s.finish(id, RunDone, "", stats)
}

// FailRun marks a run failed
func (s *Store) FailRun(id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.finish(id, RunFailed, msg, RunStats{})
}

func (s *Store) finish(id, status, errMsg string, stats RunStats) error {
	res, err := s.db.Exec(`
		UPDATE runs SET
			output_path = ?,
			source_rows = ?,
			entity_records = ?,
			output_rows = ?,
			duplicates_dropped = ?,
			payloads_repaired = ?,
			payloads_failed = ?,
			fallback = ?,
			status = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`, stats.OutputPath, stats.SourceRows, stats.EntityRecords, stats.OutputRows,
		stats.DuplicatesDropped, stats.PayloadsRepaired, stats.PayloadsFailed,
		stats.Fallback, status, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

const runColumns = `id, source, filename, output_path, source_rows, entity_records, output_rows,
	duplicates_dropped, payloads_repaired, payloads_failed, fallback, status, error_message,
	started_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var completed sql.NullTime
	err := sc.Scan(&r.ID, &r.Source, &r.Filename, &r.OutputPath, &r.SourceRows, &r.EntityRecords,
		&r.OutputRows, &r.DuplicatesDropped, &r.PayloadsRepaired, &r.PayloadsFailed, &r.Fallback,
		&r.Status, &r.ErrorMessage, &r.StartedAt, &completed)
	if err != nil {
		return nil, err
	}
	if completed.Valid {
		t := completed.Time
		r.CompletedAt = &t
	}
	return &r, nil
}

// GetRun loads a run by id
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
