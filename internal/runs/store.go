// Package runs records explanation run history for later inspection.
package runs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iexplain/iexplain/internal/db"
)

// Run is one recorded explanation run.
type Run struct {
	ID              string
	StartedAt       time.Time
	IntentID        string
	Mode            string
	Workflow        string
	Provider        string
	Model           string
	Outcome         string
	OutputPath      string
	DurationSeconds float64
	Rounds          int
	InputTokens     int
	OutputTokens    int
	EstimatedCost   float64
	Warnings        []string
}

// Store persists runs in the history database.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Record inserts a run, assigning it a fresh id when empty, and returns the
// id.
func (s *Store) Record(r *Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	warnings, err := json.Marshal(r.Warnings)
	if err != nil {
		return "", fmt.Errorf("encoding warnings: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (
			id, started_at, intent_id, mode, workflow, provider, model,
			outcome, output_path, duration_seconds, rounds,
			input_tokens, output_tokens, estimated_cost, warnings
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.Format(time.RFC3339), r.IntentID, r.Mode, r.Workflow,
		r.Provider, r.Model, r.Outcome, r.OutputPath, r.DurationSeconds,
		r.Rounds, r.InputTokens, r.OutputTokens, r.EstimatedCost, string(warnings),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return r.ID, nil
}

// List returns the most recent runs, newest first. A zero or negative limit
// means no limit.
func (s *Store) List(limit int) ([]*Run, error) {
	query := `
		SELECT id, started_at, intent_id, mode, workflow, provider, model,
		       outcome, output_path, duration_seconds, rounds,
		       input_tokens, output_tokens, estimated_cost, warnings
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// ForIntent returns all runs for one intent, newest first.
func (s *Store) ForIntent(intentID string) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, intent_id, mode, workflow, provider, model,
		       outcome, output_path, duration_seconds, rounds,
		       input_tokens, output_tokens, estimated_cost, warnings
		FROM runs WHERE intent_id = ? ORDER BY started_at DESC, id DESC`,
		intentID)
	if err != nil {
		return nil, fmt.Errorf("listing runs for %s: %w", intentID, err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// Get returns a single run by id.
func (s *Store) Get(id string) (*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, intent_id, mode, workflow, provider, model,
		       outcome, output_path, duration_seconds, rounds,
		       input_tokens, output_tokens, estimated_cost, warnings
		FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return runs[0], nil
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var out []*Run
	for rows.Next() {
		var r Run
		var started, warnings string
		err := rows.Scan(
			&r.ID, &started, &r.IntentID, &r.Mode, &r.Workflow, &r.Provider,
			&r.Model, &r.Outcome, &r.OutputPath, &r.DurationSeconds, &r.Rounds,
			&r.InputTokens, &r.OutputTokens, &r.EstimatedCost, &warnings,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		if err := json.Unmarshal([]byte(warnings), &r.Warnings); err != nil {
			r.Warnings = nil
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
