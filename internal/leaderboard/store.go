// Package leaderboard persists per-run model summaries in SQLite so runs
// accumulate into a queryable history.
package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultLimit = 50

type Store struct {
	db *sql.DB
}

// Entry is one model's aggregate result for one run on one dataset.
type Entry struct {
	ID           int64
	RunID        string
	Model        string
	ModelID      string
	Dataset      string
	ExactMatch   float64
	F1           float64
	AvgLatencyMS float64
	AvgCalls     float64
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
	Errors       int64
	EvalDate     time.Time
}

func NewStore(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("leaderboard: empty db path")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("leaderboard: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("leaderboard: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("leaderboard: nil db")
	}

	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS benchmark_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			model TEXT NOT NULL,
			model_id TEXT NOT NULL,
			dataset TEXT NOT NULL,
			exact_match REAL NOT NULL,
			f1 REAL NOT NULL,
			avg_latency_ms REAL NOT NULL,
			avg_calls REAL NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			cost_usd REAL NOT NULL,
			errors INTEGER NOT NULL,
			eval_date INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_dataset ON benchmark_entries(dataset)`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_model_dataset ON benchmark_entries(model, dataset)`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_eval_date ON benchmark_entries(eval_date)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("leaderboard: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, entry *Entry) error {
	if s == nil || s.db == nil {
		return errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return errors.New("leaderboard: nil context")
	}
	if entry == nil {
		return errors.New("leaderboard: nil entry")
	}

	runID := strings.TrimSpace(entry.RunID)
	model := strings.TrimSpace(entry.Model)
	dataset := strings.TrimSpace(entry.Dataset)
	if runID == "" || model == "" || dataset == "" {
		return errors.New("leaderboard: missing run_id/model/dataset")
	}

	evalDate := entry.EvalDate
	if evalDate.IsZero() {
		evalDate = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO benchmark_entries (
			run_id, model, model_id, dataset, exact_match, f1,
			avg_latency_ms, avg_calls, input_tokens, output_tokens,
			cost_usd, errors, eval_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, model, strings.TrimSpace(entry.ModelID), dataset,
		entry.ExactMatch, entry.F1, entry.AvgLatencyMS, entry.AvgCalls,
		entry.InputTokens, entry.OutputTokens, entry.CostUSD, entry.Errors,
		evalDate.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("leaderboard: insert entry: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.EvalDate = evalDate
	entry.RunID = runID
	entry.Model = model
	entry.Dataset = dataset
	return nil
}

// GetLeaderboard returns the best entries for a dataset, ranked by F1 with
// exact match, latency and recency as tiebreakers.
func (s *Store) GetLeaderboard(ctx context.Context, dataset string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	dataset = strings.TrimSpace(dataset)
	if dataset == "" {
		return nil, errors.New("leaderboard: empty dataset")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, model, model_id, dataset, exact_match, f1,
			avg_latency_ms, avg_calls, input_tokens, output_tokens,
			cost_usd, errors, eval_date
		FROM benchmark_entries
		WHERE dataset = ?
		ORDER BY f1 DESC, exact_match DESC, avg_latency_ms ASC, eval_date DESC
		LIMIT ?
	`, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query leaderboard: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *Store) GetModelHistory(ctx context.Context, model, dataset string) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	model = strings.TrimSpace(model)
	dataset = strings.TrimSpace(dataset)
	if model == "" || dataset == "" {
		return nil, errors.New("leaderboard: missing model/dataset")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, model, model_id, dataset, exact_match, f1,
			avg_latency_ms, avg_calls, input_tokens, output_tokens,
			cost_usd, errors, eval_date
		FROM benchmark_entries
		WHERE model = ? AND dataset = ?
		ORDER BY eval_date DESC
	`, model, dataset)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query model history: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Datasets lists the distinct datasets that have stored entries.
func (s *Store) Datasets(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT dataset FROM benchmark_entries ORDER BY dataset
	`)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query datasets: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("leaderboard: scan dataset: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: scan rows: %w", err)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var evalDateMS int64
		if err := rows.Scan(
			&e.ID,
			&e.RunID,
			&e.Model,
			&e.ModelID,
			&e.Dataset,
			&e.ExactMatch,
			&e.F1,
			&e.AvgLatencyMS,
			&e.AvgCalls,
			&e.InputTokens,
			&e.OutputTokens,
			&e.CostUSD,
			&e.Errors,
			&evalDateMS,
		); err != nil {
			return nil, fmt.Errorf("leaderboard: scan entry: %w", err)
		}
		e.EvalDate = time.UnixMilli(evalDateMS).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: scan rows: %w", err)
	}
	return out, nil
}
