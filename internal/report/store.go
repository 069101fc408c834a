// Package report persists resolution runs in a SQLite database so that
// binding decisions can be compared across compilations.
package report

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package state.
var migrateMu sync.Mutex

// Store is an open report database.
type Store struct {
	db *sql.DB
}

// Run is one compilation unit checked by one invocation.
type Run struct {
	ID          string
	Unit        string
	File        string
	StartedAt   time.Time
	Bindings    []Binding
	Diagnostics []Diagnostic
}

// Binding is a recorded resolution outcome. Error is empty when the
// requirement was resolved.
type Binding struct {
	Key       string
	Site      string
	Line      int
	Candidate string
	Tree      string
	Error     string
}

func (b Binding) Resolved() bool { return b.Error == "" }

type Diagnostic struct {
	Code    string
	File    string
	Line    int
	Column  int
	Message string
}

// RunSummary is a stored run with its outcome counts.
type RunSummary struct {
	ID          string
	Unit        string
	File        string
	StartedAt   time.Time
	Resolved    int
	Failed      int
	Diagnostics int
}

// NewRun starts a run with a fresh id.
func NewRun(unit, file string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Unit:      unit,
		File:      file,
		StartedAt: time.Now().UTC(),
	}
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores run in a single transaction.
func (s *Store) Save(ctx context.Context, run *Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, unit, file, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Unit, run.File, run.StartedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}

	for _, b := range run.Bindings {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO bindings (run_id, key, site, line, candidate, tree, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, b.Key, b.Site, b.Line, b.Candidate, b.Tree, b.Error,
		); err != nil {
			return fmt.Errorf("failed to store binding %s: %w", b.Key, err)
		}
	}

	for i, d := range run.Diagnostics {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO diagnostics (run_id, seq, code, file, line, col, message) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, d.Code, d.File, d.Line, d.Column, d.Message,
		); err != nil {
			return fmt.Errorf("failed to store diagnostic: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.unit, r.file, r.started_at,
		       (SELECT COUNT(*) FROM bindings b WHERE b.run_id = r.id AND b.error = ''),
		       (SELECT COUNT(*) FROM bindings b WHERE b.run_id = r.id AND b.error <> ''),
		       (SELECT COUNT(*) FROM diagnostics d WHERE d.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started string
		if err := rows.Scan(&r.ID, &r.Unit, &r.File, &started, &r.Resolved, &r.Failed, &r.Diagnostics); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: invalid start time %q: %w", r.ID, started, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Bindings returns the bindings of a run ordered by key.
func (s *Store) Bindings(ctx context.Context, runID string) ([]Binding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, site, line, candidate, tree, error FROM bindings WHERE run_id = ? ORDER BY key`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}
	defer rows.Close()

	var bindings []Binding
	for rows.Next() {
		var b Binding
		if err := rows.Scan(&b.Key, &b.Site, &b.Line, &b.Candidate, &b.Tree, &b.Error); err != nil {
			return nil, fmt.Errorf("failed to scan binding: %w", err)
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// Diagnostics returns the diagnostics of a run in reporting order.
func (s *Store) Diagnostics(ctx context.Context, runID string) ([]Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, file, line, col, message FROM diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []Diagnostic
	for rows.Next() {
		var d Diagnostic
		if err := rows.Scan(&d.Code, &d.File, &d.Line, &d.Column, &d.Message); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}
