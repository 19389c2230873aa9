// Package store persists evaluation runs and per-call verdicts in an
// embedded libsql database, so historical batches can be compared without
// keeping the JSON result files around.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/precidx/precidx/precidx/validate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the runs database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates the database file if needed, connects in embedded mode and
// applies pending migrations.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create database directory %s: %w", dir, err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info().Str("path", path).Msg("creating results database")
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("store: create database %s: %w", path, err)
		}
		f.Close()
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open libsql: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one recorded evaluation batch.
type Run struct {
	ID        string
	Kind      string
	Folders   []string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// SaveRun records a batch result payload under a fresh run id.
func (s *Store) SaveRun(ctx context.Context, kind string, folders []string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("store: encode run payload: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, folders, payload) VALUES (?, ?, ?, ?)`,
		id, kind, strings.Join(folders, ","), string(data))
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}
	s.log.Debug().Str("run_id", id).Str("kind", kind).Msg("run recorded")
	return id, nil
}

// SaveVerdicts records the per-call verdicts of a validation report against
// an existing run. Rows are written in one transaction.
func (s *Store) SaveVerdicts(ctx context.Context, runID string, report *validate.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin verdicts tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verdicts (run_id, file, tool_name, action_valid, observation_valid, action_error, observation_error, suggestion)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare verdict insert: %w", err)
	}
	defer stmt.Close()

	for _, fr := range report.PerFileResults {
		for _, v := range fr.CallsDetails {
			_, err := stmt.ExecContext(ctx,
				runID, fr.File, v.ToolName,
				boolInt(v.ActionValid), boolInt(v.ObservationValid),
				issueText(v.ActionError), issueText(v.ObservationError),
				nullable(v.Suggestion))
			if err != nil {
				return fmt.Errorf("store: insert verdict: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit verdicts: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs of a kind, newest first. An empty
// kind matches all runs.
func (s *Store) ListRuns(ctx context.Context, kind string, limit int) ([]Run, error) {
	query := `SELECT id, kind, folders, payload, created_at FROM runs`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var folders, payload string
		if err := rows.Scan(&r.ID, &r.Kind, &folders, &payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		if folders != "" {
			r.Folders = strings.Split(folders, ",")
		}
		r.Payload = json.RawMessage(payload)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate runs: %w", err)
	}
	return runs, nil
}

// ToolFailureCounts aggregates invalid-call counts per tool for one run.
func (s *Store) ToolFailureCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tool_name, COUNT(*) FROM verdicts
		 WHERE run_id = ? AND (action_valid = 0 OR observation_valid = 0)
		 GROUP BY tool_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: tool failure counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tool string
		var n int
		if err := rows.Scan(&tool, &n); err != nil {
			return nil, fmt.Errorf("store: scan failure count: %w", err)
		}
		counts[tool] = n
	}
	return counts, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func issueText(issue *validate.Issue) any {
	if issue == nil {
		return nil
	}
	return string(issue.Kind) + ": " + issue.Message
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
