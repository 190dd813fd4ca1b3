// Package store persists calculation runs so results can be fetched again by ID.
// Postgres is used when a pool is supplied; otherwise runs are JSON files.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"company_historicals/pkg/core/historical"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Run is one stored calculation.
type Run struct {
	ID          string                       `json:"id"`
	CompanyType string                       `json:"company_type"`
	CreatedAt   time.Time                    `json:"created_at"`
	Result      historical.CalculationResult `json:"result"`
}

const schema = `
	CREATE TABLE IF NOT EXISTS historical_runs (
		id           UUID PRIMARY KEY,
		company_type TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		result       JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS historical_runs_type_created
		ON historical_runs (company_type, created_at DESC);
`

// RunStore saves and loads runs.
type RunStore struct {
	pool    *pgxpool.Pool
	fileDir string
	now     func() time.Time
}

// NewRunStore returns a store backed by pool, or by JSON files in dir when
// pool is nil. The directory is created if needed.
func NewRunStore(pool *pgxpool.Pool, dir string) (*RunStore, error) {
	if pool == nil {
		if dir == "" {
			dir = filepath.Join(".cache", "historicals", "runs")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create run directory %s: %w", dir, err)
		}
	}
	return &RunStore{pool: pool, fileDir: dir, now: time.Now}, nil
}

// Backend names the storage in use.
func (s *RunStore) Backend() string {
	if s.pool != nil {
		return "postgres"
	}
	return "file"
}

// EnsureSchema creates the runs table. It is a no-op for file storage.
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create historical_runs: %w", err)
	}
	return nil
}

// Save stores res under a new ID.
func (s *RunStore) Save(ctx context.Context, companyType string, res historical.CalculationResult) (Run, error) {
	run := Run{
		ID:          uuid.New().String(),
		CompanyType: companyType,
		CreatedAt:   s.now().UTC(),
		Result:      res,
	}

	if s.pool != nil {
		data, err := json.Marshal(res)
		if err != nil {
			return Run{}, fmt.Errorf("failed to marshal result: %w", err)
		}
		query := `INSERT INTO historical_runs (id, company_type, created_at, result) VALUES ($1, $2, $3, $4)`
		if _, err := s.pool.Exec(ctx, query, run.ID, run.CompanyType, run.CreatedAt, data); err != nil {
			return Run{}, fmt.Errorf("failed to save run: %w", err)
		}
		return run, nil
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return Run{}, fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(s.runPath(run.ID), data, 0o644); err != nil {
		return Run{}, fmt.Errorf("failed to write run file: %w", err)
	}
	return run, nil
}

// Get loads the run with id. Unknown or malformed IDs return ErrNotFound.
func (s *RunStore) Get(ctx context.Context, id string) (Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if s.pool != nil {
		query := `SELECT company_type, created_at, result FROM historical_runs WHERE id = $1`
		run := Run{ID: id}
		var data []byte
		err := s.pool.QueryRow(ctx, query, id).Scan(&run.CompanyType, &run.CreatedAt, &data)
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return Run{}, fmt.Errorf("failed to load run: %w", err)
		}
		if err := json.Unmarshal(data, &run.Result); err != nil {
			return Run{}, fmt.Errorf("failed to unmarshal run result: %w", err)
		}
		return run, nil
	}

	return s.loadFile(s.runPath(id))
}

// List returns up to limit runs, newest first, optionally filtered by company type.
func (s *RunStore) List(ctx context.Context, companyType string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	if s.pool != nil {
		query := `
			SELECT id::text, company_type, created_at, result
			FROM historical_runs
			WHERE $1 = '' OR company_type = $1
			ORDER BY created_at DESC
			LIMIT $2
		`
		rows, err := s.pool.Query(ctx, query, companyType, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		defer rows.Close()

		var runs []Run
		for rows.Next() {
			var run Run
			var data []byte
			if err := rows.Scan(&run.ID, &run.CompanyType, &run.CreatedAt, &data); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if err := json.Unmarshal(data, &run.Result); err != nil {
				return nil, fmt.Errorf("failed to unmarshal run %s: %w", run.ID, err)
			}
			runs = append(runs, run)
		}
		return runs, rows.Err()
	}

	entries, err := os.ReadDir(s.fileDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read run directory: %w", err)
	}
	var runs []Run
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		run, err := s.loadFile(filepath.Join(s.fileDir, e.Name()))
		if err != nil {
			continue
		}
		if companyType != "" && run.CompanyType != companyType {
			continue
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close releases the database pool, if any.
func (s *RunStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *RunStore) runPath(id string) string {
	return filepath.Join(s.fileDir, id+".json")
}

func (s *RunStore) loadFile(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to read run file: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, fmt.Errorf("failed to unmarshal run file %s: %w", filepath.Base(path), err)
	}
	return run, nil
}
