package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/florasheet/internal/config"
	"github.com/JonMunkholm/florasheet/internal/core"
)

// DefaultRecentLimit caps Recent when no limit is given.
const DefaultRecentLimit = 20

// MaxRecentLimit is the largest page Recent returns.
const MaxRecentLimit = 200

// Run is the history view of one pipeline run.
type Run struct {
	ID          string    `json:"id"`
	InputFile   string    `json:"input_file"`
	Status      string    `json:"status"`
	ErrorCount  int       `json:"error_count"`
	RecordCount int       `json:"record_count"`
	InputRows   int       `json:"input_rows"`
	Errors      []string  `json:"errors"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store records run history.
type Store struct {
	pool *pgxpool.Pool
	q    *Queries
}

// Open connects to PostgreSQL, verifies the connection and creates the
// history table when missing.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	if !cfg.Enabled() {
		return nil, errors.New("database URL is not configured")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool, q: New(pool)}
	if err := s.q.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB builds a store over an existing connection. Close is a no-op.
func NewWithDB(db DBTX) *Store {
	return &Store{q: New(db)}
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Record stores the outcome of run. source labels where it came from,
// such as "cli" or "http".
func (s *Store) Record(ctx context.Context, run *core.Run, source string) (Run, error) {
	errs, err := encodeErrors(run.Result.Errors)
	if err != nil {
		return Run{}, fmt.Errorf("encode errors: %w", err)
	}

	params := InsertRunParams{
		ID:          toPgUUID(run.ID),
		InputFile:   run.InputFile,
		Status:      run.Result.Status,
		ErrorCount:  int32(len(run.Result.Errors)),
		RecordCount: int32(run.Stats.OutputRows),
		InputRows:   int32(run.Stats.InputRows),
		Errors:      errs,
		Source:      toPgText(source),
	}
	if !params.ID.Valid {
		return Run{}, fmt.Errorf("invalid run id %q", run.ID)
	}

	createdAt, err := s.q.InsertRun(ctx, params)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	return Run{
		ID:          run.ID,
		InputFile:   params.InputFile,
		Status:      params.Status,
		ErrorCount:  int(params.ErrorCount),
		RecordCount: int(params.RecordCount),
		InputRows:   int(params.InputRows),
		Errors:      run.Result.Errors,
		Source:      source,
		CreatedAt:   pgTime(createdAt),
	}, nil
}

// Recent returns the newest runs. limit <= 0 uses DefaultRecentLimit and
// values above MaxRecentLimit are capped.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	rows, err := s.q.ListRecentRuns(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]Run, len(rows))
	for i, r := range rows {
		runs[i] = Run{
			ID:          pgUUIDToString(r.ID),
			InputFile:   r.InputFile,
			Status:      r.Status,
			ErrorCount:  int(r.ErrorCount),
			RecordCount: int(r.RecordCount),
			InputRows:   int(r.InputRows),
			Errors:      decodeErrors(r.Errors),
			Source:      r.Source.String,
			CreatedAt:   pgTime(r.CreatedAt),
		}
	}
	return runs, nil
}
