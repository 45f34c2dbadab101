package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS florasheet_runs (
    id           UUID PRIMARY KEY,
    input_file   TEXT NOT NULL,
    status       TEXT NOT NULL,
    error_count  INTEGER NOT NULL,
    record_count INTEGER NOT NULL,
    input_rows   INTEGER NOT NULL,
    errors       JSONB NOT NULL DEFAULT '[]',
    source       TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS florasheet_runs_created_at_idx ON florasheet_runs (created_at DESC);
`

// EnsureSchema creates the history table if it does not exist.
func (q *Queries) EnsureSchema(ctx context.Context) error {
	if _, err := q.db.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

const insertRun = `
INSERT INTO florasheet_runs (id, input_file, status, error_count, record_count, input_rows, errors, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at
`

// InsertRunParams are the columns written for one run.
type InsertRunParams struct {
	ID          pgtype.UUID
	InputFile   string
	Status      string
	ErrorCount  int32
	RecordCount int32
	InputRows   int32
	Errors      []byte
	Source      pgtype.Text
}

// InsertRun stores a run and returns its creation time.
func (q *Queries) InsertRun(ctx context.Context, arg InsertRunParams) (pgtype.Timestamptz, error) {
	row := q.db.QueryRow(ctx, insertRun,
		arg.ID,
		arg.InputFile,
		arg.Status,
		arg.ErrorCount,
		arg.RecordCount,
		arg.InputRows,
		arg.Errors,
		arg.Source,
	)
	var createdAt pgtype.Timestamptz
	err := row.Scan(&createdAt)
	return createdAt, err
}

const listRecentRuns = `
SELECT id, input_file, status, error_count, record_count, input_rows, errors, source, created_at
FROM florasheet_runs
ORDER BY created_at DESC
LIMIT $1
`

// RunRow is one history row as stored.
type RunRow struct {
	ID          pgtype.UUID
	InputFile   string
	Status      string
	ErrorCount  int32
	RecordCount int32
	InputRows   int32
	Errors      []byte
	Source      pgtype.Text
	CreatedAt   pgtype.Timestamptz
}

// ListRecentRuns returns up to limit runs, newest first.
func (q *Queries) ListRecentRuns(ctx context.Context, limit int32) ([]RunRow, error) {
	rows, err := q.db.Query(ctx, listRecentRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []RunRow
	for rows.Next() {
		var i RunRow
		if err := rows.Scan(
			&i.ID,
			&i.InputFile,
			&i.Status,
			&i.ErrorCount,
			&i.RecordCount,
			&i.InputRows,
			&i.Errors,
			&i.Source,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func encodeErrors(errs []string) ([]byte, error) {
	if errs == nil {
		errs = []string{}
	}
	return json.Marshal(errs)
}

func decodeErrors(raw []byte) []string {
	var errs []string
	if len(raw) == 0 || json.Unmarshal(raw, &errs) != nil {
		return []string{}
	}
	return errs
}
