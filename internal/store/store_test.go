package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/florasheet/internal/config"
	"github.com/JonMunkholm/florasheet/internal/core"
)

// fakeDB records statements and replays canned rows.
type fakeDB struct {
	execSQL   []string
	queryArgs [][]any
	rows      [][]any
	scanRow   []any
	err       error
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...interface{}) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), f.err
}

func (f *fakeDB) Query(_ context.Context, _ string, args ...interface{}) (pgx.Rows, error) {
	f.queryArgs = append(f.queryArgs, args)
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{rows: f.rows, pos: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...interface{}) pgx.Row {
	f.queryArgs = append(f.queryArgs, args)
	return fakeRow{values: f.scanRow, err: f.err}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool                                   { r.pos++; return r.pos < len(r.rows) }
func (r *fakeRows) Scan(dest ...any) error                       { return assign(dest, r.rows[r.pos]) }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func TestEnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, New(db).EnsureSchema(context.Background()))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "CREATE TABLE IF NOT EXISTS florasheet_runs")

	db.err = errors.New("permission denied")
	err := New(db).EnsureSchema(context.Background())
	assert.ErrorContains(t, err, "create runs table")
}

func TestStore_Record(t *testing.T) {
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{scanRow: []any{ts(created)}}
	s := NewWithDB(db)

	run := &core.Run{
		ID:        uuid.NewString(),
		InputFile: "species.csv",
		Result: core.Result{
			Status:      core.StatusFail,
			Errors:      []string{"record 1 (Ficus): leaf_type: bad"},
			CleanedData: []core.Record{},
		},
		Stats: core.Stats{InputRows: 4, OutputRows: 3},
	}

	got, err := s.Record(context.Background(), run, "cli")
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, core.StatusFail, got.Status)
	assert.Equal(t, 1, got.ErrorCount)
	assert.Equal(t, 3, got.RecordCount)
	assert.Equal(t, 4, got.InputRows)
	assert.Equal(t, created, got.CreatedAt)

	require.Len(t, db.queryArgs, 1)
	args := db.queryArgs[0]
	require.Len(t, args, 8)
	assert.Equal(t, "species.csv", args[1])
	assert.Equal(t, `["record 1 (Ficus): leaf_type: bad"]`, string(args[6].([]byte)))
	assert.Equal(t, pgtype.Text{String: "cli", Valid: true}, args[7])
}

func TestStore_Record_InvalidID(t *testing.T) {
	s := NewWithDB(&fakeDB{})
	_, err := s.Record(context.Background(), &core.Run{ID: "not-a-uuid"}, "")
	assert.ErrorContains(t, err, "invalid run id")
}

func TestStore_Record_InsertError(t *testing.T) {
	s := NewWithDB(&fakeDB{err: errors.New("connection refused")})
	_, err := s.Record(context.Background(), &core.Run{ID: uuid.NewString()}, "http")
	require.Error(t, err)
	assert.Equal(t, "DB001", core.MapError(err).Code)
}

func TestStore_Recent(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: [][]any{{
		pgtype.UUID{Bytes: id, Valid: true},
		"species.xlsx",
		core.StatusPass,
		int32(0),
		int32(12),
		int32(14),
		[]byte(`[]`),
		pgtype.Text{String: "http", Valid: true},
		ts(created),
	}}}

	runs, err := NewWithDB(db).Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	r := runs[0]
	assert.Equal(t, id.String(), r.ID)
	assert.Equal(t, "species.xlsx", r.InputFile)
	assert.Equal(t, 12, r.RecordCount)
	assert.Equal(t, []string{}, r.Errors)
	assert.Equal(t, "http", r.Source)
	assert.Equal(t, created, r.CreatedAt)

	assert.Equal(t, int32(DefaultRecentLimit), db.queryArgs[0][0])
}

func TestStore_Recent_CapsLimit(t *testing.T) {
	db := &fakeDB{}
	_, err := NewWithDB(db).Recent(context.Background(), 10_000)
	require.NoError(t, err)
	assert.Equal(t, int32(MaxRecentLimit), db.queryArgs[0][0])
}

func TestDecodeErrors(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, decodeErrors([]byte(`["a","b"]`)))
	assert.Equal(t, []string{}, decodeErrors(nil))
	assert.Equal(t, []string{}, decodeErrors([]byte(`{`)))
}

func TestOpen_RequiresURL(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not configured"))
}

func TestUUIDConversion(t *testing.T) {
	id := uuid.NewString()
	assert.Equal(t, id, pgUUIDToString(toPgUUID(id)))
	assert.False(t, toPgUUID("").Valid)
	assert.False(t, toPgUUID("nope").Valid)
	assert.Equal(t, "", pgUUIDToString(pgtype.UUID{}))
}
