package core

// pipeline.go runs one batch through every stage in order:
//
//	normalize → clean → assign ids → column check → validate → result + audit
//
// Fatal errors (capacity, missing schema columns, cancellation) return before
// any output exists. Validation errors never do: they become part of the
// outcome, and the audit report is rendered either way.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/florasheet/internal/logging"
	"github.com/JonMunkholm/florasheet/internal/schema"
)

// Options configures a Pipeline.
type Options struct {
	Schema  *schema.Schema    // Required
	Aliases map[string]string // nil uses DefaultAliases
	Clean   CleanOptions
	Rules   []Rule // nil uses the registered rules

	// Rand seeds sr_no generation. When set, the pipeline must not run
	// concurrently. nil draws a fresh source per run.
	Rand  *rand.Rand
	Now   func() time.Time
	NewID func() string
}

// Pipeline validates batches against one schema.
type Pipeline struct {
	opts      Options
	validator *Validator
}

// New creates a pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Schema == nil {
		return nil, errors.New("pipeline: schema is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	opts.Clean = opts.Clean.withDefaults()

	return &Pipeline{
		opts:      opts,
		validator: NewValidator(opts.Schema, opts.Rules, opts.Clean.MediaFields),
	}, nil
}

// Run is the complete outcome of one pipeline invocation.
type Run struct {
	ID        string
	Timestamp time.Time
	InputFile string
	Table     Table // The cleaned batch, kept even when validation failed
	Outcome   ValidationOutcome
	Result    Result
	Report    []byte
	Notes     []Note
	Stats     Stats
}

// Run processes one batch. inputName only labels the audit report.
func (p *Pipeline) Run(ctx context.Context, in Table, inputName string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Timestamp: p.opts.Now(),
		InputFile: inputName,
	}
	log := logging.WithFields(ctx, "run_id", run.ID, "input", inputName)
	start := time.Now()

	run.Stats.InputRows = len(in.Rows)

	stageStart := time.Now()
	t, notes := NormalizeColumns(in, p.opts.Aliases)
	run.Notes = append(run.Notes, notes...)
	log.Debug("stage complete", "stage", StageNormalize, "columns", len(t.Columns),
		"duration_ms", time.Since(stageStart).Milliseconds())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageStart = time.Now()
	cleaner := NewCleaner(p.opts.Clean, p.opts.Rand)
	t, notes, err := cleaner.Clean(t, &run.Stats)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	run.Notes = append(run.Notes, notes...)
	log.Debug("stage complete", "stage", StageClean, "rows", len(t.Rows),
		"duration_ms", time.Since(stageStart).Milliseconds())

	stageStart = time.Now()
	run.Stats.IDsAssigned = AssignIDs(&t, p.opts.NewID)
	if run.Stats.IDsAssigned > 0 {
		run.Notes = append(run.Notes, Note{
			Stage:   StageIdentify,
			Message: fmt.Sprintf("assigned id to %d row(s)", run.Stats.IDsAssigned),
		})
	}
	run.Stats.OutputRows = len(t.Rows)
	log.Debug("stage complete", "stage", StageIdentify, "ids_assigned", run.Stats.IDsAssigned,
		"duration_ms", time.Since(stageStart).Milliseconds())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := CheckColumns(t, p.opts.Schema); err != nil {
		return nil, err
	}

	stageStart = time.Now()
	run.Table = t
	run.Outcome = p.validator.Validate(t)
	log.Debug("stage complete", "stage", StageValidate, "errors", len(run.Outcome.Errors),
		"duration_ms", time.Since(stageStart).Milliseconds())

	run.Result = NewResult(run.Outcome, t)

	var buf bytes.Buffer
	err = RenderAudit(&buf, AuditInput{
		Timestamp: run.Timestamp,
		InputFile: inputName,
		ErrorRows: len(run.Result.Errors),
		Errors:    run.Result.Errors,
		Records:   run.Result.CleanedData,
		Notes:     run.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("render audit: %w", err)
	}
	run.Report = buf.Bytes()

	log.Info("pipeline complete",
		"status", run.Result.Status,
		"input_rows", run.Stats.InputRows,
		"output_rows", run.Stats.OutputRows,
		"errors", len(run.Result.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return run, nil
}
