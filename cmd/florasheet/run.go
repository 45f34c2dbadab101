package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/JonMunkholm/florasheet/internal/config"
	"github.com/JonMunkholm/florasheet/internal/core"
	"github.com/JonMunkholm/florasheet/internal/ingest"
	"github.com/JonMunkholm/florasheet/internal/output"
	"github.com/JonMunkholm/florasheet/internal/schema"
	"github.com/JonMunkholm/florasheet/internal/store"
)

func runCommand(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	input := fs.String("input", "", "species file (.csv, .xlsx or .xls)")
	schemaPath := fs.String("schema", "", "schema document (.json, .yaml); empty uses the built-in species schema")
	outDir := fs.String("output", cfg.Output.Dir, "directory for the result and the audit report")
	seed := fs.Uint64("seed", 0, "seed for sr_no generation; 0 picks a random seed")
	strict := fs.Bool("strict", false, "exit with status 3 when validation fails")
	history := fs.Bool("history", cfg.Database.Enabled(), "record the run in the history database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("no file provided: -input is required")
	}

	sch, err := loadSchema(*schemaPath)
	if err != nil {
		return err
	}
	table, err := ingest.ReadFile(*input)
	if err != nil {
		return err
	}

	opts := pipelineOptions(cfg, sch)
	if *seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(*seed, *seed))
	}
	p, err := core.New(opts)
	if err != nil {
		return err
	}

	run, err := p.Run(ctx, table, *input)
	if err != nil {
		return err
	}

	paths, err := output.New(*outDir, cfg.Output.ResultFile, cfg.Output.AuditFile).WriteRun(run)
	if err != nil {
		return err
	}

	if *history {
		recordHistory(ctx, cfg.Database, run)
	}

	fmt.Fprintf(stdout, "%s: %s (%d errors, %d records)\n", *input, run.Result.Status, len(run.Result.Errors), run.Stats.OutputRows)
	fmt.Fprintf(stdout, "result: %s\naudit:  %s\n", paths.Result, paths.Audit)

	if *strict && !run.Result.Passed() {
		return errValidationFailed
	}
	return nil
}

// loadSchema reads the schema document at path, or returns the built-in
// species schema when path is empty.
func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Species(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("schema file not found: %s", path)
	}
	return schema.LoadFile(path)
}

func pipelineOptions(cfg *config.Config, sch *schema.Schema) core.Options {
	return core.Options{
		Schema: sch,
		Clean: core.CleanOptions{
			MediaFields:   cfg.Pipeline.MediaFields,
			IdentityField: cfg.Pipeline.IdentityField,
			SrNoMin:       cfg.Pipeline.SrNoMin,
			SrNoMax:       cfg.Pipeline.SrNoMax,
		},
	}
}

// recordHistory stores run in the history database. The artifacts are
// already written, so failures are only logged.
func recordHistory(ctx context.Context, dbCfg config.DatabaseConfig, run *core.Run) {
	st, err := store.Open(ctx, dbCfg)
	if err != nil {
		slog.Warn("run history unavailable", "error", err)
		return
	}
	defer st.Close()

	if _, err := st.Record(ctx, run, "cli"); err != nil {
		slog.Warn("record run history", "run_id", run.ID, "error", err)
	}
}
