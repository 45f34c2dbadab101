package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/florasheet/internal/config"
	"github.com/JonMunkholm/florasheet/internal/media"
)

func matchCommand(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	resultPath := fs.String("result", filepath.Join(cfg.Output.Dir, cfg.Output.ResultFile), "structured result written by run")
	dir := fs.String("dir", "", "directory of raw media files")
	cleanedDir := fs.String("cleaned", "cleaned_videos", "directory cleaned files are written to")
	asJSON := fs.Bool("json", false, "print the plan as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return errors.New("no file provided: -dir is required")
	}

	entries, err := media.LoadEntriesFile(*resultPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("input file not found: %s", *resultPath)
	}
	if err != nil {
		return err
	}

	plan, err := media.NewIndex(entries).PlanDir(*dir, *cleanedDir)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	printPlan(stdout, plan)
	return nil
}

func printPlan(w io.Writer, plan media.Plan) {
	for _, a := range plan.Assignments {
		state := "match"
		if a.AlreadyCleaned {
			state = "done "
		}
		fmt.Fprintf(w, "%s  %s -> %s\n", state, a.File, a.Target)
	}
	for _, name := range plan.Unmatched {
		fmt.Fprintf(w, "none   %s\n", name)
	}
	fmt.Fprintf(w, "%d matched, %d unmatched, %d skipped\n",
		len(plan.Assignments), len(plan.Unmatched), len(plan.Skipped))
}
