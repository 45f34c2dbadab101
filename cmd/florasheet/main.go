// Command florasheet cleans and validates species datasets.
//
//	florasheet run -input species.csv [-schema schema.json] [-output out]
//	florasheet serve [-schema schema.json] [-port 8080]
//	florasheet match -dir raw_videos [-result out/cleaned_species.json]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/florasheet/internal/config"
	"github.com/JonMunkholm/florasheet/internal/core"
	"github.com/JonMunkholm/florasheet/internal/logging"
)

const usage = `usage: florasheet <command> [flags]

commands:
  run     clean, validate and audit a species file
  serve   serve the pipeline over HTTP
  match   match raw media files to cleaned records

Input files may be .csv or .xlsx; legacy .xls workbooks are not supported.

Run "florasheet <command> -h" for command flags.
`

// exitValidationFailed is the exit status of "run -strict" when the batch
// fails validation.
const exitValidationFailed = 3

// errValidationFailed signals a completed run whose batch did not pass.
var errValidationFailed = errors.New("validation failed")

func main() {
	// A missing .env is fine; the environment and defaults still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "run":
		err = runCommand(ctx, cfg, args, os.Stdout)
	case "serve":
		err = serveCommand(ctx, cfg, args)
	case "match":
		err = matchCommand(cfg, args, os.Stdout)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errValidationFailed):
		os.Exit(exitValidationFailed)
	default:
		msg := core.MapError(err)
		slog.Error("command failed", "command", command, "error", err, "code", msg.Code)
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		os.Exit(1)
	}
}
