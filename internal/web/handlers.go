package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/florasheet/internal/core"
	"github.com/JonMunkholm/florasheet/internal/ingest"
	"github.com/JonMunkholm/florasheet/internal/logging"
	"github.com/JonMunkholm/florasheet/internal/schema"
	"github.com/JonMunkholm/florasheet/internal/store"
)

// historySource labels runs recorded by this transport.
const historySource = "http"

// validateResponse is the body of POST /api/validate.
type validateResponse struct {
	RunID  string      `json:"run_id"`
	Result core.Result `json:"result"`
	Report string      `json:"report"`
	Stats  core.Stats  `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"runs":    s.limiter.Status(),
		"history": s.history != nil,
	})
}

// handleValidate runs the pipeline on an uploaded file and returns the
// structured result together with the audit report text.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	run, status, err := s.execute(w, r)
	if err != nil {
		s.respondError(w, r, err, status)
		return
	}

	writeJSON(w, r, http.StatusOK, validateResponse{
		RunID:  run.ID,
		Result: run.Result,
		Report: string(run.Report),
		Stats:  run.Stats,
	})
}

// handleValidatePage is handleValidate for browsers.
func (s *Server) handleValidatePage(w http.ResponseWriter, r *http.Request) {
	run, status, err := s.execute(w, r)
	if err != nil {
		s.respondError(w, r, err, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := auditPage(run).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render audit page", "error", err)
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, errHistoryDisabled, http.StatusNotFound)
		return
	}

	limit := parseIntParam(r, "limit", store.DefaultRecentLimit)
	runs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"runs": runs})
}

// execute decodes the multipart upload and runs it through the pipeline.
// The form carries the data in "file" and, optionally, a schema document in
// "schema".
func (s *Server) execute(w http.ResponseWriter, r *http.Request) (*core.Run, int, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file too large: limit is %d bytes", tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, errNoFile
	}
	defer file.Close()

	format, err := ingest.FormatFromName(header.Filename)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	table, err := ingest.Read(file, format)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("%s: %w", header.Filename, err)
	}

	p, err := s.pipelineFor(r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	ctx := r.Context()
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, statusFor(err), err
	}
	defer s.limiter.Release()

	run, err := p.Run(ctx, table, header.Filename)
	if err != nil {
		return nil, statusFor(err), err
	}

	s.record(ctx, run)
	return run, http.StatusOK, nil
}

// pipelineFor builds a pipeline over the uploaded schema, or the default
// schema when the form has none.
func (s *Server) pipelineFor(r *http.Request) (*core.Pipeline, error) {
	opts := s.base

	f, header, err := r.FormFile("schema")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return core.New(opts)
	case err != nil:
		return nil, fmt.Errorf("read schema upload: %w", err)
	}
	defer f.Close()

	format, err := schema.FormatFromPath(header.Filename)
	if err != nil {
		return nil, err
	}
	opts.Schema, err = schema.Parse(f, format)
	if err != nil {
		return nil, err
	}
	return core.New(opts)
}

// record stores the run in history. Failures are logged, never returned:
// the result is already computed and belongs to the caller.
func (s *Server) record(ctx context.Context, run *core.Run) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(ctx, run, historySource); err != nil {
		logging.FromContext(ctx).Warn("record run history",
			"run_id", run.ID,
			"error", err,
		)
	}
}

// parseIntParam parses a positive integer query parameter.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
