// Package output writes a run's artifacts to disk.
//
// Files are written whole: content goes to a temporary file in the target
// directory which is then renamed over the destination, so readers never
// observe a half-written result.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/florasheet/internal/core"
)

// Paths are the files written for one run.
type Paths struct {
	Result string
	Audit  string
}

// Writer places run artifacts in a directory.
type Writer struct {
	dir        string
	resultFile string
	auditFile  string
}

// New creates a writer. The directory is created on first write.
func New(dir, resultFile, auditFile string) *Writer {
	return &Writer{dir: dir, resultFile: resultFile, auditFile: auditFile}
}

// WriteRun writes the structured result and then the audit report.
func (w *Writer) WriteRun(run *core.Run) (Paths, error) {
	var p Paths
	var err error

	if p.Result, err = w.WriteResult(run.Result); err != nil {
		return Paths{}, err
	}
	if p.Audit, err = w.WriteAudit(run.Report); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// WriteResult writes res as indented JSON and returns the path written.
func (w *Writer) WriteResult(res core.Result) (string, error) {
	data, err := EncodeResult(res)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.dir, w.resultFile)
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	return path, nil
}

// WriteAudit writes the rendered audit report and returns the path written.
func (w *Writer) WriteAudit(report []byte) (string, error) {
	path := filepath.Join(w.dir, w.auditFile)
	if err := WriteFileAtomic(path, report, 0o644); err != nil {
		return "", fmt.Errorf("write audit report: %w", err)
	}
	return path, nil
}

// EncodeResult renders res as two-space indented JSON. Non-ASCII text and
// HTML characters are written literally.
func EncodeResult(res core.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory, creating the directory if needed.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
