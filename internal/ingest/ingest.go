// Package ingest decodes comma-separated and spreadsheet files into core
// tables. It is the input collaborator of the pipeline: it knows about file
// formats and encodings, never about species.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/florasheet/internal/core"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .csv and .xlsx. Legacy .xls workbooks are rejected as well.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrInputNotFound is returned by ReadFile when the path does not exist.
	ErrInputNotFound = errors.New("input file not found")
)

// Format is a tabular input encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName picks the decoder from a file name's extension.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return "", fmt.Errorf("%w: %q (legacy Excel workbooks cannot be read; save as .xlsx or .csv)", ErrUnsupportedFormat, ext)
	default:
		return "", fmt.Errorf("%w: %q (use .csv or .xlsx)", ErrUnsupportedFormat, ext)
	}
}

// Read decodes r in the given format.
func Read(r io.Reader, format Format) (core.Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	default:
		return core.Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadFile opens and decodes path, choosing the format from its extension.
// The extension is checked before the file is opened.
func ReadFile(path string) (core.Table, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return core.Table{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Table{}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return core.Table{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	t, err := Read(f, format)
	if err != nil {
		return core.Table{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}
