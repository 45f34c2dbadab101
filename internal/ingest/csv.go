package ingest

// csv.go decodes comma-separated text.
//
// Input is passed through a decoding chain before parsing:
//   - a UTF-8, UTF-16LE or UTF-16BE byte order mark selects that encoding
//     and is dropped (Excel's "CSV UTF-8" and "Unicode Text" exports)
//   - without a BOM the input is read as UTF-8, and invalid byte sequences
//     become U+FFFD instead of failing the parse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/florasheet/internal/core"
)

// Decode wraps r with BOM detection and UTF-8 sanitization.
func Decode(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadCSV decodes a CSV document whose first record is the header.
func ReadCSV(r io.Reader) (core.Table, error) {
	cr := csv.NewReader(Decode(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.Table{}, ErrEmptyFile
	}
	if err != nil {
		return core.Table{}, fmt.Errorf("invalid csv: %w", err)
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.Table{}, fmt.Errorf("invalid csv: %w", err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return core.Table{}, fmt.Errorf("invalid csv: line %d has %d fields, header has %d",
				line, len(rec), len(header))
		}
		records = append(records, rec)
	}

	return buildTable(header, records), nil
}
