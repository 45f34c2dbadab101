package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/florasheet/internal/core"
)

// ReadXLSX decodes the first worksheet of an Office Open XML workbook.
// Leading blank rows are skipped; the first non-blank row is the header.
// Cell values are read unformatted so numbers are not thousands-separated.
func ReadXLSX(r io.Reader) (core.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return core.Table{}, fmt.Errorf("invalid spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return core.Table{}, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return core.Table{}, fmt.Errorf("invalid spreadsheet: sheet %q: %w", sheets[0], err)
	}

	for len(rows) > 0 && blankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return core.Table{}, ErrEmptyFile
	}

	header := rows[0]
	records := rows[1:]
	for i, rec := range records {
		if len(rec) > len(header) {
			// Cells beyond the header only count when they hold something.
			extra := rec[len(header):]
			if !blankRow(extra) {
				return core.Table{}, fmt.Errorf("invalid spreadsheet: row %d has %d cells, header has %d",
					i+2, len(rec), len(header))
			}
			records[i] = rec[:len(header)]
		}
	}

	return buildTable(header, records), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
