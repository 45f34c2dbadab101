package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/florasheet/internal/core"
)

// naValues are cell texts read as null, matching the markers spreadsheet
// and dataframe tools write for missing data.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsNA reports whether a raw cell text means "no value".
func IsNA(s string) bool {
	return naValues[s]
}

type columnKind int

const (
	kindEmpty columnKind = iota
	kindInt
	kindFloat
	kindBool
	kindString
)

// headerNames fills blank headers and disambiguates repeated ones:
// "" → "Unnamed: 3", a second "Habitat" → "Habitat.1".
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// buildTable converts raw text rows into a typed table. Each column gets one
// type: int when every non-null cell is an integer, float64 when every one is
// a number, bool when every one is true/false, string otherwise. Null markers
// and missing trailing cells become nil.
func buildTable(header []string, records [][]string) core.Table {
	cols := headerNames(header)
	kinds := make([]columnKind, len(cols))
	for c := range cols {
		kinds[c] = inferKind(records, c)
	}

	t := core.Table{Columns: cols, Rows: make([]core.Row, len(records))}
	for r, rec := range records {
		row := make(core.Row, len(cols))
		for c, name := range cols {
			if c >= len(rec) || IsNA(rec[c]) {
				row[name] = nil
				continue
			}
			row[name] = convert(rec[c], kinds[c])
		}
		t.Rows[r] = row
	}
	return t
}

func inferKind(records [][]string, col int) columnKind {
	kind := kindEmpty
	for _, rec := range records {
		if col >= len(rec) || IsNA(rec[col]) {
			continue
		}
		k := cellKind(rec[col])
		if kind == kindEmpty {
			kind = k
			continue
		}
		kind = widen(kind, k)
		if kind == kindString {
			return kindString
		}
	}
	return kind
}

func cellKind(s string) columnKind {
	if _, err := strconv.Atoi(s); err == nil {
		return kindInt
	}
	if isDecimal(s) {
		return kindFloat
	}
	if _, ok := parseBool(s); ok {
		return kindBool
	}
	return kindString
}

func widen(a, b columnKind) columnKind {
	if a == b {
		return a
	}
	if (a == kindInt && b == kindFloat) || (a == kindFloat && b == kindInt) {
		return kindFloat
	}
	return kindString
}

// isDecimal accepts plain and exponent notation, rejecting the hex,
// infinity and NaN spellings strconv also understands.
func isDecimal(s string) bool {
	if strings.ContainsAny(s, "xXpPiInN_") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func convert(s string, kind columnKind) any {
	switch kind {
	case kindInt:
		n, _ := strconv.Atoi(s)
		return n
	case kindFloat:
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case kindBool:
		b, _ := parseBool(s)
		return b
	default:
		return s
	}
}
