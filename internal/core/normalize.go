package core

// normalize.go maps arbitrary and legacy column headers onto canonical names.
//
// A header is Unicode-normalized (NFC), trimmed and lowercased, then looked
// up in an alias table keyed by that lowercased form. Headers without an
// alias pass through in their normalized form. No alias key is a canonical
// name mapped elsewhere, so normalizing an already-normalized table changes
// nothing.

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultAliases maps lowercased display headers to canonical field names.
var DefaultAliases = map[string]string{
	"sr no":                     FieldSrNo,
	"sr. no":                    FieldSrNo,
	"sr. no.":                   FieldSrNo,
	"scientific name":           FieldScientificName,
	"etymology":                 FieldEtymology,
	"common name":               FieldCommonName,
	"habitat":                   FieldHabitat,
	"phenology":                 FieldPhenology,
	"identification characters": FieldIdentificationCharacters,
	"leaf type":                 FieldLeafType,
	"fruit type":                FieldFruitType,
	"seed germination":          FieldSeedGermination,
	"pest":                      FieldPest,
	"image urls":                FieldImageURLs,
	"images":                    FieldImageURLs,
	"video":                     FieldVideos,
}

// NormalizeColumnName returns the canonical name for a single header. Runs of
// whitespace, including the no-break spaces spreadsheets emit, become one space.
func NormalizeColumnName(name string, aliases map[string]string) string {
	key := strings.ToLower(strings.Join(strings.Fields(norm.NFC.String(name)), " "))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// NormalizeColumns renames every column of t. When two headers collapse onto
// the same name the first keeps its position and values; later columns only
// fill its null cells. Each merge is reported as a Note.
func NormalizeColumns(t Table, aliases map[string]string) (Table, []Note) {
	if aliases == nil {
		aliases = DefaultAliases
	}

	out := Table{Rows: make([]Row, len(t.Rows)), Origins: t.Origins}
	rename := make(map[string]string, len(t.Columns))
	var notes []Note

	for _, col := range t.Columns {
		name := NormalizeColumnName(col, aliases)
		if out.HasColumn(name) {
			notes = append(notes, Note{
				Stage:   StageNormalize,
				Message: "column " + quote(col) + " merged into " + quote(name),
			})
		}
		rename[col] = name
		out.AddColumn(name)
	}

	for i, row := range t.Rows {
		nr := make(Row, len(out.Columns))
		for _, col := range t.Columns {
			name := rename[col]
			v := row[col]
			if existing, seen := nr[name]; seen && !IsNull(existing) {
				continue
			}
			nr[name] = v
		}
		out.Rows[i] = nr
	}

	return out, notes
}

func quote(s string) string {
	return `"` + s + `"`
}
