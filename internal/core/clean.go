package core

// clean.go removes structural defects from a normalized table.
//
// Steps run in a fixed order because each narrows the input for the next:
//  1. DropEmptyRows:         rows with no non-whitespace cell are removed
//  2. ParseMediaFields:      list-valued cells become []any, never failing
//  3. EnsureSequenceNumbers: sr_no drawn from a bounded range when missing
//  4. FillDefaults:          "Unknown" / "" for null identity and descriptive cells
//  5. Deduplicate:           first row per scientific_name wins
//
// Every step reports what it changed as Notes for the audit report.

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"reflect"
	"strings"
)

// DefaultUnknown is the placeholder for null required identity/taxonomy cells.
const DefaultUnknown = "Unknown"

// DefaultRequiredFields default to DefaultUnknown when null.
var DefaultRequiredFields = []string{
	FieldScientificName,
	FieldCommonName,
	FieldLeafType,
	FieldFruitType,
	FieldLanguage,
}

// DefaultOptionalFields default to the empty string when null.
var DefaultOptionalFields = []string{
	FieldEtymology,
	FieldHabitat,
	FieldPhenology,
	FieldIdentificationCharacters,
	FieldSeedGermination,
	FieldPest,
}

// DefaultMediaFields are parsed into media sequences.
var DefaultMediaFields = []string{FieldImageURLs, FieldVideos}

// Default sequence-number range, inclusive.
const (
	DefaultSrNoMin = 1000
	DefaultSrNoMax = 9999
)

// CleanOptions configures a Cleaner. Zero values select the defaults above.
type CleanOptions struct {
	MediaFields    []string
	RequiredFields []string
	OptionalFields []string
	IdentityField  string
	SrNoMin        int
	SrNoMax        int
}

func (o CleanOptions) withDefaults() CleanOptions {
	if o.MediaFields == nil {
		o.MediaFields = DefaultMediaFields
	}
	if o.RequiredFields == nil {
		o.RequiredFields = DefaultRequiredFields
	}
	if o.OptionalFields == nil {
		o.OptionalFields = DefaultOptionalFields
	}
	if o.IdentityField == "" {
		o.IdentityField = FieldScientificName
	}
	if o.SrNoMin == 0 && o.SrNoMax == 0 {
		o.SrNoMin, o.SrNoMax = DefaultSrNoMin, DefaultSrNoMax
	}
	return o
}

// Cleaner applies the structural cleaning steps.
type Cleaner struct {
	opts CleanOptions
	rng  *rand.Rand
}

// NewCleaner creates a cleaner. A nil rng uses a randomly seeded source.
func NewCleaner(opts CleanOptions, rng *rand.Rand) *Cleaner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Cleaner{opts: opts.withDefaults(), rng: rng}
}

// Clean runs all steps in order on a copy of t.
func (c *Cleaner) Clean(t Table, stats *Stats) (Table, []Note, error) {
	t = t.Clone()
	var notes []Note

	var n []Note
	t, n = DropEmptyRows(t, stats)
	notes = append(notes, n...)

	n = ParseMediaFields(&t, c.opts.MediaFields, stats)
	notes = append(notes, n...)

	n, err := EnsureSequenceNumbers(&t, c.rng, c.opts.SrNoMin, c.opts.SrNoMax, stats)
	if err != nil {
		return Table{}, notes, err
	}
	notes = append(notes, n...)

	n = FillDefaults(&t, c.opts.RequiredFields, c.opts.OptionalFields, stats)
	notes = append(notes, n...)

	t, n = Deduplicate(t, c.opts.IdentityField, stats)
	notes = append(notes, n...)

	return t, notes, nil
}

// ============================================================================
// Step 1: empty rows
// ============================================================================

// IsEmptyRow reports whether every cell of row is null or whitespace-only text.
func IsEmptyRow(row Row) bool {
	for _, v := range row {
		if strings.TrimSpace(cellString(v)) != "" {
			return false
		}
	}
	return true
}

// DropEmptyRows removes rows for which IsEmptyRow is true. Surviving rows
// keep their input row numbers.
func DropEmptyRows(t Table, stats *Stats) (Table, []Note) {
	kept := t.Rows[:0:0]
	origins := make([]int, 0, len(t.Rows))
	dropped := 0
	for i, row := range t.Rows {
		if IsEmptyRow(row) {
			dropped++
			continue
		}
		kept = append(kept, row)
		origins = append(origins, t.RowNumber(i))
	}
	t.Rows = kept
	t.Origins = origins
	stats.EmptyRowsDropped += dropped

	if dropped == 0 {
		return t, nil
	}
	return t, []Note{{Stage: StageClean, Message: fmt.Sprintf("dropped %d empty row(s)", dropped)}}
}

// ============================================================================
// Step 2: media fields
// ============================================================================

// ParseMediaList coerces a cell into an ordered sequence. It never fails:
// null becomes empty, sequences pass through, a single object is wrapped, and
// text is JSON-decoded with the raw text kept as the only element when decoding
// fails. The second result is false when that literal fallback was used.
func ParseMediaList(cell any) ([]any, bool) {
	switch v := cell.(type) {
	case nil:
		return []any{}, true
	case []any:
		return v, true
	case map[string]any:
		return []any{v}, true
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return []any{v}, false
		}
		if list, ok := parsed.([]any); ok {
			return list, true
		}
		return []any{parsed}, true
	default:
		return []any{v}, true
	}
}

// ParseMediaFields converts every designated media column into sequences.
// Media columns missing from the input are created with empty sequences.
func ParseMediaFields(t *Table, fields []string, stats *Stats) []Note {
	var notes []Note
	for _, field := range fields {
		t.AddColumn(field)
		for i, row := range t.Rows {
			list, ok := ParseMediaList(row[field])
			if !ok {
				stats.MediaLiteralFallbacks++
				notes = append(notes, Note{
					Stage: StageClean,
					Message: fmt.Sprintf("row %d (%s): %s is not valid JSON, kept as literal text",
						t.RowNumber(i), row.Identity(), field),
				})
			}
			row[field] = list
		}
	}
	return notes
}

// ============================================================================
// Step 3: sequence numbers
// ============================================================================

// EnsureSequenceNumbers assigns sr_no values drawn without replacement from
// [min, max] to every row whose sr_no is null. Values already present are
// excluded from the draw so generated numbers never collide with them.
func EnsureSequenceNumbers(t *Table, rng *rand.Rand, min, max int, stats *Stats) ([]Note, error) {
	t.AddColumn(FieldSrNo)

	used := make(map[int]bool)
	var missing []int
	for i, row := range t.Rows {
		if IsNull(row[FieldSrNo]) {
			missing = append(missing, i)
			continue
		}
		if n, ok := row.Int(FieldSrNo); ok {
			used[n] = true
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	values, err := SampleUnique(rng, len(missing), min, max, used)
	if err != nil {
		return nil, err
	}
	for j, i := range missing {
		t.Rows[i][FieldSrNo] = values[j]
	}
	stats.SrNoGenerated += len(missing)

	return []Note{{
		Stage:   StageClean,
		Message: fmt.Sprintf("generated sr_no for %d row(s) in range [%d, %d]", len(missing), min, max),
	}}, nil
}

// ============================================================================
// Step 4: defaults
// ============================================================================

// FillDefaults replaces null cells of present columns: required fields get
// DefaultUnknown, optional fields get "". Absent columns are not created.
func FillDefaults(t *Table, required, optional []string, stats *Stats) []Note {
	var notes []Note
	fill := func(field string, value string) {
		if !t.HasColumn(field) {
			return
		}
		count := 0
		for _, row := range t.Rows {
			if IsNull(row[field]) {
				row[field] = value
				count++
			}
		}
		if count > 0 {
			stats.DefaultsFilled += count
			notes = append(notes, Note{
				Stage:   StageClean,
				Message: fmt.Sprintf("defaulted %s to %q in %d row(s)", field, value, count),
			})
		}
	}

	for _, field := range required {
		fill(field, DefaultUnknown)
	}
	for _, field := range optional {
		fill(field, "")
	}
	return notes
}

// ============================================================================
// Step 5: duplicates
// ============================================================================

// Deduplicate keeps the first row per identity value when the identity column
// exists, otherwise the first of each group of fully equal rows.
func Deduplicate(t Table, identity string, stats *Stats) (Table, []Note) {
	var notes []Note
	kept := t.Rows[:0:0]
	origins := make([]int, 0, len(t.Rows))

	if t.HasColumn(identity) {
		seen := make(map[string]int)
		for i, row := range t.Rows {
			key := cellString(row[identity])
			if first, dup := seen[key]; dup {
				stats.DuplicatesDropped++
				notes = append(notes, Note{
					Stage: StageClean,
					Message: fmt.Sprintf("row %d dropped: duplicate %s %q (first seen in row %d)",
						t.RowNumber(i), identity, key, first),
				})
				continue
			}
			seen[key] = t.RowNumber(i)
			kept = append(kept, row)
			origins = append(origins, t.RowNumber(i))
		}
	} else {
		for i, row := range t.Rows {
			dup := false
			for _, k := range kept {
				if reflect.DeepEqual(k, row) {
					dup = true
					break
				}
			}
			if dup {
				stats.DuplicatesDropped++
				notes = append(notes, Note{
					Stage:   StageClean,
					Message: fmt.Sprintf("row %d dropped: identical to an earlier row", t.RowNumber(i)),
				})
				continue
			}
			kept = append(kept, row)
			origins = append(origins, t.RowNumber(i))
		}
	}

	t.Rows = kept
	t.Origins = origins
	return t, notes
}
