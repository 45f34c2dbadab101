package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names.
const (
	FieldID                       = "id"
	FieldSrNo                     = "sr_no"
	FieldScientificName           = "scientific_name"
	FieldCommonName               = "common_name"
	FieldLeafType                 = "leaf_type"
	FieldFruitType                = "fruit_type"
	FieldLanguage                 = "language"
	FieldEtymology                = "etymology"
	FieldHabitat                  = "habitat"
	FieldPhenology                = "phenology"
	FieldIdentificationCharacters = "identification_characters"
	FieldSeedGermination          = "seed_germination"
	FieldPest                     = "pest"
	FieldImageURLs                = "image_urls"
	FieldVideos                   = "videos"
)

// Row is one record keyed by column name.
// Cell values are nil (null), string, int, float64, bool, []any or map[string]any.
type Row map[string]any

// Table is an ordered, column-named batch of rows.
type Table struct {
	Columns []string
	Rows    []Row

	// Origins holds the 1-based input row number of each row once rows have
	// been dropped. Nil means rows are still in input order.
	Origins []int
}

// RowNumber returns the input row number of the i-th row.
func (t *Table) RowNumber(i int) int {
	if len(t.Origins) == len(t.Rows) && i < len(t.Origins) {
		return t.Origins[i]
	}
	return i + 1
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the column list if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Clone returns a deep copy of the table's column list and row maps.
// Cell values are shared; stages replace cells rather than mutating them.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	if t.Origins != nil {
		out.Origins = append([]int(nil), t.Origins...)
	}
	for i, r := range t.Rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// IsNull reports whether v is a null cell.
func IsNull(v any) bool {
	return v == nil
}

// String returns the cell as text. Null becomes "".
func (r Row) String(name string) string {
	return cellString(r[name])
}

// Int returns the cell as an int when it holds an integral value.
func (r Row) Int(name string) (int, bool) {
	switch v := r[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Identity returns a short label for messages: the scientific name when known.
func (r Row) Identity() string {
	if name := strings.TrimSpace(r.String(FieldScientificName)); name != "" {
		return name
	}
	return "<unnamed>"
}

// cellString stringifies a cell the way the audit report and empty-row check see it.
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	case []any, map[string]any:
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c)
		}
		return string(b)
	default:
		return fmt.Sprint(c)
	}
}

// Record is one cleaned row paired with the batch's column order.
// It marshals to a JSON object whose keys follow that order.
type Record struct {
	Columns []string
	Values  Row
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalLiteral(col)
		if err != nil {
			return nil, err
		}
		val, err := marshalLiteral(r.Values[col])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalLiteral is json.Marshal without HTML escaping: the caller's
// encoder settings do not reach values produced by a Marshaler.
func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Records pairs every row of t with its column order.
func Records(t Table) []Record {
	out := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = Record{Columns: t.Columns, Values: row}
	}
	return out
}

// MediaStatus is the availability tag of a media item.
type MediaStatus string

const (
	StatusAvailable MediaStatus = "Available"
	StatusMissing   MediaStatus = "Missing"
)

// MediaItem is one image or video reference attached to a species.
type MediaItem struct {
	Type   string      `json:"type"`
	File   string      `json:"file"`
	Status MediaStatus `json:"status"`

	// HasFile is false when the source element had no file key or a null file.
	HasFile bool `json:"-"`
}

// fileSentinels are placeholder values meaning "no file provided".
var fileSentinels = map[string]bool{"": true, "-": true}

// IsSentinelFile reports whether file is a "no file" placeholder. Only the
// exact values count; whitespace is an (unusual) file name.
func IsSentinelFile(file string) bool {
	return fileSentinels[file]
}

// HasRealFile reports whether the item points at an actual file.
func (m MediaItem) HasRealFile() bool {
	return m.HasFile && !IsSentinelFile(m.File)
}

// ParseMediaItem reads a media list element. Only structured elements are
// media items; literal fallbacks from unparseable cells return false.
func ParseMediaItem(v any) (MediaItem, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return MediaItem{}, false
	}

	item := MediaItem{
		Type:   cellString(obj["type"]),
		Status: MediaStatus(cellString(obj["status"])),
	}
	if f, ok := obj["file"]; ok && f != nil {
		item.File = cellString(f)
		item.HasFile = true
	}
	return item, true
}

// Species is a typed view of a cleaned row.
type Species struct {
	ID                       string
	SrNo                     int
	ScientificName           string
	CommonName               string
	LeafType                 string
	FruitType                string
	Language                 string
	Etymology                string
	Habitat                  string
	Phenology                string
	IdentificationCharacters string
	SeedGermination          string
	Pest                     string
	Images                   []MediaItem
	Videos                   []MediaItem
}

// Species builds the typed view of r. Non-structured media elements are skipped.
func (r Row) Species() Species {
	srNo, _ := r.Int(FieldSrNo)
	return Species{
		ID:                       r.String(FieldID),
		SrNo:                     srNo,
		ScientificName:           r.String(FieldScientificName),
		CommonName:               r.String(FieldCommonName),
		LeafType:                 r.String(FieldLeafType),
		FruitType:                r.String(FieldFruitType),
		Language:                 r.String(FieldLanguage),
		Etymology:                r.String(FieldEtymology),
		Habitat:                  r.String(FieldHabitat),
		Phenology:                r.String(FieldPhenology),
		IdentificationCharacters: r.String(FieldIdentificationCharacters),
		SeedGermination:          r.String(FieldSeedGermination),
		Pest:                     r.String(FieldPest),
		Images:                   mediaItems(r[FieldImageURLs]),
		Videos:                   mediaItems(r[FieldVideos]),
	}
}

func mediaItems(v any) []MediaItem {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var items []MediaItem
	for _, el := range list {
		if item, ok := ParseMediaItem(el); ok {
			items = append(items, item)
		}
	}
	return items
}
