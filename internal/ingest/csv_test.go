package ingest

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/JonMunkholm/florasheet/internal/core"
)

// ============================================================================
// Decoding
// ============================================================================

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte("caf\xe9,ok"),
			expected: "caf�,ok",
		},
		{
			name:     "valid multibyte kept",
			input:    []byte("Ficus benghalensis,Bargad – वट"),
			expected: "Ficus benghalensis,Bargad – वट",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(Decode(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestDecode_UTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.String("Scientific name\nFicus\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	result, err := io.ReadAll(Decode(strings.NewReader(encoded)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != "Scientific name\nFicus\n" {
		t.Errorf("got %q", string(result))
	}
}

// ============================================================================
// CSV
// ============================================================================

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFSr No,Scientific name,Common name,Height,image_urls\n" +
		"1001,Ficus benghalensis,Banyan,20.5,\"[{\"\"type\"\":\"\"leaf\"\",\"\"file\"\":\"\"\"\",\"\"status\"\":\"\"Missing\"\"}]\"\n" +
		"1002,Azadirachta indica,,15,\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	wantCols := []string{"Sr No", "Scientific name", "Common name", "Height", "image_urls"}
	if !reflect.DeepEqual(tbl.Columns, wantCols) {
		t.Errorf("columns = %q, want %q", tbl.Columns, wantCols)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}

	first := tbl.Rows[0]
	if first["Sr No"] != 1001 {
		t.Errorf("Sr No = %#v, want int 1001", first["Sr No"])
	}
	if first["Height"] != 20.5 {
		t.Errorf("Height = %#v, want float 20.5", first["Height"])
	}
	if first["image_urls"] != `[{"type":"leaf","file":"","status":"Missing"}]` {
		t.Errorf("image_urls = %#v", first["image_urls"])
	}

	second := tbl.Rows[1]
	if second["Height"] != 15.0 {
		t.Errorf("Height = %#v, want column widened to float", second["Height"])
	}
	if v, ok := second["Common name"]; !ok || v != nil {
		t.Errorf("Common name = %#v, want null", v)
	}
	if second["image_urls"] != nil {
		t.Errorf("image_urls = %#v, want null", second["image_urls"])
	}
}

func TestReadCSV_Types(t *testing.T) {
	input := "a,b,c,d,e\n" +
		"1,true,NA,x,0x10\n" +
		"2,FALSE,,y,1e3\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	row := tbl.Rows[0]
	checks := []struct {
		col  string
		want any
	}{
		{"a", 1},
		{"b", true},
		{"c", nil},
		{"d", "x"},
		{"e", "0x10"},
	}
	for _, c := range checks {
		if row[c.col] != c.want {
			t.Errorf("%s = %#v, want %#v", c.col, row[c.col], c.want)
		}
	}
	if tbl.Rows[1]["b"] != false {
		t.Errorf("b = %#v, want false", tbl.Rows[1]["b"])
	}
}

func TestReadCSV_ShortRowsPadded(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b,c\n1\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	row := tbl.Rows[0]
	if row["a"] != 1 || row["b"] != nil || row["c"] != nil {
		t.Errorf("row = %v", row)
	}
	if _, ok := row["c"]; !ok {
		t.Error("missing trailing cell should be present as null")
	}
}

func TestReadCSV_Headers(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("Habitat,,Habitat\nx,y,z\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := []string{"Habitat", "Unnamed: 1", "Habitat.1"}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("columns = %q, want %q", tbl.Columns, want)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{"empty", "", ErrEmptyFile, ""},
		{"only BOM", "\xEF\xBB\xBF", ErrEmptyFile, ""},
		{"too many fields", "a,b\n1,2,3\n", nil, "invalid csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

// ============================================================================
// Files
// ============================================================================

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"species.csv", FormatCSV, false},
		{"SPECIES.CSV", FormatCSV, false},
		{"species.xlsx", FormatXLSX, false},
		{"species.xls", "", true},
		{"SPECIES.XLS", "", true},
		{"species.json", "", true},
		{"species", "", true},
	}

	for _, tt := range tests {
		got, err := FormatFromName(tt.name)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("FormatFromName(%q) err = %v, want ErrUnsupportedFormat", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("FormatFromName(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "species.csv")
	if err := os.WriteFile(path, []byte("Scientific name\nFicus benghalensis\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0]["Scientific name"] != "Ficus benghalensis" {
		t.Errorf("table = %+v", tbl)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("err = %v, want ErrInputNotFound", err)
	}
	if core.MapError(err).Code != "FILE001" {
		t.Errorf("code = %q, want FILE001", core.MapError(err).Code)
	}

	_, err = ReadFile(filepath.Join(dir, "notes.txt"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
