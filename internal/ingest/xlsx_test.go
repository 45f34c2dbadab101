package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestReadXLSX(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Sr No", "Scientific name", "Common name", "Height"},
		{1001, "Ficus benghalensis", "Banyan", 20.5},
		{1002, "Azadirachta indica", nil, 15},
	})

	tbl, err := ReadXLSX(buf)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}

	if len(tbl.Columns) != 4 || tbl.Columns[1] != "Scientific name" {
		t.Errorf("columns = %q", tbl.Columns)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0]["Sr No"] != 1001 {
		t.Errorf("Sr No = %#v, want int 1001", tbl.Rows[0]["Sr No"])
	}
	if tbl.Rows[0]["Height"] != 20.5 {
		t.Errorf("Height = %#v, want 20.5", tbl.Rows[0]["Height"])
	}
	if tbl.Rows[1]["Common name"] != nil {
		t.Errorf("Common name = %#v, want null", tbl.Rows[1]["Common name"])
	}
}

func TestReadXLSX_SkipsLeadingBlankRows(t *testing.T) {
	buf := workbook(t, [][]any{
		{},
		{"Scientific name"},
		{"Ficus benghalensis"},
	})

	tbl, err := ReadXLSX(buf)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(tbl.Columns) != 1 || tbl.Columns[0] != "Scientific name" {
		t.Errorf("columns = %q", tbl.Columns)
	}
	if len(tbl.Rows) != 1 {
		t.Errorf("rows = %v", tbl.Rows)
	}
}

func TestReadXLSX_Empty(t *testing.T) {
	_, err := ReadXLSX(workbook(t, nil))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("err = %v, want ErrEmptyFile", err)
	}
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("Scientific name\nFicus\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid spreadsheet") {
		t.Errorf("err = %v, want invalid spreadsheet", err)
	}
}

func TestRead_Dispatch(t *testing.T) {
	buf := workbook(t, [][]any{{"a"}, {"x"}})

	tbl, err := Read(buf, FormatXLSX)
	if err != nil || len(tbl.Rows) != 1 {
		t.Errorf("Read xlsx = %+v, %v", tbl, err)
	}

	if _, err := Read(strings.NewReader("a\n"), Format("ods")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
