package core

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

var reportTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func render(t *testing.T, in AuditInput) string {
	t.Helper()
	var buf bytes.Buffer
	if err := RenderAudit(&buf, in); err != nil {
		t.Fatalf("RenderAudit: %v", err)
	}
	return buf.String()
}

func errorLines(report string) int {
	n := 0
	for _, line := range strings.Split(report, "\n") {
		if strings.HasPrefix(line, "- ") {
			n++
		}
	}
	return n
}

func TestRenderAudit_Header(t *testing.T) {
	out := render(t, AuditInput{Timestamp: reportTime, InputFile: "species.csv"})

	wantPrefix := "AUDIT REPORT\n" + ruleHeavy + "\n\n" +
		"Timestamp: 2025-03-14T09:26:53Z\n" +
		"Input File: species.csv\n" +
		"Number of Error Rows: 0\n\n"
	if !strings.HasPrefix(out, wantPrefix) {
		t.Errorf("header mismatch:\n%s", out)
	}
}

func TestRenderAudit_Pass(t *testing.T) {
	records := []Record{
		{Columns: []string{"sr_no", "scientific_name"}, Values: Row{"sr_no": 1001, "scientific_name": "Ficus benghalensis"}},
		{Columns: []string{"sr_no", "scientific_name"}, Values: Row{"sr_no": 1002, "scientific_name": "Azadirachta indica"}},
	}

	out := render(t, AuditInput{Timestamp: reportTime, InputFile: "species.csv", Records: records})

	for _, want := range []string{
		"STATUS: PASS",
		"No validation errors found.",
		"Cleaned Records (Total: 2):",
		"Record #1:",
		"Record #2:",
		`"scientific_name": "Ficus benghalensis"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Ficus") > strings.Index(out, "Azadirachta") {
		t.Error("records not in input order")
	}
	if strings.Contains(out, "STATUS: FAIL") {
		t.Error("pass report contains FAIL section")
	}
	if errorLines(out) != 0 {
		t.Errorf("pass report has %d error lines", errorLines(out))
	}
}

func TestRenderAudit_PassWithoutRecords(t *testing.T) {
	out := render(t, AuditInput{Timestamp: reportTime, InputFile: "empty.csv"})

	if !strings.Contains(out, "(No cleaned records to display)") {
		t.Errorf("report:\n%s", out)
	}
}

func TestRenderAudit_Fail(t *testing.T) {
	errs := []string{
		`record 1 (Ficus benghalensis): image_urls[0]: leaf: status is "Available" but file is "-"`,
		"record 2 (Azadirachta indica): leaf_type: value \"x\" must be one of: Simple",
	}

	out := render(t, AuditInput{
		Timestamp: reportTime,
		InputFile: "species.csv",
		ErrorRows: len(errs),
		Errors:    errs,
	})

	if !strings.Contains(out, "STATUS: FAIL\n\nValidation Errors:\n") {
		t.Errorf("missing FAIL section:\n%s", out)
	}
	if strings.Contains(out, "Record #") {
		t.Error("fail report lists records")
	}
	first := strings.Index(out, "- "+errs[0])
	second := strings.Index(out, "- "+errs[1])
	if first < 0 || second < 0 || first > second {
		t.Errorf("errors missing or out of order:\n%s", out)
	}
}

func TestRenderAudit_ErrorLinesMatchHeader(t *testing.T) {
	errs := []string{"a", "b\nsecond line", "c"}
	notes := []Note{
		{Stage: StageClean, Message: "dropped 2 empty row(s)"},
		{Stage: StageClean, Message: "- looks like an error line"},
	}

	out := render(t, AuditInput{
		Timestamp: reportTime,
		InputFile: "x.csv",
		ErrorRows: len(errs),
		Errors:    errs,
		Notes:     notes,
	})

	if got := errorLines(out); got != len(errs) {
		t.Errorf("error lines = %d, want %d:\n%s", got, len(errs), out)
	}
	if !strings.Contains(out, "Number of Error Rows: 3") {
		t.Error("header count missing")
	}
}

func TestRenderAudit_Notes(t *testing.T) {
	out := render(t, AuditInput{
		Timestamp: reportTime,
		Notes:     []Note{{Stage: StageClean, Message: "dropped 1 empty row(s)"}},
	})

	if !strings.Contains(out, "Cleaning Summary:") || !strings.Contains(out, "* [clean] dropped 1 empty row(s)") {
		t.Errorf("notes section missing:\n%s", out)
	}
}

func TestRenderAudit_Deterministic(t *testing.T) {
	in := AuditInput{
		Timestamp: reportTime,
		InputFile: "species.csv",
		Records: []Record{{
			Columns: []string{"b", "a"},
			Values:  Row{"a": 1, "b": []any{map[string]any{"z": 1, "y": 2}}},
		}},
	}

	if render(t, in) != render(t, in) {
		t.Error("two renders differ")
	}
}

func TestRenderAudit_PassKeepsTextLiteral(t *testing.T) {
	records := []Record{{
		Columns: []string{"scientific_name", "common_name"},
		Values:  Row{"scientific_name": "Ficus benghalensis", "common_name": "Bargad <वट> & Banyan"},
	}}

	out := render(t, AuditInput{Timestamp: reportTime, InputFile: "species.csv", Records: records})

	if !strings.Contains(out, `"common_name": "Bargad <वट> & Banyan"`) {
		t.Errorf("record text was escaped:\n%s", out)
	}
	if !strings.Contains(out, "Record #1:\n{\n  \"scientific_name\"") {
		t.Errorf("record not indented under its heading:\n%s", out)
	}
}
