package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/florasheet/internal/core"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	path := filepath.Join(dir, "audit_report.txt")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want second", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the target file, found %v", names)
	}
}

func TestWriteFileAtomic_DirectoryIsAFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "out")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(filepath.Join(blocker, "result.json"), []byte("{}"), 0o644); err == nil {
		t.Error("expected error when the directory path is a file")
	}
}

func TestEncodeResult(t *testing.T) {
	res := core.Result{
		Status: core.StatusPass,
		Errors: []string{},
		CleanedData: []core.Record{{
			Columns: []string{"scientific_name", "common_name"},
			Values:  core.Row{"scientific_name": "Ficus benghalensis", "common_name": "Bargad <वट>"},
		}},
	}

	data, err := EncodeResult(res)
	if err != nil {
		t.Fatalf("EncodeResult: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "\n  \"status\": \"pass\"") {
		t.Errorf("expected two-space indent:\n%s", text)
	}
	if !strings.Contains(text, "Bargad <वट>") {
		t.Errorf("expected literal non-ASCII and HTML characters:\n%s", text)
	}
	if strings.Index(text, "scientific_name") > strings.Index(text, "common_name") {
		t.Error("record keys out of column order")
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestWriter_WriteRun(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, "cleaned_species.json", "audit_report.txt")
	run := &core.Run{
		Result: core.Result{Status: core.StatusFail, Errors: []string{"record 1 (x): bad"}, CleanedData: []core.Record{}},
		Report: []byte("AUDIT REPORT\n"),
	}

	paths, err := w.WriteRun(run)
	if err != nil {
		t.Fatalf("WriteRun: %v", err)
	}

	if paths.Result != filepath.Join(dir, "cleaned_species.json") {
		t.Errorf("result path = %q", paths.Result)
	}
	body, err := os.ReadFile(paths.Result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"cleaned_data": []`) {
		t.Errorf("result = %s", body)
	}

	report, err := os.ReadFile(paths.Audit)
	if err != nil {
		t.Fatal(err)
	}
	if string(report) != "AUDIT REPORT\n" {
		t.Errorf("audit = %q", report)
	}
}
