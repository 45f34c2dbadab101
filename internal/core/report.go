package core

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	reportTitle = "AUDIT REPORT"
	ruleHeavy   = "============================================================"
	ruleLight   = "------------------------------------------------------------"
)

// AuditInput is everything the audit report shows.
// Records is nil or empty for a failed run.
type AuditInput struct {
	Timestamp time.Time
	InputFile string
	ErrorRows int
	Errors    []string
	Records   []Record
	Notes     []Note
}

// RenderAudit writes the text audit report. It makes no decisions: the
// status comes from whether Errors is empty.
//
// Error lines, and only error lines, begin with "- ".
func RenderAudit(w io.Writer, in AuditInput) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, reportTitle)
	fmt.Fprintln(bw, ruleHeavy)
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Timestamp: %s\n", in.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(bw, "Input File: %s\n", oneLine(in.InputFile))
	fmt.Fprintf(bw, "Number of Error Rows: %d\n", in.ErrorRows)
	fmt.Fprintln(bw)

	if len(in.Errors) == 0 {
		if err := renderPass(bw, in.Records); err != nil {
			return err
		}
	} else {
		renderFail(bw, in.Errors)
	}

	if len(in.Notes) > 0 {
		fmt.Fprintln(bw, "Cleaning Summary:")
		fmt.Fprintln(bw, ruleLight)
		for _, n := range in.Notes {
			fmt.Fprintf(bw, "* %s\n", oneLine(n.String()))
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func renderPass(w io.Writer, records []Record) error {
	fmt.Fprintln(w, "STATUS: PASS")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "No validation errors found.")
	fmt.Fprintln(w)

	if len(records) == 0 {
		fmt.Fprintln(w, "(No cleaned records to display)")
		fmt.Fprintln(w)
		return nil
	}

	fmt.Fprintf(w, "Cleaned Records (Total: %d):\n", len(records))
	fmt.Fprintln(w, ruleLight)
	fmt.Fprintln(w)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	for i, rec := range records {
		fmt.Fprintf(w, "Record #%d:\n", i+1)
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("render record %d: %w", i+1, err)
		}
		fmt.Fprintln(w, ruleLight)
		fmt.Fprintln(w)
	}
	return nil
}

func renderFail(w io.Writer, errs []string) {
	fmt.Fprintln(w, "STATUS: FAIL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Validation Errors:")
	fmt.Fprintln(w, ruleLight)
	fmt.Fprintln(w)
	for _, e := range errs {
		fmt.Fprintf(w, "- %s\n", oneLine(e))
	}
	fmt.Fprintln(w)
}

// oneLine keeps free text from breaking the report's line structure.
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
