package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/florasheet/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestErrorAlert(t *testing.T) {
	out := render(t, ErrorAlert("Bad <file>", "", "FILE003"))

	assert.Contains(t, out, `<p class="alert-message">Bad &lt;file&gt;</p>`)
	assert.Contains(t, out, "<small>Code: FILE003</small>")
	assert.NotContains(t, out, "alert-action")

	out = render(t, ErrorAlert("Bad file", "Upload a CSV", "FILE003"))
	assert.Contains(t, out, `<p class="alert-action">Upload a CSV</p>`)
}

func TestAuditPage_Fail(t *testing.T) {
	out := render(t, AuditPage(AuditPageParams{
		RunID:     "run-1",
		InputFile: "species.csv",
		Status:    core.StatusFail,
		Errors:    []string{"record 1 (A a): sr_no: must be >= 1000", "record 2 (B & b): id: is required"},
		Report:    "AUDIT REPORT",
	}))

	assert.Contains(t, out, "<title>Audit: species.csv</title>")
	assert.Contains(t, out, "Status: FAIL")
	assert.Contains(t, out, "Validation errors (2)")
	assert.Contains(t, out, "<li>record 2 (B &amp; b): id: is required</li>")
	assert.NotContains(t, out, `<table class="species">`)
	assert.Contains(t, out, `<pre class="report">AUDIT REPORT</pre>`)
}

func TestAuditPage_PassListsSpecies(t *testing.T) {
	row := core.Row{
		core.FieldSrNo:           1042,
		core.FieldScientificName: "Ficus benghalensis",
		core.FieldCommonName:     "Banyan",
		core.FieldImageURLs: []any{
			map[string]any{"type": "image", "file": "ficus.jpg", "status": "Available"},
			"literal fallback",
		},
		core.FieldVideos: []any{},
	}

	out := render(t, AuditPage(AuditPageParams{
		RunID:     "run-2",
		InputFile: "species.csv",
		Status:    core.StatusPass,
		Species:   []core.Species{row.Species()},
	}))

	assert.Contains(t, out, "Status: PASS")
	assert.Contains(t, out, "1 records passed validation.")
	assert.Contains(t, out, "<tr><td>1042</td><td>Ficus benghalensis</td><td>Banyan</td><td>1</td><td>0</td></tr>")
	assert.NotContains(t, out, `<ul class="errors">`)
}

func TestSpeciesTable_Empty(t *testing.T) {
	out := render(t, SpeciesTable(nil))

	assert.Equal(t, "<p>0 records passed validation.</p>", out)
}
