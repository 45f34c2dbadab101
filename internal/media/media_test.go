package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Ficus benghalensis":           "ficus benghalensis",
		"ficus_benghalensis-take2.MP4": "ficus benghalensis take2 mp4",
		"  Azadirachta   indica ":      "azadirachta indica",
		"Ficus_religiosa__var.__x":     "ficus religiosa var x",
		"":                             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("a.mp4"))
	assert.True(t, IsVideoFile("A.MOV"))
	assert.True(t, IsVideoFile("clip.avi"))
	assert.True(t, IsVideoFile("clip.mkv"))
	assert.False(t, IsVideoFile("leaf.jpg"))
	assert.False(t, IsVideoFile("mp4"))
}

func TestCleanedFileName(t *testing.T) {
	assert.Equal(t, "1001_Ficus_benghalensis_cleaned.mp4", CleanedFileName(1001, "Ficus benghalensis", CleanedExt))
	assert.Equal(t, "7_Ficus_cleaned.mov", CleanedFileName(7, " Ficus ", ".mov"))
}

func TestLoadEntries(t *testing.T) {
	doc := `{
	  "status": "pass",
	  "errors": [],
	  "cleaned_data": [
	    {"sr_no": 1001, "scientific_name": "Ficus benghalensis", "id": "a"},
	    {"sr_no": 1002.0, "scientific_name": ""},
	    {"sr_no": 1003, "scientific_name": null},
	    {"sr_no": 1004, "scientific_name": "Azadirachta indica"}
	  ]
	}`

	entries, err := LoadEntries(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{SrNo: 1001, ScientificName: "Ficus benghalensis"},
		{SrNo: 1004, ScientificName: "Azadirachta indica"},
	}, entries)
}

func TestLoadEntries_FailedResult(t *testing.T) {
	entries, err := LoadEntries(strings.NewReader(`{"status":"fail","errors":["x"],"cleaned_data":[]}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadEntries_Malformed(t *testing.T) {
	_, err := LoadEntries(strings.NewReader(`{"cleaned_data": [`))
	assert.Error(t, err)

	_, err = LoadEntries(strings.NewReader(`{"cleaned_data": [{"sr_no": "abc", "scientific_name": "X"}]}`))
	assert.Error(t, err)
}

func TestIndex_Match(t *testing.T) {
	idx := NewIndex([]Entry{
		{SrNo: 1, ScientificName: "Ficus"},
		{SrNo: 2, ScientificName: "Ficus religiosa"},
		{SrNo: 3, ScientificName: "Azadirachta indica"},
		{SrNo: 4, ScientificName: "  "},
	})
	assert.Equal(t, 3, idx.Len())

	e, ok := idx.Match("FICUS_RELIGIOSA-clip1.mp4")
	require.True(t, ok)
	assert.Equal(t, 2, e.SrNo, "longest name wins")

	e, ok = idx.Match("ficus-sp.mov")
	require.True(t, ok)
	assert.Equal(t, 1, e.SrNo)

	_, ok = idx.Match("mangifera_indica.mp4")
	assert.False(t, ok)
}

func TestNewIndex_LaterDuplicateWins(t *testing.T) {
	idx := NewIndex([]Entry{
		{SrNo: 1, ScientificName: "Ficus benghalensis"},
		{SrNo: 2, ScientificName: "ficus_benghalensis"},
	})
	e, ok := idx.Match("ficus benghalensis.mp4")
	require.True(t, ok)
	assert.Equal(t, 2, e.SrNo)
}

func TestIndex_Plan(t *testing.T) {
	idx := NewIndex([]Entry{{SrNo: 1001, ScientificName: "Ficus benghalensis"}})
	files := []string{"notes.txt", "unknown.mp4", "ficus_benghalensis_01.MOV", "ficus-benghalensis-02.mp4"}
	done := map[string]bool{"1001_Ficus_benghalensis_cleaned.mp4": true}

	p := idx.Plan(files, func(target string) bool { return done[target] })

	assert.Equal(t, []string{"notes.txt"}, p.Skipped)
	assert.Equal(t, []string{"unknown.mp4"}, p.Unmatched)
	require.Len(t, p.Assignments, 2)
	assert.Equal(t, "ficus-benghalensis-02.mp4", p.Assignments[0].File)
	assert.Equal(t, "1001_Ficus_benghalensis_cleaned.mp4", p.Assignments[0].Target)
	assert.True(t, p.Assignments[0].AlreadyCleaned)

	assert.Equal(t, files[0], "notes.txt", "input slice must not be reordered")
}

func TestIndex_PlanDir(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	for _, name := range []string{"ficus_benghalensis.mp4", "other.mp4"} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(in, "sub.mp4"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "1001_Ficus_benghalensis_cleaned.mp4"), nil, 0o644))

	idx := NewIndex([]Entry{{SrNo: 1001, ScientificName: "Ficus benghalensis"}})
	p, err := idx.PlanDir(in, out)
	require.NoError(t, err)

	require.Len(t, p.Assignments, 1)
	assert.True(t, p.Assignments[0].AlreadyCleaned)
	assert.Equal(t, []string{"other.mp4"}, p.Unmatched)

	_, err = idx.PlanDir(filepath.Join(in, "missing"), out)
	assert.Error(t, err)
}
