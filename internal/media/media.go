// Package media associates raw media files with cleaned species records.
//
// Records are indexed by a normalized form of their scientific name. A file
// matches a record when that normalized name appears inside the file's own
// normalized name, so "ficus_benghalensis-take2.MP4" matches
// "Ficus benghalensis". Matched files are given a canonical output name built
// from the record's sr_no and scientific name.
package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CleanedExt is the extension given to cleaned video files.
const CleanedExt = ".mp4"

var videoExts = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

// IsVideoFile reports whether name has a recognised video extension.
func IsVideoFile(name string) bool {
	return videoExts[strings.ToLower(filepath.Ext(name))]
}

var separators = strings.NewReplacer("_", " ", "-", " ", ".", " ")

// NormalizeName lowercases s, turns '_', '-' and '.' into spaces and
// collapses runs of whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(separators.Replace(strings.ToLower(s))), " ")
}

// CleanedFileName returns "<sr_no>_<Scientific_Name>_cleaned<ext>".
func CleanedFileName(srNo int, scientificName, ext string) string {
	name := strings.ReplaceAll(strings.TrimSpace(scientificName), " ", "_")
	return fmt.Sprintf("%d_%s_cleaned%s", srNo, name, ext)
}

// Entry is the part of a cleaned record media matching needs.
type Entry struct {
	SrNo           int    `json:"sr_no"`
	ScientificName string `json:"scientific_name"`
}

// LoadEntries reads the cleaned_data array of a structured result.
// Records without a scientific name are skipped.
func LoadEntries(r io.Reader) ([]Entry, error) {
	var doc struct {
		Status      string            `json:"status"`
		CleanedData []json.RawMessage `json:"cleaned_data"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	entries := make([]Entry, 0, len(doc.CleanedData))
	for i, raw := range doc.CleanedData {
		var rec struct {
			SrNo           json.Number `json:"sr_no"`
			ScientificName *string     `json:"scientific_name"`
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if rec.ScientificName == nil || strings.TrimSpace(*rec.ScientificName) == "" {
			continue
		}
		n, err := rec.SrNo.Float64()
		if err != nil {
			return nil, fmt.Errorf("record %d: sr_no %q: %w", i+1, rec.SrNo, err)
		}
		entries = append(entries, Entry{SrNo: int(n), ScientificName: *rec.ScientificName})
	}
	return entries, nil
}

// LoadEntriesFile reads entries from a structured result file.
func LoadEntriesFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadEntries(f)
}

// Index looks up records by normalized scientific name.
type Index struct {
	byKey map[string]Entry
	keys  []string // longest first
}

// NewIndex builds an index. When two records normalize to the same key the
// later one wins.
func NewIndex(entries []Entry) *Index {
	idx := &Index{byKey: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		key := NormalizeName(e.ScientificName)
		if key == "" {
			continue
		}
		idx.byKey[key] = e
	}

	idx.keys = make([]string, 0, len(idx.byKey))
	for k := range idx.byKey {
		idx.keys = append(idx.keys, k)
	}
	sort.Slice(idx.keys, func(i, j int) bool {
		if len(idx.keys[i]) != len(idx.keys[j]) {
			return len(idx.keys[i]) > len(idx.keys[j])
		}
		return idx.keys[i] < idx.keys[j]
	})
	return idx
}

// Len returns the number of indexed names.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Match returns the record whose normalized name occurs in fileName.
// The longest such name wins, so "ficus religiosa var x" beats "ficus".
func (idx *Index) Match(fileName string) (Entry, bool) {
	name := NormalizeName(fileName)
	for _, key := range idx.keys {
		if strings.Contains(name, key) {
			return idx.byKey[key], true
		}
	}
	return Entry{}, false
}

// Assignment is a matched media file and the name it should be written as.
type Assignment struct {
	File           string `json:"file"`
	Entry          Entry  `json:"entry"`
	Target         string `json:"target"`
	AlreadyCleaned bool   `json:"already_cleaned"`
}

// Plan is the outcome of matching a set of files.
type Plan struct {
	Assignments []Assignment `json:"assignments"`
	Unmatched   []string     `json:"unmatched"`
	Skipped     []string     `json:"skipped"` // not video files
}

// Plan matches fileNames against the index. exists reports whether a target
// name is already present in the output location; nil means nothing is.
// Files are processed in sorted order.
func (idx *Index) Plan(fileNames []string, exists func(target string) bool) Plan {
	names := append([]string(nil), fileNames...)
	sort.Strings(names)

	p := Plan{Assignments: []Assignment{}, Unmatched: []string{}, Skipped: []string{}}
	for _, name := range names {
		if !IsVideoFile(name) {
			p.Skipped = append(p.Skipped, name)
			continue
		}
		entry, ok := idx.Match(name)
		if !ok {
			p.Unmatched = append(p.Unmatched, name)
			continue
		}
		target := CleanedFileName(entry.SrNo, entry.ScientificName, CleanedExt)
		p.Assignments = append(p.Assignments, Assignment{
			File:           name,
			Entry:          entry,
			Target:         target,
			AlreadyCleaned: exists != nil && exists(target),
		})
	}
	return p
}

// PlanDir plans every regular file in inputDir, treating targets already in
// outputDir as cleaned.
func (idx *Index) PlanDir(inputDir, outputDir string) (Plan, error) {
	dirEntries, err := os.ReadDir(inputDir)
	if err != nil {
		return Plan{}, fmt.Errorf("read media directory: %w", err)
	}

	var names []string
	for _, de := range dirEntries {
		if de.Type().IsRegular() {
			names = append(names, de.Name())
		}
	}

	exists := func(target string) bool {
		_, err := os.Stat(filepath.Join(outputDir, target))
		return !errors.Is(err, os.ErrNotExist)
	}
	return idx.Plan(names, exists), nil
}
