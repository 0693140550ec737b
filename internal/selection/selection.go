// Package selection turns a chosen batch into the ordered list of files
// handed to the output commands.
package selection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/relapse/internal/batch"
	"github.com/fakeyudi/relapse/internal/scan"
)

var (
	// ErrInvalidInput is shared with the batch package so callers can test
	// a single sentinel.
	ErrInvalidInput = batch.ErrInvalidInput

	// ErrRootNotFound is returned when the scan root does not exist.
	ErrRootNotFound = errors.New("root does not exist")
)

// SelectedFile is one file of a selection.
type SelectedFile struct {
	Absolute string
	Relative string
}

// Selection is the resolved output of one invocation.
type Selection struct {
	Batch batch.Batch
	Files []SelectedFile // sorted by Relative
}

// Empty reports whether there is nothing to act on.
func (s *Selection) Empty() bool { return s == nil || len(s.Files) == 0 }

// Relative returns path relative to root, or false when it lies outside root.
func Relative(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// Filter applies keep to the members of b, deduplicates by relative path
// and sorts the result.
func Filter(root string, b batch.Batch, keep func(rel string) bool) Selection {
	selected := make(map[string]SelectedFile, len(b.Members))
	for _, m := range b.Members {
		rel, ok := Relative(root, m.Path)
		if !ok {
			continue
		}
		if keep != nil && !keep(rel) {
			continue
		}
		selected[rel] = SelectedFile{Absolute: m.Path, Relative: rel}
	}

	keys := make([]string, 0, len(selected))
	for k := range selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	files := make([]SelectedFile, len(keys))
	for i, k := range keys {
		files[i] = selected[k]
	}
	return Selection{Batch: b, Files: files}
}

// ResolveRoot makes root absolute, resolves symlinks and checks that it exists.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRootNotFound, abs)
		}
		return "", fmt.Errorf("checking root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	return resolved, nil
}

// Request describes one scan–batch–select–filter run.
type Request struct {
	Root           string
	MaxGap         time.Duration
	Selector       batch.Selector
	Category       Category
	IgnorePatterns []string
	Log            *zerolog.Logger
}

// Resolve runs the full pipeline. It returns a nil Selection and nil error
// when the root holds no files.
func Resolve(req Request) (*Selection, error) {
	if err := req.Selector.Validate(); err != nil {
		return nil, err
	}
	root, err := ResolveRoot(req.Root)
	if err != nil {
		return nil, err
	}

	scanner := scan.Scanner{IgnorePatterns: req.IgnorePatterns, Log: req.Log}
	entries, err := scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	batches := batch.Build(entries, req.MaxGap)
	chosen, err := req.Selector.Select(batches)
	if err != nil {
		return nil, err
	}
	if chosen == nil {
		return nil, nil
	}
	if req.Log != nil {
		req.Log.Debug().
			Int("batches", len(batches)).
			Int("members", chosen.Len()).
			Time("min", chosen.Min).
			Time("max", chosen.Max).
			Msg("batch selected")
	}

	sel := Filter(root, *chosen, Keep(DocsClassifier(root), req.Category))
	return &sel, nil
}

// Records returns every scanned file under root that passes the category
// filter, with its relative path and modification time. It backs commands
// that look at raw timestamps rather than batches.
func Records(root string, category Category, ignore []string, log *zerolog.Logger) ([]Record, error) {
	resolved, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	scanner := scan.Scanner{IgnorePatterns: ignore, Log: log}
	entries, err := scanner.Scan(resolved)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", resolved, err)
	}

	keep := Keep(DocsClassifier(resolved), category)
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		rel, ok := Relative(resolved, e.Path)
		if !ok || !keep(rel) {
			continue
		}
		records = append(records, Record{Absolute: e.Path, Relative: rel, ModTime: e.ModTime})
	}
	return records, nil
}

// Record is a filtered scan entry.
type Record struct {
	Absolute string
	Relative string
	ModTime  time.Time
}

// ResolveAll runs the pipeline for every batch at once, most recent first,
// with each batch's files filtered. The selector is ignored.
func ResolveAll(req Request) ([]Selection, error) {
	root, err := ResolveRoot(req.Root)
	if err != nil {
		return nil, err
	}
	scanner := scan.Scanner{IgnorePatterns: req.IgnorePatterns, Log: req.Log}
	entries, err := scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	keep := Keep(DocsClassifier(root), req.Category)
	batches := batch.Build(entries, req.MaxGap)
	out := make([]Selection, len(batches))
	for i, b := range batches {
		out[i] = Filter(root, b, keep)
	}
	return out, nil
}
