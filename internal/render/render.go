// Package render formats a selection for the print command.
package render

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/relapse/internal/selection"
)

// Format names how each path is printed.
type Format string

const (
	FormatRelative Format = "relative"
	FormatAbsolute Format = "absolute"
	FormatName     Format = "name"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatRelative, FormatAbsolute, FormatName:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: invalid format %q (choose from relative, absolute, name)", selection.ErrInvalidInput, s)
}

// Path returns f in the requested format.
func Path(f selection.SelectedFile, format Format) string {
	switch format {
	case FormatAbsolute:
		return f.Absolute
	case FormatName:
		return filepath.Base(f.Absolute)
	default:
		return f.Relative
	}
}

// Renderer serializes a selection to bytes.
type Renderer interface {
	Render(sel *selection.Selection) ([]byte, error)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// PathRenderer prints one path per line, optionally preceded by a header
// describing the batch window.
type PathRenderer struct {
	Format Format
	Pretty bool
	Now    func() time.Time // defaults to time.Now
}

func (r *PathRenderer) Render(sel *selection.Selection) ([]byte, error) {
	if sel == nil {
		return nil, nil
	}
	var sb strings.Builder
	if r.Pretty {
		now := time.Now()
		if r.Now != nil {
			now = r.Now()
		}
		header := fmt.Sprintf("Batch: %s (%d files)", Window(sel.Batch.Min, sel.Batch.Max, now), len(sel.Files))
		sb.WriteString(headerStyle.Render(header))
		sb.WriteString("\n")
	}
	for _, f := range sel.Files {
		sb.WriteString(Path(f, r.Format))
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

// JSONRenderer renders a selection as indented JSON.
type JSONRenderer struct{}

type jsonSelection struct {
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
	Count int        `json:"count"`
	Files []jsonFile `json:"files"`
}

type jsonFile struct {
	Path     string `json:"path"`
	Relative string `json:"relative"`
}

func (r *JSONRenderer) Render(sel *selection.Selection) ([]byte, error) {
	if sel == nil {
		return nil, nil
	}
	out := jsonSelection{
		Start: sel.Batch.Min,
		End:   sel.Batch.Max,
		Count: len(sel.Files),
		Files: make([]jsonFile, len(sel.Files)),
	}
	for i, f := range sel.Files {
		out.Files[i] = jsonFile{Path: f.Absolute, Relative: filepath.ToSlash(f.Relative)}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal selection: %w", err)
	}
	return append(data, '\n'), nil
}
