package timeline

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
)

// ChartRenderer draws a bar histogram sized to Width x Height cells.
type ChartRenderer struct{}

func (ChartRenderer) Name() string { return "chart" }

// chrome is the number of rows used by title, x axis, ticks and label.
const chrome = 4

var ticks = []float64{0, 0.25, 0.5, 0.75, 1}

func (ChartRenderer) Render(w io.Writer, d Data) error {
	counts := Histogram(d.Values, d.Bins)
	peak := maxInt(counts)

	yLabelWidth := len(strconv.Itoa(peak))
	if yLabelWidth < len("files") {
		yLabelWidth = len("files")
	}
	gutter := yLabelWidth + 2 // label, space, axis

	plotWidth := d.Width - gutter
	if plotWidth < d.Bins {
		plotWidth = d.Bins
	}
	colWidth := plotWidth / d.Bins
	plotWidth = colWidth * d.Bins

	plotHeight := d.Height - chrome
	if plotHeight < 1 {
		plotHeight = 1
	}

	heights := make([]int, len(counts))
	for i, c := range counts {
		if peak > 0 {
			heights[i] = int(math.Round(float64(c) / float64(peak) * float64(plotHeight)))
			if c > 0 && heights[i] == 0 {
				heights[i] = 1
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("File mtime timeline (%d files)", len(d.Values))))
	sb.WriteString("\n")

	for row := plotHeight; row >= 1; row-- {
		label := ""
		switch row {
		case plotHeight:
			label = strconv.Itoa(peak)
		case 1:
			label = "files"
		}
		sb.WriteString(axisStyle.Render(fmt.Sprintf("%*s │", yLabelWidth, label)))
		var line strings.Builder
		for _, h := range heights {
			if h >= row {
				line.WriteString(strings.Repeat("█", colWidth))
			} else {
				line.WriteString(strings.Repeat(" ", colWidth))
			}
		}
		sb.WriteString(barStyle.Render(line.String()))
		sb.WriteString("\n")
	}

	sb.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelWidth) + " └" + strings.Repeat("─", plotWidth)))
	sb.WriteString("\n")
	sb.WriteString(axisStyle.Render(strings.Repeat(" ", gutter) + tickLine(plotWidth)))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render(fmt.Sprintf("%s oldest %s -> newest %s", strings.Repeat(" ", gutter), d.MinLabel(), d.MaxLabel())))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// tickLine places the tick labels along a width-cell axis.
func tickLine(width int) string {
	cells := []rune(strings.Repeat(" ", width+4))
	for _, tv := range ticks {
		label := strconv.FormatFloat(tv, 'f', -1, 64)
		if !strings.Contains(label, ".") {
			label += ".0"
		}
		pos := int(math.Round(tv * float64(width-1)))
		if pos+len(label) > len(cells) {
			pos = len(cells) - len(label)
		}
		for i, r := range label {
			cells[pos+i] = r
		}
	}
	return strings.TrimRight(string(cells), " ")
}
