package timeline

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// Capabilities describes what the output stream can display.
type Capabilities struct {
	Terminal bool
}

// Probe inspects f. Anything that is not an interactive terminal cannot
// show the chart.
func Probe(f *os.File) Capabilities {
	if f == nil {
		return Capabilities{}
	}
	return Capabilities{Terminal: term.IsTerminal(f.Fd())}
}

// Choose picks the chart when the output can display it and the caller
// did not ask for plain text. The reason is non-empty when falling back
// although plain text was not requested.
func Choose(c Capabilities, forceASCII bool) (r Renderer, reason string) {
	switch {
	case forceASCII:
		return ASCIIRenderer{}, ""
	case c.Terminal:
		return ChartRenderer{}, ""
	default:
		return ASCIIRenderer{}, "output is not a terminal; chart unavailable, using ASCII fallback"
	}
}
