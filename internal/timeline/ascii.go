package timeline

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// densityRamp runs from empty to densest.
const densityRamp = " .:-=+*#%@"

// ASCIIRenderer prints a single density line. It needs no terminal
// capabilities and is the fallback for the chart.
type ASCIIRenderer struct{}

func (ASCIIRenderer) Name() string { return "ascii" }

func (ASCIIRenderer) Render(w io.Writer, d Data) error {
	_, err := fmt.Fprintf(w, "%s |%s| %s\n", d.MinLabel(), DensityLine(d.Values, d.Bins), d.MaxLabel())
	return err
}

// DensityLine renders values as max(10, bins) cells; each value lands in
// the cell nearest to v*(cells-1), rounding half to even.
func DensityLine(values []float64, bins int) string {
	width := bins
	if width < 10 {
		width = 10
	}
	counts := make([]int, width)
	for _, v := range values {
		idx := int(math.RoundToEven(v * float64(width-1)))
		counts[clamp(idx, 0, width-1)]++
	}

	peak := maxInt(counts)
	if peak == 0 {
		return strings.Repeat(" ", width)
	}
	ramp := []rune(densityRamp)
	var sb strings.Builder
	for _, c := range counts {
		sb.WriteRune(ramp[c*(len(ramp)-1)/peak])
	}
	return sb.String()
}
