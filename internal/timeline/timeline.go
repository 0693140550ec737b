// Package timeline plots raw file modification times, independent of
// batching, on a normalized 0..1 axis.
package timeline

import (
	"errors"
	"io"
	"math"
	"time"
)

// LabelLayout formats the oldest and newest timestamps on the axis.
const LabelLayout = "2006-01-02T15:04:05"

// ErrBadDimensions is returned for non-positive bins, width or height.
var ErrBadDimensions = errors.New("bins, width and height must be > 0")

// Data is everything a renderer needs to draw one plot.
type Data struct {
	Values []float64 // each in [0, 1]
	Oldest time.Time
	Newest time.Time
	Bins   int
	Width  int
	Height int
}

// MinLabel returns the oldest timestamp in local time.
func (d Data) MinLabel() string { return d.Oldest.Local().Format(LabelLayout) }

// MaxLabel returns the newest timestamp in local time.
func (d Data) MaxLabel() string { return d.Newest.Local().Format(LabelLayout) }

// Renderer draws a timeline.
type Renderer interface {
	Name() string
	Render(w io.Writer, d Data) error
}

// Normalize maps times onto [0, 1] with the oldest at 0 and the newest at 1.
// When all times are equal every value is 0.5.
func Normalize(times []time.Time) (values []float64, oldest, newest time.Time) {
	if len(times) == 0 {
		return nil, time.Time{}, time.Time{}
	}
	oldest, newest = times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(oldest) {
			oldest = t
		}
		if t.After(newest) {
			newest = t
		}
	}

	values = make([]float64, len(times))
	span := newest.Sub(oldest)
	for i, t := range times {
		if span == 0 {
			values[i] = 0.5
			continue
		}
		values[i] = float64(t.Sub(oldest)) / float64(span)
	}
	return values, oldest, newest
}

// NewData validates the plot dimensions and normalizes times.
func NewData(times []time.Time, bins, width, height int) (Data, error) {
	if bins <= 0 || width <= 0 || height <= 0 {
		return Data{}, ErrBadDimensions
	}
	values, oldest, newest := Normalize(times)
	return Data{
		Values: values,
		Oldest: oldest,
		Newest: newest,
		Bins:   bins,
		Width:  width,
		Height: height,
	}, nil
}

// Histogram counts values into n equal-width bins over [0, 1]; the last bin
// is closed so 1.0 lands in it.
func Histogram(values []float64, n int) []int {
	counts := make([]int, n)
	for _, v := range values {
		idx := int(math.Floor(v * float64(n)))
		counts[clamp(idx, 0, n-1)]++
	}
	return counts
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
