// Package batch groups scanned files into batches separated by gaps in their
// modification times, and resolves a caller's request to one batch.
package batch

import (
	"math"
	"sort"
	"time"

	"github.com/fakeyudi/relapse/internal/scan"
)

// DefaultMaxGap is the largest gap between consecutive modification times
// that still keeps two files in the same batch.
const DefaultMaxGap = 120 * time.Second

// Batch is a maximal run of files whose consecutive modification times,
// sorted newest first, are no more than the gap threshold apart.
type Batch struct {
	Members []scan.FileEntry // newest first
	Max     time.Time
	Min     time.Time
}

// Contains reports whether t lies inside the batch window, bounds included.
func (b Batch) Contains(t time.Time) bool {
	return !t.Before(b.Min) && !t.After(b.Max)
}

// Len returns the number of members.
func (b Batch) Len() int { return len(b.Members) }

// maxGapSeconds is the largest threshold a Duration can hold.
const maxGapSeconds = float64(math.MaxInt64) / float64(time.Second)

// GapSeconds converts a threshold in (possibly fractional) seconds to a
// Duration. Negative thresholds clamp to zero and thresholds too large for
// a Duration, +Inf included, saturate at the maximum Duration.
func GapSeconds(seconds float64) time.Duration {
	switch {
	case seconds <= 0 || math.IsNaN(seconds):
		return 0
	case seconds >= maxGapSeconds:
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}

// ValidGap rejects thresholds that are not a number.
func ValidGap(seconds float64) error {
	if math.IsNaN(seconds) {
		return invalidInput("Max gap seconds must be a number.")
	}
	return nil
}

// Build partitions entries into batches, most recent batch first.
//
// Entries are sorted by modification time, newest first, and folded left to
// right: an entry joins the current batch unless the distance from the
// batch's running minimum exceeds maxGap. Equal timestamps always share a
// batch. The input slice is not modified.
func Build(entries []scan.FileEntry, maxGap time.Duration) []Batch {
	if maxGap < 0 {
		maxGap = 0
	}

	sorted := make([]scan.FileEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ModTime.After(sorted[j].ModTime)
	})

	batches := []Batch{}
	for _, e := range sorted {
		batches = extendOrStart(batches, e, maxGap)
	}
	return batches
}

// extendOrStart is the fold step for Build.
func extendOrStart(acc []Batch, e scan.FileEntry, maxGap time.Duration) []Batch {
	if len(acc) == 0 || acc[len(acc)-1].Min.Sub(e.ModTime) > maxGap {
		return append(acc, Batch{
			Members: []scan.FileEntry{e},
			Max:     e.ModTime,
			Min:     e.ModTime,
		})
	}
	last := acc[len(acc)-1]
	acc[len(acc)-1] = Batch{
		Members: append(last.Members, e),
		Max:     last.Max,
		Min:     e.ModTime,
	}
	return acc
}
