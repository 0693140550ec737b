package batch

import (
	"strconv"
	"time"
)

// Selector picks one batch by recency index or by time. At most one of
// Index and Time may be set; neither means index 0.
type Selector struct {
	Index *int
	Time  *time.Time
}

// ByIndex selects the i-th most recent batch.
func ByIndex(i int) Selector { return Selector{Index: &i} }

// ByTime selects the batch best matching t.
func ByTime(t time.Time) Selector { return Selector{Time: &t} }

// Validate checks the selector without looking at any batches.
func (s Selector) Validate() error {
	if s.Index != nil && s.Time != nil {
		return invalidInput("Use only one of --index or --datetime.")
	}
	if s.Index != nil && *s.Index < 0 {
		return invalidInput("Batch index must be >= 0.")
	}
	return nil
}

// Select resolves the selector against batches ordered most recent first.
// It returns nil without error when there are no batches at all.
func (s Selector) Select(batches []Batch) (*Batch, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}
	if s.Time != nil {
		return SelectTime(batches, *s.Time), nil
	}
	idx := 0
	if s.Index != nil {
		idx = *s.Index
	}
	return SelectIndex(batches, idx)
}

// SelectIndex returns batches[i], or an *OutOfRangeError naming how many
// batches exist.
func SelectIndex(batches []Batch, i int) (*Batch, error) {
	if i < 0 {
		return nil, invalidInput("Batch index must be >= 0.")
	}
	if i >= len(batches) {
		return nil, &OutOfRangeError{Requested: i, Count: len(batches)}
	}
	return &batches[i], nil
}

// SelectTime resolves t against batches ordered most recent first:
//  1. the first batch whose window contains t;
//  2. the most recent batch when t is at or after its newest file;
//  3. the first batch lying entirely at or before t;
//  4. the oldest batch.
//
// It returns nil only for an empty batch list.
func SelectTime(batches []Batch, t time.Time) *Batch {
	if len(batches) == 0 {
		return nil
	}
	for i := range batches {
		if batches[i].Contains(t) {
			return &batches[i]
		}
	}
	if !t.Before(batches[0].Max) {
		return &batches[0]
	}
	for i := range batches {
		if !batches[i].Max.After(t) {
			return &batches[i]
		}
	}
	return &batches[len(batches)-1]
}

// ParseSelector builds a Selector from the command-line forms: an optional
// positional argument (digits only means an index, anything else a
// datetime) and the explicit --index / --datetime values. Explicit flags
// take priority over the positional argument.
func ParseSelector(positional string, index *int, datetime *string, loc *time.Location) (Selector, error) {
	var s Selector
	if index != nil && datetime != nil {
		return s, invalidInput("Use only one of --index or --datetime.")
	}

	switch {
	case index != nil:
		i := *index
		s.Index = &i
	case datetime != nil:
		t, err := ParseDateTime(*datetime, loc)
		if err != nil {
			return s, err
		}
		s.Time = &t
	case positional != "":
		if isDigits(positional) {
			i, err := strconv.Atoi(positional)
			if err != nil {
				return s, invalidInput("Batch index %q is too large.", positional)
			}
			s.Index = &i
		} else {
			t, err := ParseDateTime(positional, loc)
			if err != nil {
				return s, err
			}
			s.Time = &t
		}
	}

	return s, s.Validate()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
