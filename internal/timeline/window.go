// Package timeline maps a playback position onto ordered, half-open time
// windows. Everything here is a pure function of its inputs: the same
// windows and position always produce the same match, so callers may
// recompute on every tick, including duplicate or out-of-order ticks.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyWindow  = errors.New("window end must be after start")
	ErrInvalidBound = errors.New("window bound is not a finite number")
	ErrUnsorted     = errors.New("windows must be sorted by start")
	ErrOverlap      = errors.New("windows overlap")
)

// Window is a half-open interval [Start, End) carrying a payload.
type Window[T any] struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Payload T       `json:"payload"`
}

// Contains reports whether pos falls inside [Start, End).
func (w Window[T]) Contains(pos float64) bool {
	return w.Start <= pos && pos < w.End
}

// Match is the result of a lookup. Current is nil and Index is -1 when
// pos falls in a gap or outside every window. Previous and Next are the
// nearest windows entirely before and entirely after pos, so they stay
// defined across gaps.
type Match[T any] struct {
	Current  *Window[T]
	Index    int
	Previous *Window[T]
	Next     *Window[T]
}

// Validate checks that windows are finite, non-empty, sorted by start and
// pairwise non-overlapping. Touching windows (End == next Start) are fine.
func Validate[T any](windows []Window[T]) error {
	for i, w := range windows {
		if !finite(w.Start) || !finite(w.End) {
			return fmt.Errorf("window %d: %w", i, ErrInvalidBound)
		}
		if w.End <= w.Start {
			return fmt.Errorf("window %d [%g, %g): %w", i, w.Start, w.End, ErrEmptyWindow)
		}
		if i == 0 {
			continue
		}
		prev := windows[i-1]
		if w.Start < prev.Start {
			return fmt.Errorf("window %d starts at %g before window %d at %g: %w", i, w.Start, i-1, prev.Start, ErrUnsorted)
		}
		// Sorted by start, so checking the neighbour is enough.
		if w.Start < prev.End {
			return fmt.Errorf("window %d [%g, %g) and window %d [%g, %g): %w",
				i-1, prev.Start, prev.End, i, w.Start, w.End, ErrOverlap)
		}
	}
	return nil
}

// FindActive returns the window containing pos. windows must already be
// validated; FindActive does not sort or check them.
func FindActive[T any](windows []Window[T], pos float64) Match[T] {
	m := Match[T]{Index: -1}
	if math.IsNaN(pos) || len(windows) == 0 {
		return m
	}

	// k is the first window starting strictly after pos.
	k := sort.Search(len(windows), func(i int) bool { return windows[i].Start > pos })

	if c := k - 1; c >= 0 && pos < windows[c].End {
		m.Index = c
		m.Current = ptr(windows[c])
		if c > 0 {
			m.Previous = ptr(windows[c-1])
		}
	} else if c >= 0 {
		m.Previous = ptr(windows[c])
	}
	if k < len(windows) {
		m.Next = ptr(windows[k])
	}
	return m
}

// Span is the smallest interval covering a set of windows.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SpanOf returns the span of windows. ok is false for an empty list.
func SpanOf[T any](windows []Window[T]) (s Span, ok bool) {
	if len(windows) == 0 {
		return Span{}, false
	}
	s = Span{Start: windows[0].Start, End: windows[0].End}
	for _, w := range windows[1:] {
		s.Start = math.Min(s.Start, w.Start)
		s.End = math.Max(s.End, w.End)
	}
	return s, true
}

// Percent maps pos onto the span as a value clamped to [0, 100].
func (s Span) Percent(pos float64) float64 {
	if s.End <= s.Start || math.IsNaN(pos) {
		return 0
	}
	return clampPercent((pos - s.Start) / (s.End - s.Start) * 100)
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr[T any](v T) *T { return &v }
