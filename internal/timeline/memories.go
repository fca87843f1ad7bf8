package timeline

import (
	"errors"
	"fmt"
)

// MemoryMoment is one photo/video card in the memory timeline. Fields are
// passed through to the renderer untouched.
type MemoryMoment struct {
	ID               string `json:"id"`
	MediaURL         string `json:"mediaUrl"`
	Caption          string `json:"caption"`
	Title            string `json:"title"`
	Body             string `json:"body"`
	DisplayTimestamp string `json:"displayTimestamp"`
	Variant          string `json:"variant,omitempty"`
	IsVideo          bool   `json:"isVideo,omitempty"`
}

// MemoryMatch is a lyric-style match plus the position expressed as a
// percentage of the memory set's own span. LocalProgress is unrelated to
// the clock's position/duration ratio.
type MemoryMatch struct {
	Current       *Window[MemoryMoment] `json:"current"`
	Index         int                   `json:"index"`
	Previous      *Window[MemoryMoment] `json:"previous"`
	Next          *Window[MemoryMoment] `json:"next"`
	LocalProgress float64               `json:"localProgress"`
}

var ErrDuplicateMemory = errors.New("duplicate memory id")

// MemoryMatcher is an immutable lookup over validated memory windows.
type MemoryMatcher struct {
	windows []Window[MemoryMoment]
	span    Span
}

// NewMemoryMatcher validates windows (gaps are allowed, overlaps are not)
// and requires every memory to carry a unique, non-empty ID.
func NewMemoryMatcher(windows []Window[MemoryMoment]) (*MemoryMatcher, error) {
	if err := Validate(windows); err != nil {
		return nil, fmt.Errorf("memories: %w", err)
	}
	seen := make(map[string]int, len(windows))
	for i, w := range windows {
		if w.Payload.ID == "" {
			return nil, fmt.Errorf("memories: window %d: missing id", i)
		}
		if j, ok := seen[w.Payload.ID]; ok {
			return nil, fmt.Errorf("memories: windows %d and %d share id %q: %w", j, i, w.Payload.ID, ErrDuplicateMemory)
		}
		seen[w.Payload.ID] = i
	}
	span, _ := SpanOf(windows)
	return &MemoryMatcher{windows: clone(windows), span: span}, nil
}

func (m *MemoryMatcher) Match(pos float64) MemoryMatch {
	r := FindActive(m.windows, pos)
	return MemoryMatch{
		Current:       r.Current,
		Index:         r.Index,
		Previous:      r.Previous,
		Next:          r.Next,
		LocalProgress: m.span.Percent(pos),
	}
}

func (m *MemoryMatcher) Span() Span { return m.span }

func (m *MemoryMatcher) Len() int { return len(m.windows) }

// Moments returns a copy of the configured windows.
func (m *MemoryMatcher) Moments() []Window[MemoryMoment] { return clone(m.windows) }

// At returns the window at index i.
func (m *MemoryMatcher) At(i int) (Window[MemoryMoment], bool) {
	if i < 0 || i >= len(m.windows) {
		return Window[MemoryMoment]{}, false
	}
	return m.windows[i], true
}
