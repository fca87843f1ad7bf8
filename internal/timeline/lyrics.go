package timeline

import (
	"fmt"
	"strings"
)

// LyricKind classifies a lyric line by song section.
type LyricKind string

const (
	KindVerse  LyricKind = "verse"
	KindChorus LyricKind = "chorus"
	KindBridge LyricKind = "bridge"
)

// ParseLyricKind accepts the section names case-insensitively.
func ParseLyricKind(s string) (LyricKind, error) {
	switch k := LyricKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindVerse, KindChorus, KindBridge:
		return k, nil
	default:
		return "", fmt.Errorf("unknown lyric kind %q", s)
	}
}

// LyricLine is the payload of one lyric window.
type LyricLine struct {
	Text string    `json:"text"`
	Kind LyricKind `json:"kind"`
}

// LyricMatch exposes the active line and its neighbours for transitions.
// Lyrics are discrete, so there is no progress value.
type LyricMatch struct {
	Current  *Window[LyricLine] `json:"current"`
	Index    int                `json:"index"`
	Previous *Window[LyricLine] `json:"previous"`
	Next     *Window[LyricLine] `json:"next"`
}

// LyricMatcher is an immutable lookup over validated lyric windows.
type LyricMatcher struct {
	windows []Window[LyricLine]
}

func NewLyricMatcher(windows []Window[LyricLine]) (*LyricMatcher, error) {
	if err := Validate(windows); err != nil {
		return nil, fmt.Errorf("lyrics: %w", err)
	}
	for i, w := range windows {
		if _, err := ParseLyricKind(string(w.Payload.Kind)); err != nil {
			return nil, fmt.Errorf("lyrics: window %d: %w", i, err)
		}
	}
	return &LyricMatcher{windows: clone(windows)}, nil
}

func (m *LyricMatcher) Match(pos float64) LyricMatch {
	r := FindActive(m.windows, pos)
	return LyricMatch{
		Current:  r.Current,
		Index:    r.Index,
		Previous: r.Previous,
		Next:     r.Next,
	}
}

// Lines returns a copy of the configured windows.
func (m *LyricMatcher) Lines() []Window[LyricLine] { return clone(m.windows) }

func (m *LyricMatcher) Len() int { return len(m.windows) }

func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
