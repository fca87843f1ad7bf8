package timeline

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func words(ws ...Window[string]) []Window[string] { return ws }

func w(start, end float64, p string) Window[string] {
	return Window[string]{Start: start, End: end, Payload: p}
}

func payload(win *Window[string]) string {
	if win == nil {
		return "<nil>"
	}
	return win.Payload
}

func TestFindActive(t *testing.T) {
	ws := words(w(0, 5, "a"), w(5, 9, "b"), w(12, 15, "c"))

	tests := []struct {
		name      string
		pos       float64
		wantCur   string
		wantIndex int
		wantPrev  string
		wantNext  string
	}{
		{"before all", -1, "<nil>", -1, "<nil>", "a"},
		{"first start", 0, "a", 0, "<nil>", "b"},
		{"just before boundary", 4.9, "a", 0, "<nil>", "b"},
		{"boundary belongs to next", 5.0, "b", 1, "a", "c"},
		{"gap", 10, "<nil>", -1, "b", "c"},
		{"gap at end of window", 9, "<nil>", -1, "b", "c"},
		{"last window", 14, "c", 2, "b", "<nil>"},
		{"end is exclusive", 15, "<nil>", -1, "c", "<nil>"},
		{"far after", 1000, "<nil>", -1, "c", "<nil>"},
		{"nan", math.NaN(), "<nil>", -1, "<nil>", "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FindActive(ws, tt.pos)
			if got := payload(m.Current); got != tt.wantCur {
				t.Errorf("current = %q, want %q", got, tt.wantCur)
			}
			if m.Index != tt.wantIndex {
				t.Errorf("index = %d, want %d", m.Index, tt.wantIndex)
			}
			if got := payload(m.Previous); got != tt.wantPrev {
				t.Errorf("previous = %q, want %q", got, tt.wantPrev)
			}
			if got := payload(m.Next); got != tt.wantNext {
				t.Errorf("next = %q, want %q", got, tt.wantNext)
			}
		})
	}
}

func TestFindActiveEmpty(t *testing.T) {
	m := FindActive[string](nil, 3)
	if m.Current != nil || m.Previous != nil || m.Next != nil || m.Index != -1 {
		t.Fatalf("empty list match = %+v, want zero match", m)
	}
}

func TestFindActiveDeterministic(t *testing.T) {
	ws := words(w(0, 5, "a"), w(5, 9, "b"), w(12, 15, "c"))
	for _, pos := range []float64{-3, 0, 2.5, 5, 8.999, 9, 11, 12, 15, 20} {
		first := FindActive(ws, pos)
		second := FindActive(ws, pos)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("pos %g: results differ: %+v vs %+v", pos, first, second)
		}
	}
}

func TestFindActiveDoesNotAlias(t *testing.T) {
	ws := words(w(0, 5, "a"))
	m := FindActive(ws, 1)
	m.Current.Payload = "mutated"
	if ws[0].Payload != "a" {
		t.Fatalf("caller slice was mutated through match: %q", ws[0].Payload)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		windows []Window[string]
		wantErr error
	}{
		{"empty list", nil, nil},
		{"contiguous", words(w(0, 5, "a"), w(5, 9, "b")), nil},
		{"with gap", words(w(0, 5, "a"), w(7, 9, "b")), nil},
		{"zero length", words(w(3, 3, "a")), ErrEmptyWindow},
		{"negative length", words(w(4, 3, "a")), ErrEmptyWindow},
		{"overlap", words(w(0, 5, "a"), w(4, 9, "b")), ErrOverlap},
		{"contained", words(w(0, 10, "a"), w(2, 3, "b")), ErrOverlap},
		{"unsorted", words(w(5, 9, "b"), w(0, 5, "a")), ErrUnsorted},
		{"nan bound", words(w(math.NaN(), 5, "a")), ErrInvalidBound},
		{"infinite end", words(w(0, math.Inf(1), "a")), ErrInvalidBound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.windows)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpanPercent(t *testing.T) {
	span, ok := SpanOf(words(w(30, 40, "a"), w(50, 102, "b")))
	if !ok {
		t.Fatal("expected span")
	}
	if span.Start != 30 || span.End != 102 {
		t.Fatalf("span = %+v, want [30, 102]", span)
	}

	tests := []struct {
		pos  float64
		want float64
	}{
		{66, 50},
		{30, 0},
		{102, 100},
		{10, 0},
		{500, 100},
	}
	for _, tt := range tests {
		if got := span.Percent(tt.pos); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percent(%g) = %g, want %g", tt.pos, got, tt.want)
		}
	}

	if _, ok := SpanOf[string](nil); ok {
		t.Error("empty list should have no span")
	}
	if got := (Span{Start: 5, End: 5}).Percent(5); got != 0 {
		t.Errorf("zero-width span percent = %g, want 0", got)
	}
}
