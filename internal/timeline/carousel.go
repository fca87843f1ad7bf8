package timeline

// Carousel tracks which memory card is selected. While the song plays the
// selection follows the matcher; a gap between memories keeps the last
// card. While paused the viewer may browse by hand, wrapping at both ends.
type Carousel struct {
	n        int
	selected int
}

func NewCarousel(n int) *Carousel {
	return &Carousel{n: n}
}

// Selected returns the selected index, or -1 when there are no memories.
func (c *Carousel) Selected() int {
	if c.n == 0 {
		return -1
	}
	return c.selected
}

// Follow moves the selection to the matched index while playing. It
// reports whether the selection changed.
func (c *Carousel) Follow(index int, playing bool) bool {
	if !playing || index < 0 || index >= c.n || index == c.selected {
		return false
	}
	c.selected = index
	return true
}

// Prev steps back one card. Ignored while playing.
func (c *Carousel) Prev(playing bool) bool {
	return c.step(-1, playing)
}

// Next steps forward one card. Ignored while playing.
func (c *Carousel) Next(playing bool) bool {
	return c.step(1, playing)
}

func (c *Carousel) step(delta int, playing bool) bool {
	if playing || c.n == 0 {
		return false
	}
	c.selected = ((c.selected+delta)%c.n + c.n) % c.n
	return true
}
