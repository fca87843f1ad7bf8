package playback

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAutoplayBlocked is what SimMedia returns from Play while Block is set.
var ErrAutoplayBlocked = errors.New("autoplay blocked")

// SimMedia is an in-process media source. Its position only moves when
// Advance is called, which makes it usable both as a test double and as
// the source for offline simulations.
type SimMedia struct {
	mu       sync.Mutex
	duration float64
	position float64
	playing  bool
	block    bool
	commands []string
}

func NewSimMedia(duration float64) *SimMedia {
	return &SimMedia{duration: duration}
}

// Block makes subsequent Play calls fail until unblocked.
func (m *SimMedia) Block(block bool) {
	m.mu.Lock()
	m.block = block
	m.mu.Unlock()
}

func (m *SimMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.block {
		m.commands = append(m.commands, "play:rejected")
		return ErrAutoplayBlocked
	}
	m.playing = true
	m.commands = append(m.commands, "play")
	return nil
}

func (m *SimMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.commands = append(m.commands, "pause")
}

func (m *SimMedia) Seek(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = seconds
	m.commands = append(m.commands, fmt.Sprintf("seek:%g", seconds))
}

// Advance moves the position forward by dt seconds if playing and
// returns the new position and whether the source ran out.
func (m *SimMedia) Advance(dt float64) (pos float64, ended bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.position += dt
	}
	if m.duration > 0 && m.position >= m.duration {
		m.position = m.duration
		ended = m.playing
		m.playing = false
	}
	return m.position, ended
}

func (m *SimMedia) Duration() float64 { return m.duration }

func (m *SimMedia) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *SimMedia) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Commands returns the commands received so far, oldest first.
func (m *SimMedia) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.commands))
	copy(out, m.commands)
	return out
}
