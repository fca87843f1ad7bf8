// Package playback wraps a single media source and owns its playback
// state. The clock restricts playback to a sub-range of the source and
// reports the end of that range exactly once per run.
package playback

import (
	"errors"
	"fmt"
	"math"
)

// ErrPlaybackRejected is returned when the media source refuses to play,
// for example because autoplay was blocked. The clock stays paused and the
// caller may retry from an explicit user gesture.
var ErrPlaybackRejected = errors.New("playback rejected")

// ErrPlayPending is returned by a Media whose Play only issues the command.
// The clock then waits for Confirm or Rejected before it counts as playing.
var ErrPlayPending = errors.New("play pending")

// Media is the command surface of the underlying audio/video element.
type Media interface {
	Play() error
	Pause()
	Seek(seconds float64)
}

// Range restricts playback to [Start, End). A zero End means the range
// runs to the end of the source.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Validate rejects ranges that cannot be played.
func (r Range) Validate() error {
	if math.IsNaN(r.Start) || math.IsInf(r.Start, 0) || math.IsNaN(r.End) || math.IsInf(r.End, 0) {
		return errors.New("restricted range bound is not a finite number")
	}
	if r.Start < 0 || r.End < 0 {
		return fmt.Errorf("restricted range [%g, %g) has a negative bound", r.Start, r.End)
	}
	if r.End != 0 && r.End <= r.Start {
		return fmt.Errorf("restricted range end %g must be after start %g", r.End, r.Start)
	}
	return nil
}

// State is a read-only snapshot of playback.
type State struct {
	Position           float64 `json:"position"`
	Duration           float64 `json:"duration"`
	IsPlaying          bool    `json:"isPlaying"`
	IsPending          bool    `json:"isPending"`
	HasEnded           bool    `json:"hasEnded"`
	IsReady            bool    `json:"isReady"`
	HasUserStartedOnce bool    `json:"hasUserStartedOnce"`
}

// Progress is how far through the whole source the position is, as a
// percentage clamped to [0, 100]. It is 0 until the duration is known.
func (s State) Progress() float64 {
	if s.Duration <= 0 || math.IsNaN(s.Position) {
		return 0
	}
	return math.Max(0, math.Min(100, s.Position/s.Duration*100))
}

// Clock is the only writer of State. It is not goroutine-safe; callers
// drive it from one event loop.
type Clock struct {
	media Media
	rng   Range
	state State

	// endSignalled is set when the end of the current run was reported
	// and cleared when a new run begins.
	endSignalled bool
}

func NewClock(media Media, rng Range) (*Clock, error) {
	if media == nil {
		return nil, errors.New("playback: nil media")
	}
	if err := rng.Validate(); err != nil {
		return nil, fmt.Errorf("playback: %w", err)
	}
	return &Clock{media: media, rng: rng}, nil
}

func (c *Clock) State() State { return c.state }

// Range returns the configured range with End resolved against the known
// duration.
func (c *Clock) Range() Range {
	return Range{Start: c.rng.Start, End: c.end()}
}

func (c *Clock) end() float64 {
	if c.rng.End > 0 {
		return c.rng.End
	}
	return c.state.Duration
}

// Ready records that the source loaded and knows its duration. Sources
// that never become ready leave IsReady false; the clock does not retry.
func (c *Clock) Ready(duration float64) {
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	c.state.IsReady = true
	c.state.Duration = duration
}

// Start begins playback. Calling Start while already playing does
// nothing. The first successful start seeks to the range start, as does a
// start after the run ended; other starts resume from the current
// position.
func (c *Clock) Start() error {
	if c.state.IsPlaying {
		return nil
	}
	seek := !c.state.HasUserStartedOnce || c.state.HasEnded
	if seek {
		c.media.Seek(c.rng.Start)
		c.state.Position = c.rng.Start
	}
	return c.play(seek)
}

// Replay seeks to the range start and plays from there.
func (c *Clock) Replay() error {
	c.media.Seek(c.rng.Start)
	c.state.Position = c.rng.Start
	return c.play(true)
}

func (c *Clock) play(newRun bool) error {
	c.state.HasEnded = false
	if newRun {
		c.endSignalled = false
	}
	err := c.media.Play()
	switch {
	case errors.Is(err, ErrPlayPending):
		c.state.IsPending = true
		return nil
	case err != nil:
		c.state.IsPlaying = false
		c.state.IsPending = false
		return fmt.Errorf("%w: %w", ErrPlaybackRejected, err)
	}
	c.confirm()
	return nil
}

// Confirm records that a pending play command took effect. It reports
// whether a play was pending.
func (c *Clock) Confirm() bool {
	if !c.state.IsPending {
		return false
	}
	c.confirm()
	return true
}

func (c *Clock) confirm() {
	c.state.IsPending = false
	c.state.IsPlaying = true
	c.state.HasUserStartedOnce = true
}

// Pause stops playback without ending the run. A pending play is
// abandoned.
func (c *Clock) Pause() {
	if !c.state.IsPlaying && !c.state.IsPending {
		return
	}
	c.media.Pause()
	c.state.IsPlaying = false
	c.state.IsPending = false
}

// Rejected records that a play command issued earlier was refused
// asynchronously by the source. A refused first start leaves
// HasUserStartedOnce false, so the next Start seeks again.
func (c *Clock) Rejected() {
	c.state.IsPlaying = false
	c.state.IsPending = false
}

// Tick records a position update from the source. ended is true on the
// first tick that reaches the end of the range during a run, and false on
// every later tick of that run. While playing, a position behind the
// current one is a stale delivery and is ignored.
func (c *Clock) Tick(pos float64) (s State, ended bool) {
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return c.state, false
	}
	if c.state.IsPlaying && pos < c.state.Position {
		return c.state, false
	}
	c.state.Position = pos

	end := c.end()
	if c.state.IsPlaying && end > 0 && pos >= end {
		return c.state, c.finish()
	}
	return c.state, false
}

// MediaEnded handles the source reaching its natural end. It reports
// whether this was the first end of the current run.
func (c *Clock) MediaEnded() bool {
	if !c.state.HasUserStartedOnce {
		return false
	}
	if c.state.Duration > 0 && c.state.Position < c.state.Duration {
		c.state.Position = c.state.Duration
	}
	return c.finish()
}

func (c *Clock) finish() bool {
	if c.state.IsPlaying {
		c.media.Pause()
	}
	c.state.IsPlaying = false
	c.state.IsPending = false
	c.state.HasEnded = true
	if c.endSignalled {
		return false
	}
	c.endSignalled = true
	return true
}
