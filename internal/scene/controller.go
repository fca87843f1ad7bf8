package scene

import (
	"time"

	"github.com/playperu/reveal/internal/timer"
)

// Scroll delays after entering a stage. Gallery scrolls on the next frame.
var scrollDelays = map[Stage]time.Duration{
	StageGallery: 0,
	StageCake:    500 * time.Millisecond,
	StageGift:    800 * time.Millisecond,
}

const (
	timerScroll    = "scroll"
	timerCountdown = "countdown"
)

// Hooks receive the controller's outbound effects. Either may be nil.
type Hooks struct {
	// Entered is called once per stage entered, in order.
	Entered func(Stage)
	// Scroll is called when the scroll-into-view delay for a stage
	// elapses while that stage is still active.
	Scroll func(Stage)
}

// Controller is the narrative state machine. Every timer it schedules
// belongs to the active stage and is cancelled when the stage is left.
// Not goroutine-safe.
type Controller struct {
	stage  Stage
	timers *timer.Group
	hooks  Hooks
}

func NewController(sched timer.Scheduler, hooks Hooks) *Controller {
	return &Controller{
		stage:  StageCountdown,
		timers: timer.NewGroup(sched),
		hooks:  hooks,
	}
}

func (c *Controller) Stage() Stage { return c.stage }

// Mounted lists the stages currently on screen. Playback and Gallery stay
// mounted together once the song starts.
func (c *Controller) Mounted() []Stage {
	if c.stage == StageGallery {
		return []Stage{StagePlayback, StageGallery}
	}
	return []Stage{c.stage}
}

// GalleryVisible reports whether the memory gallery should be shown.
func (c *Controller) GalleryVisible(isPlaying bool) bool {
	return c.stage == StageGallery && isPlaying
}

// ArmCountdown schedules the countdown to expire after remaining. A
// non-positive remaining expires it immediately.
func (c *Controller) ArmCountdown(remaining time.Duration) {
	if c.stage != StageCountdown {
		return
	}
	if remaining <= 0 {
		c.CountdownExpired()
		return
	}
	c.timers.Schedule(timerCountdown, remaining, func() { c.CountdownExpired() })
}

// CountdownExpired moves Countdown to Intro when the target time passes.
func (c *Controller) CountdownExpired() bool {
	return c.advance(StageCountdown, StageIntro)
}

// Skip lets the viewer leave the countdown early.
func (c *Controller) Skip() bool {
	return c.advance(StageCountdown, StageIntro)
}

// PlaybackStarted handles the first successful start of the clock. The
// intro gives way to playback and the gallery in one step.
func (c *Controller) PlaybackStarted() bool {
	if !c.advance(StageIntro, StagePlayback) {
		return false
	}
	c.advance(StagePlayback, StageGallery)
	return true
}

// PlaybackEnded handles the clock's end-of-range signal.
func (c *Controller) PlaybackEnded() bool {
	return c.advance(StagePlayback, StageCake) || c.advance(StageGallery, StageCake)
}

// CakeCompleted handles the cake reporting that it was blown out and cut.
func (c *Controller) CakeCompleted() bool {
	return c.advance(StageCake, StageGift)
}

// GiftOpened handles the viewer opening the real gift. It only moves on
// when the challenge gate has been completed.
func (c *Controller) GiftOpened(gateCompleted bool) bool {
	if !gateCompleted {
		return false
	}
	return c.advance(StageGift, StageEnd)
}

// Close cancels every pending timer.
func (c *Controller) Close() {
	c.timers.CancelAll()
}

func (c *Controller) advance(from, to Stage) bool {
	if c.stage != from {
		return false
	}
	c.timers.CancelAll()
	c.stage = to
	if c.hooks.Entered != nil {
		c.hooks.Entered(to)
	}
	if d, ok := scrollDelays[to]; ok {
		c.timers.Schedule(timerScroll, d, func() {
			if c.hooks.Scroll != nil {
				c.hooks.Scroll(to)
			}
		})
	}
	return true
}
