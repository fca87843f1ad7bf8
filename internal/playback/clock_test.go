package playback

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func newTestClock(t *testing.T, rng Range) (*Clock, *SimMedia) {
	t.Helper()
	media := NewSimMedia(180)
	c, err := NewClock(media, rng)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	c.Ready(media.Duration())
	return c, media
}

func TestFirstStartSeeksToRangeStart(t *testing.T) {
	c, media := newTestClock(t, Range{Start: 30, End: 102})

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := media.Commands(); !slices.Equal(got, []string{"seek:30", "play"}) {
		t.Fatalf("commands = %v, want [seek:30 play]", got)
	}
	s := c.State()
	if !s.IsPlaying || s.Position != 30 || !s.HasUserStartedOnce {
		t.Fatalf("state = %+v", s)
	}

	// Second start while playing is a no-op: no re-seek, no play.
	if err := c.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if got := media.Commands(); len(got) != 2 {
		t.Fatalf("second start issued commands: %v", got)
	}
}

func TestStartAfterPauseResumes(t *testing.T) {
	c, media := newTestClock(t, Range{Start: 30})
	c.Start()
	c.Tick(45)
	c.Pause()
	if c.State().IsPlaying {
		t.Fatal("expected paused")
	}
	if err := c.Start(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	want := []string{"seek:30", "play", "pause", "play"}
	if got := media.Commands(); !slices.Equal(got, want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	if c.State().Position != 45 {
		t.Errorf("position = %g, want 45", c.State().Position)
	}
}

func TestStartRejected(t *testing.T) {
	c, media := newTestClock(t, Range{Start: 30})
	media.Block(true)

	err := c.Start()
	if !errors.Is(err, ErrPlaybackRejected) || !errors.Is(err, ErrAutoplayBlocked) {
		t.Fatalf("error = %v, want ErrPlaybackRejected wrapping ErrAutoplayBlocked", err)
	}
	s := c.State()
	if s.IsPlaying || s.HasUserStartedOnce {
		t.Fatalf("state after rejection = %+v", s)
	}

	// A retry from a user gesture seeks again and plays.
	media.Block(false)
	if err := c.Start(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !c.State().IsPlaying {
		t.Fatal("expected playing after retry")
	}
}

func TestEndSignalIsEdgeTriggered(t *testing.T) {
	c, media := newTestClock(t, Range{Start: 0, End: 30})
	c.Start()

	fired := 0
	for _, pos := range []float64{10, 29.9, 30.0, 30.0, 30.1} {
		if _, ended := c.Tick(pos); ended {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("ended fired %d times, want 1", fired)
	}
	if c.MediaEnded() {
		t.Error("native ended after boundary end must not fire again")
	}

	s := c.State()
	if s.IsPlaying || !s.HasEnded {
		t.Fatalf("state = %+v, want paused and ended", s)
	}
	if last := media.Commands()[len(media.Commands())-1]; last != "pause" {
		t.Errorf("last command = %q, want pause", last)
	}
}

func TestReplayStartsNewRun(t *testing.T) {
	c, _ := newTestClock(t, Range{Start: 5, End: 30})
	c.Start()
	if _, ended := c.Tick(30); !ended {
		t.Fatal("expected end")
	}

	if err := c.Replay(); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if _, ended := c.Tick(31); !ended {
		t.Fatal("expected end to fire again in the new run")
	}
}

func TestReplayIdempotent(t *testing.T) {
	c, _ := newTestClock(t, Range{Start: 30, End: 102})
	c.Start()
	c.Tick(80)

	c.Replay()
	once := c.State()
	c.Replay()
	twice := c.State()

	if once != twice {
		t.Fatalf("replay twice = %+v, once = %+v", twice, once)
	}
	if twice.Position != 30 || twice.HasEnded || !twice.IsPlaying {
		t.Fatalf("state = %+v", twice)
	}
}

func TestStaleTicksIgnoredWhilePlaying(t *testing.T) {
	c, _ := newTestClock(t, Range{})
	c.Start()
	c.Tick(20)
	s, _ := c.Tick(12)
	if s.Position != 20 {
		t.Fatalf("position = %g after stale tick, want 20", s.Position)
	}
}

func TestDefaultRangeUsesDuration(t *testing.T) {
	media := NewSimMedia(60)
	c, err := NewClock(media, Range{})
	if err != nil {
		t.Fatal(err)
	}

	// No duration yet: a tick cannot end the run.
	c.Start()
	if _, ended := c.Tick(0); ended {
		t.Fatal("ended before duration was known")
	}

	c.Ready(60)
	if got := c.Range(); got.Start != 0 || got.End != 60 {
		t.Fatalf("range = %+v, want [0, 60)", got)
	}
	if _, ended := c.Tick(60); !ended {
		t.Fatal("expected end at duration")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		s    State
		want float64
	}{
		{State{Position: 90, Duration: 180}, 50},
		{State{Position: 10}, 0},
		{State{Position: 200, Duration: 180}, 100},
	}
	for _, tt := range tests {
		if got := tt.s.Progress(); got != tt.want {
			t.Errorf("Progress(%+v) = %g, want %g", tt.s, got, tt.want)
		}
	}
}

func TestRangeValidate(t *testing.T) {
	tests := []struct {
		name string
		rng  Range
		ok   bool
	}{
		{"unset", Range{}, true},
		{"start only", Range{Start: 30}, true},
		{"both", Range{Start: 30, End: 102}, true},
		{"inverted", Range{Start: 30, End: 10}, false},
		{"empty", Range{Start: 30, End: 30}, false},
		{"negative", Range{Start: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rng.Validate(); (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, ok want %v", err, tt.ok)
			}
		})
	}
}

func TestStartAfterMediaEndedRestarts(t *testing.T) {
	c, media := newTestClock(t, Range{})
	c.Start()
	c.Tick(120)
	if !c.MediaEnded() {
		t.Fatal("expected end on native ended")
	}

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cmds := media.Commands()
	if got := cmds[len(cmds)-2:]; !slices.Equal(got, []string{"seek:0", "play"}) {
		t.Fatalf("last commands = %v, want [seek:0 play]", got)
	}

	var s State
	for _, pos := range []float64{0.5, 1, 45} {
		s, _ = c.Tick(pos)
	}
	if s.Position != 45 || !s.IsPlaying || s.HasEnded {
		t.Fatalf("state = %+v, want playing at 45", s)
	}
	if !c.MediaEnded() {
		t.Error("end did not fire for the restarted run")
	}
}

// remote issues commands without knowing whether they took effect.
type remote struct{ commands []string }

func (m *remote) Play() error {
	m.commands = append(m.commands, "play")
	return ErrPlayPending
}
func (m *remote) Pause()           { m.commands = append(m.commands, "pause") }
func (m *remote) Seek(sec float64) { m.commands = append(m.commands, fmt.Sprintf("seek:%g", sec)) }

func TestPendingPlay(t *testing.T) {
	media := &remote{}
	c, err := NewClock(media, Range{Start: 30, End: 102})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s := c.State()
	if !s.IsPending || s.IsPlaying || s.HasUserStartedOnce {
		t.Fatalf("state after start = %+v, want pending only", s)
	}

	c.Rejected()
	if s := c.State(); s.IsPending || s.IsPlaying || s.HasUserStartedOnce {
		t.Fatalf("state after rejection = %+v", s)
	}

	c.Start()
	want := []string{"seek:30", "play", "seek:30", "play"}
	if !slices.Equal(media.commands, want) {
		t.Fatalf("commands = %v, want %v", media.commands, want)
	}
	if !c.Confirm() {
		t.Fatal("Confirm = false with a pending play")
	}
	if s := c.State(); s.IsPending || !s.IsPlaying || !s.HasUserStartedOnce {
		t.Fatalf("state after confirm = %+v", s)
	}
	if c.Confirm() {
		t.Error("Confirm = true without a pending play")
	}
}

func TestPauseAbandonsPendingPlay(t *testing.T) {
	media := &remote{}
	c, err := NewClock(media, Range{})
	if err != nil {
		t.Fatal(err)
	}
	c.Start()
	c.Pause()

	if s := c.State(); s.IsPending || s.IsPlaying {
		t.Fatalf("state = %+v, want idle", s)
	}
	if c.Confirm() {
		t.Error("late confirmation accepted after pause")
	}
}
