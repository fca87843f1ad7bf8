package scene

import (
	"slices"
	"testing"
	"time"

	"github.com/playperu/reveal/internal/timer"
)

type recorder struct {
	entered  []Stage
	scrolled []Stage
}

func newTestController(t *testing.T) (*Controller, *timer.Manual, *recorder) {
	t.Helper()
	clock := timer.NewManual()
	rec := &recorder{}
	c := NewController(clock, Hooks{
		Entered: func(s Stage) { rec.entered = append(rec.entered, s) },
		Scroll:  func(s Stage) { rec.scrolled = append(rec.scrolled, s) },
	})
	return c, clock, rec
}

func TestHappyPath(t *testing.T) {
	c, clock, rec := newTestController(t)

	steps := []struct {
		name string
		fire func() bool
		want Stage
	}{
		{"skip countdown", c.Skip, StageIntro},
		{"start playback", c.PlaybackStarted, StageGallery},
		{"song ends", c.PlaybackEnded, StageCake},
		{"cake cut", c.CakeCompleted, StageGift},
		{"open gift", func() bool { return c.GiftOpened(true) }, StageEnd},
	}
	for _, s := range steps {
		if !s.fire() {
			t.Fatalf("%s: transition refused in %v", s.name, c.Stage())
		}
		if c.Stage() != s.want {
			t.Fatalf("%s: stage = %v, want %v", s.name, c.Stage(), s.want)
		}
		clock.Advance(time.Second)
	}

	want := []Stage{StageIntro, StagePlayback, StageGallery, StageCake, StageGift, StageEnd}
	if !slices.Equal(rec.entered, want) {
		t.Errorf("entered = %v, want %v", rec.entered, want)
	}
	wantScroll := []Stage{StageGallery, StageCake, StageGift}
	if !slices.Equal(rec.scrolled, wantScroll) {
		t.Errorf("scrolled = %v, want %v", rec.scrolled, wantScroll)
	}
}

func TestTransitionsAreOneDirectional(t *testing.T) {
	c, _, rec := newTestController(t)
	c.Skip()
	c.PlaybackStarted()
	c.PlaybackEnded()

	// A duplicate end, a second start, or a late skip must not move the stage.
	for name, fire := range map[string]func() bool{
		"ended again":   c.PlaybackEnded,
		"started again": c.PlaybackStarted,
		"skip":          c.Skip,
		"expired":       c.CountdownExpired,
	} {
		if fire() {
			t.Errorf("%s: unexpected transition", name)
		}
	}
	if c.Stage() != StageCake {
		t.Fatalf("stage = %v, want cake", c.Stage())
	}
	if len(rec.entered) != 4 {
		t.Errorf("entered = %v, want 4 stages", rec.entered)
	}
}

func TestGiftNeedsCompletedGate(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Skip()
	c.PlaybackStarted()
	c.PlaybackEnded()
	c.CakeCompleted()

	if c.GiftOpened(false) {
		t.Fatal("gift opened without completed gate")
	}
	if c.Stage() != StageGift {
		t.Fatalf("stage = %v, want gift", c.Stage())
	}
}

func TestStageExitCancelsTimers(t *testing.T) {
	c, clock, rec := newTestController(t)
	c.Skip()
	c.PlaybackStarted()
	c.PlaybackEnded() // schedules the cake scroll at 500ms
	c.CakeCompleted() // leaves cake before its scroll fired

	clock.Advance(600 * time.Millisecond)
	if slices.Contains(rec.scrolled, StageCake) {
		t.Fatalf("stale cake scroll fired: %v", rec.scrolled)
	}

	clock.Advance(300 * time.Millisecond)
	if !slices.Contains(rec.scrolled, StageGift) {
		t.Fatalf("gift scroll missing: %v", rec.scrolled)
	}
}

func TestCountdownTimer(t *testing.T) {
	c, clock, _ := newTestController(t)
	c.ArmCountdown(10 * time.Second)

	clock.Advance(9 * time.Second)
	if c.Stage() != StageCountdown {
		t.Fatalf("stage = %v before expiry", c.Stage())
	}
	clock.Advance(time.Second)
	if c.Stage() != StageIntro {
		t.Fatalf("stage = %v after expiry, want intro", c.Stage())
	}
}

func TestSkipCancelsCountdown(t *testing.T) {
	c, clock, rec := newTestController(t)
	c.ArmCountdown(10 * time.Second)
	c.Skip()
	clock.Advance(time.Minute)

	if n := len(rec.entered); n != 1 {
		t.Fatalf("entered = %v, want only intro", rec.entered)
	}
}

func TestArmExpiredCountdown(t *testing.T) {
	c, _, _ := newTestController(t)
	c.ArmCountdown(-time.Second)
	if c.Stage() != StageIntro {
		t.Fatalf("stage = %v, want intro", c.Stage())
	}
}

func TestMountedAndGalleryVisibility(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Skip()
	if c.GalleryVisible(true) {
		t.Error("gallery visible during intro")
	}
	c.PlaybackStarted()
	if got := c.Mounted(); !slices.Equal(got, []Stage{StagePlayback, StageGallery}) {
		t.Errorf("mounted = %v", got)
	}
	if !c.GalleryVisible(true) || c.GalleryVisible(false) {
		t.Error("gallery visibility should follow isPlaying")
	}
}

func TestStageText(t *testing.T) {
	for s := StageCountdown; s <= StageEnd; s++ {
		b, _ := s.MarshalText()
		var back Stage
		if err := back.UnmarshalText(b); err != nil || back != s {
			t.Errorf("round trip %v: got %v, %v", s, back, err)
		}
	}
	if _, err := ParseStage("finale"); err == nil {
		t.Error("expected error for unknown stage")
	}
}
