// Package session runs one viewing of an experience. A single goroutine
// owns the playback clock, the matchers, the scene controller, the cake
// and the challenge gate; inbound events and timer callbacks are both
// queued onto that goroutine, so no component state is ever shared.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/playperu/reveal/internal/experience"
	"github.com/playperu/reveal/internal/gate"
	"github.com/playperu/reveal/internal/playback"
	"github.com/playperu/reveal/internal/scene"
	"github.com/playperu/reveal/internal/timeline"
	"github.com/playperu/reveal/internal/timer"
)

var (
	ErrClosed         = errors.New("session closed")
	ErrAlreadyRunning = errors.New("session already running")
)

const (
	defaultInbox  = 64
	countdownTick = time.Second
	timerTick     = "countdown-tick"
)

type Options struct {
	// Scheduler runs fixed-delay timers. Defaults to timer.Real.
	Scheduler timer.Scheduler
	// Media is the element the clock drives. Nil means the viewer's
	// element, commanded through media signals.
	Media  playback.Media
	Sink   Sink
	Logger *slog.Logger
	Now    func() time.Time
	// InboxSize bounds queued events and timer callbacks.
	InboxSize int
}

type Session struct {
	exp  *experience.Experience
	log  *slog.Logger
	sink Sink
	now  func() time.Time

	inbox   chan func()
	done    chan struct{}
	running atomic.Bool

	// Owned by the loop goroutine.
	seq         uint64
	clock       *playback.Clock
	scene       *scene.Controller
	gate        *gate.Gate
	cake        scene.Cake
	carousel    *timeline.Carousel
	timers      *timer.Group
	lyricIndex  int
	memoryIndex int
}

// New builds a session for exp. It does nothing until Run is called.
func New(exp *experience.Experience, opts Options) (*Session, error) {
	if exp == nil {
		return nil, errors.New("session: nil experience")
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timer.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInbox
	}

	s := &Session{
		exp:         exp,
		log:         opts.Logger.With("slug", exp.Slug),
		sink:        opts.Sink,
		now:         opts.Now,
		inbox:       make(chan func(), opts.InboxSize),
		done:        make(chan struct{}),
		carousel:    timeline.NewCarousel(exp.Memories.Len()),
		lyricIndex:  -1,
		memoryIndex: -1,
	}

	// Every timer callback is re-queued onto the loop before it runs.
	sched := opts.Scheduler
	looped := timer.SchedulerFunc(func(d time.Duration, f func()) timer.Timer {
		return sched.AfterFunc(d, func() { s.post(f) })
	})

	media := opts.Media
	if media == nil {
		media = remoteMedia{emit: s.emit}
	}
	clock, err := playback.NewClock(media, exp.Range)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	g, err := gate.New(exp.Gate, looped, func() {
		s.emit(SignalGate, GateChanged{Gate: s.gate.Snapshot()})
	})
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s.clock = clock
	s.gate = g
	s.timers = timer.NewGroup(looped)
	s.scene = scene.NewController(looped, scene.Hooks{
		Entered: s.entered,
		Scroll:  func(st scene.Stage) { s.emit(SignalScroll, Scroll{Stage: st}) },
	})
	return s, nil
}

func (s *Session) Experience() *experience.Experience { return s.exp }

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run processes events until ctx is cancelled. It arms the countdown
// first; an experience without a countdown target opens on the intro.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)

	s.armCountdown()
	for {
		select {
		case <-ctx.Done():
			s.scene.Close()
			s.gate.Close()
			s.timers.CancelAll()
			return nil
		case fn := <-s.inbox:
			fn()
		}
	}
}

// Dispatch applies ev on the loop and returns the resulting state. Viewer
// mistakes and refused playback are state, not errors; only an unknown
// event type or a closed session is.
func (s *Session) Dispatch(ctx context.Context, ev Event) (State, error) {
	var st State
	err := s.do(ctx, func() error {
		if err := s.apply(ev); err != nil {
			return err
		}
		st = s.state()
		return nil
	})
	return st, err
}

// Snapshot returns the current state, assembled on the loop.
func (s *Session) Snapshot(ctx context.Context) (State, error) {
	var st State
	err := s.do(ctx, func() error {
		st = s.state()
		return nil
	})
	return st, err
}

func (s *Session) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	select {
	case s.inbox <- func() { reply <- fn() }:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues a timer callback. Callbacks for a stopped session are
// dropped.
func (s *Session) post(f func()) {
	select {
	case s.inbox <- f:
	case <-s.done:
	}
}

func (s *Session) apply(ev Event) error {
	switch ev.Type {
	case EventMediaReady:
		s.clock.Ready(ev.Duration)
		s.emitPlayback()
		s.recompute(s.clock.State())

	case EventMediaPosition:
		st, ended := s.clock.Tick(ev.Position)
		s.recompute(st)
		if ended {
			s.ended()
		}

	case EventMediaEnded:
		if s.clock.MediaEnded() {
			s.ended()
		}

	case EventMediaRejected:
		s.clock.Rejected()
		s.log.Warn("media element refused to play")
		s.emitPlayback()

	case EventMediaPlaying:
		if !s.clock.Confirm() {
			return nil
		}
		s.emitPlayback()
		s.scene.PlaybackStarted()
		s.recompute(s.clock.State())

	case EventStart:
		if s.scene.Stage() == scene.StageCountdown {
			return nil
		}
		if err := s.clock.Start(); err != nil {
			s.log.Warn("playback start failed", "error", err)
			s.emitPlayback()
			return nil
		}
		s.emitPlayback()
		if s.clock.State().IsPlaying {
			s.scene.PlaybackStarted()
		}
		s.recompute(s.clock.State())

	case EventReplay:
		if !s.clock.State().HasUserStartedOnce {
			return nil
		}
		if err := s.clock.Replay(); err != nil {
			s.log.Warn("replay failed", "error", err)
		}
		s.emitPlayback()
		s.recompute(s.clock.State())

	case EventPause:
		if s.clock.State().IsPlaying {
			s.clock.Pause()
			s.emitPlayback()
		}

	case EventSkip:
		s.scene.Skip()

	case EventTap, EventAnswer, EventCode, EventDigit, EventBackspace, EventSubmitCode, EventOpenRealGift:
		s.gateInput(ev)

	case EventBlow, EventCut, EventWish:
		s.cakeInput(ev)

	case EventMemoryPrev, EventMemoryNext:
		playing := s.clock.State().IsPlaying
		var moved bool
		if ev.Type == EventMemoryPrev {
			moved = s.carousel.Prev(playing)
		} else {
			moved = s.carousel.Next(playing)
		}
		if moved {
			s.emitMemory(s.exp.Memories.Match(s.clock.State().Position))
		}

	default:
		return fmt.Errorf("%q: %w", ev.Type, ErrUnknownEvent)
	}
	return nil
}

// recompute re-derives the active lyric and memory from a clock snapshot.
// Change signals fire only when the active index moves; progress fires on
// every call.
func (s *Session) recompute(st playback.State) {
	lm := s.exp.Lyrics.Match(st.Position)
	if lm.Index != s.lyricIndex {
		s.lyricIndex = lm.Index
		s.emit(SignalActiveLyricChanged, LyricChanged{
			Index:    lm.Index,
			Current:  lm.Current,
			Previous: lm.Previous,
			Next:     lm.Next,
		})
	}

	mm := s.exp.Memories.Match(st.Position)
	followed := s.carousel.Follow(mm.Index, st.IsPlaying)
	if mm.Index != s.memoryIndex || followed {
		s.memoryIndex = mm.Index
		s.emitMemory(mm)
	}

	s.emit(SignalProgress, Progress{
		Position: st.Position,
		Global:   st.Progress(),
		Local:    mm.LocalProgress,
	})
}

func (s *Session) ended() {
	s.log.Info("playback reached end of range", "position", s.clock.State().Position)
	s.emitPlayback()
	s.scene.PlaybackEnded()
}

func (s *Session) gateInput(ev Event) {
	if st := s.scene.Stage(); st != scene.StageGift && st != scene.StageEnd {
		return
	}
	before := s.gate.Stage()

	var out gate.Outcome
	switch ev.Type {
	case EventTap:
		out = s.gate.Tap()
	case EventAnswer:
		out = s.gate.Answer(ev.Index)
	case EventCode:
		out = s.gate.SetCode(ev.Code)
	case EventDigit:
		r := []rune(ev.Digit)
		if len(r) != 1 {
			return
		}
		out = s.gate.AppendDigit(r[0])
	case EventBackspace:
		out = s.gate.Backspace()
	case EventSubmitCode:
		out = s.gate.SubmitCode()
	case EventOpenRealGift:
		if !s.gate.Completed() {
			return
		}
		s.scene.GiftOpened(true)
		out = s.gate.OpenRealGift()
	}
	if out == gate.Ignored {
		return
	}

	if out == gate.Wrong {
		s.log.Info("challenge attempt failed", "stage", before)
	}
	s.emit(SignalGate, GateChanged{Outcome: out, Gate: s.gate.Snapshot()})
	if before != gate.StageCompleted && s.gate.Stage() == gate.StageCompleted {
		s.log.Info("challenge completed")
		s.emit(SignalChallengeCompleted, nil)
	}
}

func (s *Session) cakeInput(ev Event) {
	if s.scene.Stage() != scene.StageCake {
		return
	}
	var changed bool
	switch ev.Type {
	case EventBlow:
		changed = s.cake.Blow()
	case EventCut:
		if s.cake.Cut() {
			s.emit(SignalCake, s.cake.State())
			s.scene.CakeCompleted()
			return
		}
	case EventWish:
		changed = s.cake.MakeWish(ev.Text)
	}
	if changed {
		s.emit(SignalCake, s.cake.State())
	}
}

func (s *Session) entered(st scene.Stage) {
	if st != scene.StageCountdown {
		s.timers.Cancel(timerTick)
	}
	s.log.Info("scene changed", "stage", st)
	s.emit(SignalSceneChanged, SceneChanged{Stage: st, Mounted: s.scene.Mounted()})
}

func (s *Session) armCountdown() {
	remaining := s.exp.Countdown.Remaining(s.now())
	if remaining > 0 {
		s.tickCountdown()
	}
	s.scene.ArmCountdown(remaining)
}

func (s *Session) tickCountdown() {
	if s.scene.Stage() != scene.StageCountdown {
		return
	}
	s.emit(SignalCountdown, s.countdownView())
	s.timers.Schedule(timerTick, countdownTick, s.tickCountdown)
}

func (s *Session) countdownView() CountdownTick {
	now := s.now()
	c := s.exp.Countdown
	return CountdownTick{Seconds: c.Seconds(now), Parts: c.Parts(now), Final: c.Final(now)}
}

func (s *Session) state() State {
	st := s.clock.State()
	mm := s.exp.Memories.Match(st.Position)
	return State{
		Slug:           s.exp.Slug,
		Stage:          s.scene.Stage(),
		Mounted:        s.scene.Mounted(),
		GalleryVisible: s.scene.GalleryVisible(st.IsPlaying),
		Playback:       st,
		Range:          s.clock.Range(),
		Progress:       Progress{Position: st.Position, Global: st.Progress(), Local: mm.LocalProgress},
		Lyric:          s.exp.Lyrics.Match(st.Position),
		Memory:         mm,
		Selected:       s.carousel.Selected(),
		Countdown:      s.countdownView(),
		Cake:           s.cake.State(),
		Gate:           s.gate.Snapshot(),
	}
}

func (s *Session) emitPlayback() {
	s.emit(SignalPlayback, s.clock.State())
}

func (s *Session) emitMemory(mm timeline.MemoryMatch) {
	s.emit(SignalActiveMemoryChanged, MemoryChanged{
		Index:         mm.Index,
		Current:       mm.Current,
		LocalProgress: mm.LocalProgress,
		Selected:      s.carousel.Selected(),
	})
}

func (s *Session) emit(t SignalType, data any) {
	if s.sink == nil {
		return
	}
	s.seq++
	s.sink.Emit(Signal{Seq: s.seq, Slug: s.exp.Slug, Type: t, Data: data})
}
