package session

import (
	"github.com/playperu/reveal/internal/gate"
	"github.com/playperu/reveal/internal/scene"
	"github.com/playperu/reveal/internal/timeline"
)

// SignalType names an outbound signal.
type SignalType string

const (
	SignalSceneChanged        SignalType = "sceneChanged"
	SignalChallengeCompleted  SignalType = "challengeCompleted"
	SignalActiveLyricChanged  SignalType = "activeLyricChanged"
	SignalActiveMemoryChanged SignalType = "activeMemoryChanged"
	SignalProgress            SignalType = "progress"
	SignalPlayback            SignalType = "playback"
	SignalGate                SignalType = "gate"
	SignalCake                SignalType = "cake"
	SignalMedia               SignalType = "media"
	SignalScroll              SignalType = "scroll"
	SignalCountdown           SignalType = "countdown"
)

// Signal is one outbound notification. Seq increases by one per signal
// within a session.
type Signal struct {
	Seq  uint64     `json:"seq"`
	Slug string     `json:"slug"`
	Type SignalType `json:"type"`
	Data any        `json:"data,omitempty"`
}

// Sink receives signals on the session goroutine. Implementations must
// not block.
type Sink interface {
	Emit(Signal)
}

type SinkFunc func(Signal)

func (f SinkFunc) Emit(s Signal) { f(s) }

// Sinks fans a signal out to several sinks in order.
type Sinks []Sink

func (ss Sinks) Emit(s Signal) {
	for _, sink := range ss {
		if sink != nil {
			sink.Emit(s)
		}
	}
}

type SceneChanged struct {
	Stage   scene.Stage   `json:"stage"`
	Mounted []scene.Stage `json:"mounted"`
}

type LyricChanged struct {
	Index    int                                  `json:"index"`
	Current  *timeline.Window[timeline.LyricLine] `json:"current"`
	Previous *timeline.Window[timeline.LyricLine] `json:"previous"`
	Next     *timeline.Window[timeline.LyricLine] `json:"next"`
}

type MemoryChanged struct {
	Index         int                                     `json:"index"`
	Current       *timeline.Window[timeline.MemoryMoment] `json:"current"`
	LocalProgress float64                                 `json:"localProgress"`
	Selected      int                                     `json:"selected"`
}

// Progress carries both progress values. Global is through the whole
// source; Local is through the memory span.
type Progress struct {
	Position float64 `json:"position"`
	Global   float64 `json:"global"`
	Local    float64 `json:"local"`
}

// GateChanged carries the gate after an input. Outcome is empty when the
// gate changed on its own.
type GateChanged struct {
	Outcome gate.Outcome  `json:"outcome,omitempty"`
	Gate    gate.Snapshot `json:"gate"`
}

// MediaCommand asks the remote media element to act.
type MediaCommand struct {
	Command  string  `json:"command"`
	Position float64 `json:"position,omitempty"`
}

const (
	CommandPlay  = "play"
	CommandPause = "pause"
	CommandSeek  = "seek"
)

type Scroll struct {
	Stage scene.Stage `json:"stage"`
}

type CountdownTick struct {
	Seconds int          `json:"seconds"`
	Parts   []scene.Part `json:"parts"`
	Final   bool         `json:"final"`
}
