// Package gate implements the challenge gate in front of the final
// reveal: tap the box, pass the quiz, enter the secret code, then open.
//
// User mistakes are ordinary state, never errors. Inputs that do not fit
// the current stage or exceed a bound are ignored and reported as such.
package gate

import (
	"fmt"
	"strings"
	"time"

	"github.com/playperu/reveal/internal/timer"
)

type Stage int

const (
	StageTap Stage = iota
	StageQuiz
	StageCodeLock
	StageReady
	StageCompleted
)

var stageNames = [...]string{"tap", "quiz", "code-lock", "ready", "completed"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("gate-stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stage) UnmarshalText(b []byte) error {
	for i, n := range stageNames {
		if n == string(b) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown gate stage %q", b)
}

// Outcome describes what an input did.
type Outcome string

const (
	Ignored  Outcome = "ignored"
	Counted  Outcome = "counted"
	Correct  Outcome = "correct"
	Wrong    Outcome = "wrong"
	Advanced Outcome = "advanced"
	Edited   Outcome = "edited"
	Opened   Outcome = "opened"
	Closed   Outcome = "closed"
	Reset    Outcome = "reset"
)

// Feedback kinds shown to the viewer until they clear themselves.
const (
	ErrorWrongAnswer = "wrong-answer"
	ErrorWrongCode   = "wrong-code"
)

const timerError = "error"

// Snapshot is a read-only view of the gate. It never carries the secret
// or the correct quiz options.
type Snapshot struct {
	Stage          Stage     `json:"stage"`
	TapCount       int       `json:"tapCount"`
	RequiredTaps   int       `json:"requiredTaps"`
	QuizIndex      int       `json:"quizIndex"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Question       *Question `json:"question,omitempty"`
	Code           string    `json:"code"`
	CodeLength     int       `json:"codeLength"`
	CanSubmit      bool      `json:"canSubmit"`
	Error          string    `json:"error,omitempty"`
	Opened         bool      `json:"opened"`
	HasEverOpened  bool      `json:"hasEverOpened"`
}

// Gate is the challenge state machine. It is not goroutine-safe; the
// scheduler must deliver error-clearing callbacks on the caller's loop.
type Gate struct {
	cfg      Config
	timers   *timer.Group
	onChange func()

	stage      Stage
	taps       int
	quizIndex  int
	correct    int
	code       string
	errKind    string
	opened     bool
	everOpened bool
}

// New validates cfg and returns a gate at the tap stage. onChange, if
// set, is called when the gate changes on its own (an error clearing).
func New(cfg Config, sched timer.Scheduler, onChange func()) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gate: %w", err)
	}
	cfg = cfg.WithDefaults()
	qs := make([]Question, len(cfg.Questions))
	for i, q := range cfg.Questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	cfg.Questions = qs
	return &Gate{cfg: cfg, timers: timer.NewGroup(sched), onChange: onChange}, nil
}

func (g *Gate) Stage() Stage { return g.stage }

func (g *Gate) Completed() bool { return g.stage == StageCompleted }

// Tap handles a tap on the gift box. Taps fill the tap challenge, open the
// box once it is ready, and toggle it open and closed afterwards.
func (g *Gate) Tap() Outcome {
	switch g.stage {
	case StageTap:
		g.taps++
		if g.taps >= g.cfg.RequiredTaps {
			g.taps = 0
			g.enter(StageQuiz)
			return Advanced
		}
		return Counted
	case StageReady:
		g.opened = true
		g.everOpened = true
		g.enter(StageCompleted)
		return Opened
	case StageCompleted:
		g.opened = !g.opened
		if g.opened {
			return Opened
		}
		return Closed
	default:
		return Ignored
	}
}

// Answer picks option i for the current quiz question.
func (g *Gate) Answer(i int) Outcome {
	if g.stage != StageQuiz {
		return Ignored
	}
	q := g.cfg.Questions[g.quizIndex]
	if i < 0 || i >= len(q.Options) {
		return Ignored
	}
	if i != q.Correct {
		g.fail(ErrorWrongAnswer, g.cfg.QuizErrorFor)
		return Wrong
	}
	g.correct++
	if g.quizIndex == len(g.cfg.Questions)-1 {
		g.enter(StageCodeLock)
		return Advanced
	}
	g.quizIndex++
	return Correct
}

// SetCode replaces the code buffer. Non-digits are dropped and the result
// is cut to the code length.
func (g *Gate) SetCode(buf string) Outcome {
	if g.stage != StageCodeLock {
		return Ignored
	}
	code := sanitize(buf, g.cfg.CodeLength)
	if code == g.code {
		return Ignored
	}
	g.code = code
	return Edited
}

// AppendDigit adds one digit to a code buffer that is not yet full.
func (g *Gate) AppendDigit(r rune) Outcome {
	if g.stage != StageCodeLock || r < '0' || r > '9' || len(g.code) >= g.cfg.CodeLength {
		return Ignored
	}
	g.code += string(r)
	return Edited
}

// Backspace removes the last digit.
func (g *Gate) Backspace() Outcome {
	if g.stage != StageCodeLock || g.code == "" {
		return Ignored
	}
	g.code = g.code[:len(g.code)-1]
	return Edited
}

// SubmitCode checks a full buffer against the secret. A wrong code keeps
// the buffer so the viewer can fix single digits.
func (g *Gate) SubmitCode() Outcome {
	if g.stage != StageCodeLock || len(g.code) != g.cfg.CodeLength {
		return Ignored
	}
	if g.code != g.cfg.Secret {
		g.fail(ErrorWrongCode, g.cfg.CodeErrorFor)
		return Wrong
	}
	g.enter(StageReady)
	return Advanced
}

// OpenRealGift is the viewer leaving with the gift. It only applies to a
// completed gate, and restarts the whole gate so the experience can be
// repeated.
func (g *Gate) OpenRealGift() Outcome {
	if g.stage != StageCompleted {
		return Ignored
	}
	g.timers.CancelAll()
	*g = Gate{cfg: g.cfg, timers: g.timers, onChange: g.onChange}
	return Reset
}

// Close cancels pending error timers.
func (g *Gate) Close() { g.timers.CancelAll() }

func (g *Gate) Snapshot() Snapshot {
	s := Snapshot{
		Stage:          g.stage,
		TapCount:       g.taps,
		RequiredTaps:   g.cfg.RequiredTaps,
		QuizIndex:      g.quizIndex,
		TotalQuestions: len(g.cfg.Questions),
		CorrectAnswers: g.correct,
		Code:           g.code,
		CodeLength:     g.cfg.CodeLength,
		CanSubmit:      g.stage == StageCodeLock && len(g.code) == g.cfg.CodeLength,
		Error:          g.errKind,
		Opened:         g.opened,
		HasEverOpened:  g.everOpened,
	}
	if g.stage == StageQuiz {
		q := g.cfg.Questions[g.quizIndex]
		s.Question = &Question{Text: q.Text, Options: append([]string(nil), q.Options...)}
	}
	return s
}

func (g *Gate) enter(s Stage) {
	g.clearError()
	g.stage = s
}

// fail shows kind for d. A repeated failure restarts the clock.
func (g *Gate) fail(kind string, d time.Duration) {
	g.errKind = kind
	g.timers.Schedule(timerError, d, func() {
		g.errKind = ""
		if g.onChange != nil {
			g.onChange()
		}
	})
}

func (g *Gate) clearError() {
	g.errKind = ""
	g.timers.Cancel(timerError)
}

func sanitize(s string, limit int) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() >= limit {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
