// Package experience loads the static configuration of one birthday
// reveal: the song and its restricted range, lyric and memory windows,
// the quiz, the secret code and the cosmetic theme palettes.
//
// A definition is checked as a whole when it is built. Every problem is
// reported at once and nothing is usable until the definition is valid.
package experience

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/playperu/reveal/internal/gate"
	"github.com/playperu/reveal/internal/playback"
	"github.com/playperu/reveal/internal/scene"
	"github.com/playperu/reveal/internal/timeline"
)

// Definition is the on-disk shape of an experience. The same tags serve
// YAML, TOML and JSON files.
type Definition struct {
	Title           string     `yaml:"title" toml:"title" json:"title"`
	Recipient       string     `yaml:"recipient" toml:"recipient" json:"recipient"`
	PassphraseHash  string     `yaml:"passphrase_hash" toml:"passphrase_hash" json:"passphrase_hash"`
	CountdownTarget string     `yaml:"countdown_target" toml:"countdown_target" json:"countdown_target"`
	Media           Media      `yaml:"media" toml:"media" json:"media"`
	Lyrics          []Lyric    `yaml:"lyrics" toml:"lyrics" json:"lyrics"`
	Memories        []Memory   `yaml:"memories" toml:"memories" json:"memories"`
	Quiz            []Question `yaml:"quiz" toml:"quiz" json:"quiz"`
	Gate            Gate       `yaml:"gate" toml:"gate" json:"gate"`
	Themes          []string   `yaml:"themes" toml:"themes" json:"themes"`
	DefaultTheme    string     `yaml:"default_theme" toml:"default_theme" json:"default_theme"`
}

type Media struct {
	URL   string  `yaml:"url" toml:"url" json:"url"`
	Start float64 `yaml:"start" toml:"start" json:"start"`
	End   float64 `yaml:"end" toml:"end" json:"end"`
}

type Lyric struct {
	Start float64 `yaml:"start" toml:"start" json:"start"`
	End   float64 `yaml:"end" toml:"end" json:"end"`
	Text  string  `yaml:"text" toml:"text" json:"text"`
	Kind  string  `yaml:"kind" toml:"kind" json:"kind"`
}

type Memory struct {
	ID               string  `yaml:"id" toml:"id" json:"id"`
	Start            float64 `yaml:"start" toml:"start" json:"start"`
	End              float64 `yaml:"end" toml:"end" json:"end"`
	MediaURL         string  `yaml:"media_url" toml:"media_url" json:"media_url"`
	Caption          string  `yaml:"caption" toml:"caption" json:"caption"`
	Title            string  `yaml:"title" toml:"title" json:"title"`
	Body             string  `yaml:"body" toml:"body" json:"body"`
	DisplayTimestamp string  `yaml:"display_timestamp" toml:"display_timestamp" json:"display_timestamp"`
	Variant          string  `yaml:"variant" toml:"variant" json:"variant"`
	Video            bool    `yaml:"video" toml:"video" json:"video"`
}

type Question struct {
	Text    string   `yaml:"question" toml:"question" json:"question"`
	Options []string `yaml:"options" toml:"options" json:"options"`
	Correct int      `yaml:"correct" toml:"correct" json:"correct"`
}

type Gate struct {
	Secret           string  `yaml:"secret" toml:"secret" json:"secret"`
	CodeLength       int     `yaml:"code_length" toml:"code_length" json:"code_length"`
	RequiredTaps     int     `yaml:"required_taps" toml:"required_taps" json:"required_taps"`
	QuizErrorSeconds float64 `yaml:"quiz_error_seconds" toml:"quiz_error_seconds" json:"quiz_error_seconds"`
	CodeErrorSeconds float64 `yaml:"code_error_seconds" toml:"code_error_seconds" json:"code_error_seconds"`
}

// Experience is a validated, immutable experience ready to drive a
// session.
type Experience struct {
	Slug         string
	Title        string
	Recipient    string
	MediaURL     string
	Range        playback.Range
	Countdown    scene.Countdown
	Lyrics       *timeline.LyricMatcher
	Memories     *timeline.MemoryMatcher
	Gate         gate.Config
	Themes       []string
	DefaultTheme string

	passphraseHash string
}

// Protected reports whether joining requires a passphrase.
func (e *Experience) Protected() bool { return e.passphraseHash != "" }

// PassphraseHash returns the bcrypt hash viewers must match to join.
func (e *Experience) PassphraseHash() string { return e.passphraseHash }

// HasTheme reports whether name is one of the experience's palettes.
func (e *Experience) HasTheme(name string) bool { return slices.Contains(e.Themes, name) }

// Validate reports every configuration problem in d.
func (d *Definition) Validate() error {
	_, err := d.Build("check")
	return err
}

// Build validates d and compiles it into an Experience.
func (d *Definition) Build(slug string) (*Experience, error) {
	var errs []error
	add := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
		}
	}

	if strings.TrimSpace(d.Title) == "" {
		add("title", errors.New("required"))
	}
	if strings.TrimSpace(d.Media.URL) == "" {
		add("media.url", errors.New("required"))
	}
	rng := playback.Range{Start: d.Media.Start, End: d.Media.End}
	add("media", rng.Validate())

	var countdown scene.Countdown
	if d.CountdownTarget != "" {
		t, err := time.Parse(time.RFC3339, d.CountdownTarget)
		add("countdown_target", err)
		countdown.Target = t
	}
	if d.PassphraseHash != "" && !strings.HasPrefix(d.PassphraseHash, "$2") {
		add("passphrase_hash", errors.New("not a bcrypt hash"))
	}

	// The matchers name their own section.
	lyrics, err := d.lyricMatcher()
	if err != nil {
		errs = append(errs, err)
	}
	memories, err := d.memoryMatcher()
	if err != nil {
		errs = append(errs, err)
	}

	gc := d.gateConfig().WithDefaults()
	add("gate", gc.Validate())

	themes := slices.Clone(d.Themes)
	def := d.DefaultTheme
	if len(themes) > 0 {
		if def == "" {
			def = themes[0]
		}
		if !slices.Contains(themes, def) {
			add("default_theme", fmt.Errorf("%q is not one of the themes", def))
		}
	} else if def != "" {
		add("default_theme", errors.New("set without any themes"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Experience{
		Slug:           slug,
		Title:          d.Title,
		Recipient:      d.Recipient,
		MediaURL:       d.Media.URL,
		Range:          rng,
		Countdown:      countdown,
		Lyrics:         lyrics,
		Memories:       memories,
		Gate:           gc,
		Themes:         themes,
		DefaultTheme:   def,
		passphraseHash: d.PassphraseHash,
	}, nil
}

func (d *Definition) lyricMatcher() (*timeline.LyricMatcher, error) {
	windows := make([]timeline.Window[timeline.LyricLine], len(d.Lyrics))
	var errs []error
	for i, l := range d.Lyrics {
		kind, err := timeline.ParseLyricKind(l.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("lyrics: line %d: %w", i, err))
		}
		windows[i] = timeline.Window[timeline.LyricLine]{
			Start:   l.Start,
			End:     l.End,
			Payload: timeline.LyricLine{Text: l.Text, Kind: kind},
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return timeline.NewLyricMatcher(windows)
}

func (d *Definition) memoryMatcher() (*timeline.MemoryMatcher, error) {
	windows := make([]timeline.Window[timeline.MemoryMoment], len(d.Memories))
	for i, m := range d.Memories {
		windows[i] = timeline.Window[timeline.MemoryMoment]{
			Start: m.Start,
			End:   m.End,
			Payload: timeline.MemoryMoment{
				ID:               m.ID,
				MediaURL:         m.MediaURL,
				Caption:          m.Caption,
				Title:            m.Title,
				Body:             m.Body,
				DisplayTimestamp: m.DisplayTimestamp,
				Variant:          m.Variant,
				IsVideo:          m.Video,
			},
		}
	}
	return timeline.NewMemoryMatcher(windows)
}

func (d *Definition) gateConfig() gate.Config {
	qs := make([]gate.Question, len(d.Quiz))
	for i, q := range d.Quiz {
		qs[i] = gate.Question{Text: q.Text, Options: slices.Clone(q.Options), Correct: q.Correct}
	}
	return gate.Config{
		Questions:    qs,
		Secret:       d.Gate.Secret,
		CodeLength:   d.Gate.CodeLength,
		RequiredTaps: d.Gate.RequiredTaps,
		QuizErrorFor: seconds(d.Gate.QuizErrorSeconds),
		CodeErrorFor: seconds(d.Gate.CodeErrorSeconds),
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
