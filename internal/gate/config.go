package gate

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultCodeLength   = 8
	DefaultRequiredTaps = 3
	DefaultQuizErrorFor = 2 * time.Second
	DefaultCodeErrorFor = 3 * time.Second
)

var (
	ErrNoQuestions   = errors.New("quiz needs at least one question")
	ErrBadQuestion   = errors.New("invalid quiz question")
	ErrInvalidSecret = errors.New("secret code must be digits of the configured length")
)

// Question is one multiple-choice quiz entry. Correct indexes Options.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Correct int      `json:"-"`
}

// Config is fixed when the gate is built.
type Config struct {
	Questions    []Question
	Secret       string
	CodeLength   int
	RequiredTaps int
	QuizErrorFor time.Duration
	CodeErrorFor time.Duration
}

// WithDefaults fills zero bounds with the package defaults.
func (c Config) WithDefaults() Config {
	if c.CodeLength == 0 {
		c.CodeLength = DefaultCodeLength
	}
	if c.RequiredTaps == 0 {
		c.RequiredTaps = DefaultRequiredTaps
	}
	if c.QuizErrorFor == 0 {
		c.QuizErrorFor = DefaultQuizErrorFor
	}
	if c.CodeErrorFor == 0 {
		c.CodeErrorFor = DefaultCodeErrorFor
	}
	return c
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	c = c.WithDefaults()
	var errs []error
	if c.CodeLength < 0 || c.RequiredTaps < 0 || c.QuizErrorFor < 0 || c.CodeErrorFor < 0 {
		errs = append(errs, errors.New("gate limits must not be negative"))
	}
	if len(c.Questions) == 0 {
		errs = append(errs, ErrNoQuestions)
	}
	for i, q := range c.Questions {
		switch {
		case q.Text == "":
			errs = append(errs, fmt.Errorf("question %d: empty text: %w", i, ErrBadQuestion))
		case len(q.Options) < 2:
			errs = append(errs, fmt.Errorf("question %d: needs at least two options: %w", i, ErrBadQuestion))
		case q.Correct < 0 || q.Correct >= len(q.Options):
			errs = append(errs, fmt.Errorf("question %d: correct option %d out of range [0, %d): %w",
				i, q.Correct, len(q.Options), ErrBadQuestion))
		}
	}
	if len(c.Secret) != c.CodeLength || !allDigits(c.Secret) {
		errs = append(errs, fmt.Errorf("%w (length %d)", ErrInvalidSecret, c.CodeLength))
	}
	return errors.Join(errs...)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
