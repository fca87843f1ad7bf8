package scene

import "time"

// FinalWindow is how close to the target the countdown switches to its
// big single-number display.
const FinalWindow = 5

// Part is one unit of the remaining time, e.g. {"hours", 3}.
type Part struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Countdown computes what the countdown screen shows. A zero Target means
// there is nothing to wait for.
type Countdown struct {
	Target time.Time
}

// Remaining is the time left until Target, never negative.
func (c Countdown) Remaining(now time.Time) time.Duration {
	if c.Target.IsZero() {
		return 0
	}
	return max(c.Target.Sub(now), 0)
}

// Seconds is the remaining time rounded up to whole seconds.
func (c Countdown) Seconds(now time.Time) int {
	r := c.Remaining(now)
	return int((r + time.Second - 1) / time.Second)
}

// Parts splits the remaining seconds into days, hours, minutes and
// seconds, dropping the zero ones.
func (c Countdown) Parts(now time.Time) []Part {
	total := c.Seconds(now)
	all := []Part{
		{"days", total / 86400},
		{"hours", total % 86400 / 3600},
		{"minutes", total % 3600 / 60},
		{"seconds", total % 60},
	}
	parts := all[:0]
	for _, p := range all {
		if p.Value > 0 {
			parts = append(parts, p)
		}
	}
	return parts
}

// Final reports whether the countdown is in its last FinalWindow seconds.
func (c Countdown) Final(now time.Time) bool {
	s := c.Seconds(now)
	return s > 0 && s <= FinalWindow
}
