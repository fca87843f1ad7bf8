package scene

import "strings"

// RequiredBlows is how many blows put the candles out.
const RequiredBlows = 3

// CakeState is a snapshot of the cake sub-process.
type CakeState struct {
	Blows     int    `json:"blows"`
	Required  int    `json:"required"`
	BlownOut  bool   `json:"blownOut"`
	Cut       bool   `json:"cut"`
	Wish      string `json:"wish,omitempty"`
	Completed bool   `json:"completed"`
}

// Cake counts candle blows and then waits for an explicit cut. Cutting
// is what completes the cake; blowing out the candles alone does not.
type Cake struct {
	blows int
	cut   bool
	wish  string
}

// Blow counts one blow. Blows past the requirement are ignored. It
// reports whether the blow was counted.
func (c *Cake) Blow() bool {
	if c.blows >= RequiredBlows {
		return false
	}
	c.blows++
	return true
}

func (c *Cake) BlownOut() bool { return c.blows >= RequiredBlows }

// Cut cuts the cake once the candles are out. It reports true only for
// the cut that completes the cake.
func (c *Cake) Cut() bool {
	if !c.BlownOut() || c.cut {
		return false
	}
	c.cut = true
	return true
}

// MakeWish stores a wish once the candles are out. Blank wishes are
// ignored.
func (c *Cake) MakeWish(text string) bool {
	text = strings.TrimSpace(text)
	if !c.BlownOut() || text == "" {
		return false
	}
	c.wish = text
	return true
}

func (c *Cake) State() CakeState {
	return CakeState{
		Blows:     c.blows,
		Required:  RequiredBlows,
		BlownOut:  c.BlownOut(),
		Cut:       c.cut,
		Wish:      c.wish,
		Completed: c.cut,
	}
}
