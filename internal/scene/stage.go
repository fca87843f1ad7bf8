// Package scene sequences the coarse narrative stages of the experience.
// Stages only move forward; replaying the song changes the playback
// position, never the stage.
package scene

import "fmt"

type Stage int

const (
	StageCountdown Stage = iota
	StageIntro
	StagePlayback
	StageGallery
	StageCake
	StageGift
	StageEnd
)

var stageNames = [...]string{
	StageCountdown: "countdown",
	StageIntro:     "intro",
	StagePlayback:  "playback",
	StageGallery:   "gallery",
	StageCake:      "cake",
	StageGift:      "gift",
	StageEnd:       "end",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stage) UnmarshalText(b []byte) error {
	v, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}
