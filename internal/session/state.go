package session

import (
	"github.com/playperu/reveal/internal/gate"
	"github.com/playperu/reveal/internal/playback"
	"github.com/playperu/reveal/internal/scene"
	"github.com/playperu/reveal/internal/timeline"
)

// State is an immutable snapshot of a whole session.
type State struct {
	Slug           string               `json:"slug"`
	Stage          scene.Stage          `json:"stage"`
	Mounted        []scene.Stage        `json:"mounted"`
	GalleryVisible bool                 `json:"galleryVisible"`
	Playback       playback.State       `json:"playback"`
	Range          playback.Range       `json:"range"`
	Progress       Progress             `json:"progress"`
	Lyric          timeline.LyricMatch  `json:"lyric"`
	Memory         timeline.MemoryMatch `json:"memory"`
	Selected       int                  `json:"selected"`
	Countdown      CountdownTick        `json:"countdown"`
	Cake           scene.CakeState      `json:"cake"`
	Gate           gate.Snapshot        `json:"gate"`
}
