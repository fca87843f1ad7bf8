package session

import "github.com/playperu/reveal/internal/playback"

// remoteMedia forwards media commands to the viewer's media element as
// signals. A play stays pending until the client reports media.playing or
// media.rejected.
type remoteMedia struct {
	emit func(SignalType, any)
}

func (m remoteMedia) Play() error {
	m.emit(SignalMedia, MediaCommand{Command: CommandPlay})
	return playback.ErrPlayPending
}

func (m remoteMedia) Pause() {
	m.emit(SignalMedia, MediaCommand{Command: CommandPause})
}

func (m remoteMedia) Seek(seconds float64) {
	m.emit(SignalMedia, MediaCommand{Command: CommandSeek, Position: seconds})
}
