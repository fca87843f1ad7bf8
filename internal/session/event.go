package session

import "errors"

var ErrUnknownEvent = errors.New("unknown event type")

// EventType names an inbound event from the media element or the viewer.
type EventType string

const (
	EventMediaReady    EventType = "media.ready"
	EventMediaPosition EventType = "media.position"
	EventMediaEnded    EventType = "media.ended"
	EventMediaRejected EventType = "media.rejected"
	EventMediaPlaying  EventType = "media.playing"

	EventStart  EventType = "start"
	EventSkip   EventType = "skip"
	EventReplay EventType = "replay"
	EventPause  EventType = "pause"

	EventTap          EventType = "tap"
	EventAnswer       EventType = "answer"
	EventCode         EventType = "code"
	EventDigit        EventType = "digit"
	EventBackspace    EventType = "backspace"
	EventSubmitCode   EventType = "submitCode"
	EventOpenRealGift EventType = "openRealGift"

	EventBlow EventType = "blow"
	EventCut  EventType = "cut"
	EventWish EventType = "wish"

	EventMemoryPrev EventType = "memory.prev"
	EventMemoryNext EventType = "memory.next"
)

// EventTypes lists every accepted event type.
var EventTypes = []EventType{
	EventMediaReady, EventMediaPosition, EventMediaEnded, EventMediaRejected, EventMediaPlaying,
	EventStart, EventSkip, EventReplay, EventPause,
	EventTap, EventAnswer, EventCode, EventDigit, EventBackspace, EventSubmitCode, EventOpenRealGift,
	EventBlow, EventCut, EventWish,
	EventMemoryPrev, EventMemoryNext,
}

// Event is one inbound event. Only the fields its type uses are read.
type Event struct {
	Type     EventType `json:"type"`
	Position float64   `json:"position,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Index    int       `json:"index,omitempty"`
	Code     string    `json:"code,omitempty"`
	Digit    string    `json:"digit,omitempty"`
	Text     string    `json:"text,omitempty"`
}
