package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/reveal/internal/session"
)

const subscriberBuffer = 64

// Broker is an in-process pub/sub for session signals, keyed by
// experience slug. Each subscriber gets the JSON encoding of every signal
// published after it subscribed.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded signals for slug.
func (b *Broker) Subscribe(slug string) chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	b.mu.Lock()
	if b.subs[slug] == nil {
		b.subs[slug] = make(map[chan []byte]struct{})
	}
	b.subs[slug][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the slug's subscribers.
func (b *Broker) Unsubscribe(slug string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[slug], ch)
	if len(b.subs[slug]) == 0 {
		delete(b.subs, slug)
	}
	b.mu.Unlock()
}

// Publish sends a signal to all subscribers of its slug. It never blocks
// the session goroutine that calls it.
func (b *Broker) Publish(sig session.Signal) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := b.subs[sig.Slug]
	if len(subs) == 0 {
		return
	}
	data, err := json.Marshal(sig)
	if err != nil {
		return
	}
	for ch := range subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow; it can resync from /state.
		}
	}
}

// Emit makes the broker a session.Sink.
func (b *Broker) Emit(sig session.Signal) { b.Publish(sig) }

// Subscribers returns the number of subscribers for slug.
func (b *Broker) Subscribers(slug string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[slug])
}
