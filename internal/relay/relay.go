// Package relay mirrors session signals onto Redis pub/sub so that
// processes other than the one running the session can follow it.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/reveal/internal/session"
)

const channelPrefix = "reveal:"

// Channel is the Redis channel carrying signals for slug.
func Channel(slug string) string { return channelPrefix + slug }

// publisher is the part of redis.Cmdable the relay uses.
type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Publisher is a session.Sink that forwards signals to Redis from its
// own goroutine. Emit never blocks; when the buffer is full the signal
// is dropped and counted.
type Publisher struct {
	client  publisher
	logger  *slog.Logger
	queue   chan session.Signal
	dropped atomic.Uint64
}

func NewPublisher(client publisher, logger *slog.Logger, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		client: client,
		logger: logger,
		queue:  make(chan session.Signal, buffer),
	}
}

func (p *Publisher) Emit(sig session.Signal) {
	select {
	case p.queue <- sig:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many signals were discarded because Redis fell
// behind.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// Run publishes queued signals until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-p.queue:
			if err := p.publish(ctx, sig); err != nil {
				p.logger.Warn("relay publish failed", "slug", sig.Slug, "type", sig.Type, "error", err)
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, sig session.Signal) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("encoding signal: %w", err)
	}
	return p.client.Publish(ctx, Channel(sig.Slug), data).Err()
}

// Message is a signal as read back from Redis. Data stays encoded since
// its shape depends on Type.
type Message struct {
	Seq  uint64             `json:"seq"`
	Slug string             `json:"slug"`
	Type session.SignalType `json:"type"`
	Data json.RawMessage    `json:"data,omitempty"`
}

// Subscribe calls fn for every signal published for slug until ctx is
// done or fn returns an error.
func Subscribe(ctx context.Context, rdb *redis.Client, slug string, fn func(Message) error) error {
	sub := rdb.Subscribe(ctx, Channel(slug))
	defer sub.Close()

	// Wait for the subscription to be confirmed before reading.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", Channel(slug), err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				return fmt.Errorf("decoding signal: %w", err)
			}
			if err := fn(msg); err != nil {
				return err
			}
		}
	}
}

// Open parses rawURL, connects and pings.
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// Checker adapts *redis.Client to health.Checker.
type Checker struct{ Client *redis.Client }

func (c Checker) Check(ctx context.Context) error { return c.Client.Ping(ctx).Err() }
