package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/reveal/internal/session"
)

type published struct {
	channel string
	payload []byte
}

type fakeRedis struct {
	mu   sync.Mutex
	got  []published
	err  error
	seen chan struct{}
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	f.mu.Lock()
	f.got = append(f.got, published{channel: channel, payload: message.([]byte)})
	f.mu.Unlock()
	if f.err != nil {
		cmd.SetErr(f.err)
	}
	f.seen <- struct{}{}
	return cmd
}

func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   0,
	})
}

func TestPublisherForwardsSignals(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"redis ok", nil},
		{"redis failing keeps running", errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRedis{err: tt.err, seen: make(chan struct{}, 4)}
			p := NewPublisher(fake, slog.New(slog.DiscardHandler), 4)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error)
			go func() { done <- p.Run(ctx) }()

			p.Emit(session.Signal{Seq: 1, Slug: "lima", Type: session.SignalSceneChanged})
			p.Emit(session.Signal{Seq: 2, Slug: "andes", Type: session.SignalProgress})
			for range 2 {
				select {
				case <-fake.seen:
				case <-time.After(2 * time.Second):
					t.Fatal("timed out waiting for publish")
				}
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Run = %v, want nil", err)
			}

			fake.mu.Lock()
			defer fake.mu.Unlock()
			wantChannels := []string{"reveal:lima", "reveal:andes"}
			for i, want := range wantChannels {
				if fake.got[i].channel != want {
					t.Errorf("channel[%d] = %q, want %q", i, fake.got[i].channel, want)
				}
				var msg Message
				if err := json.Unmarshal(fake.got[i].payload, &msg); err != nil {
					t.Fatalf("payload[%d]: %v", i, err)
				}
				if msg.Seq != uint64(i+1) {
					t.Errorf("seq[%d] = %d, want %d", i, msg.Seq, i+1)
				}
			}
		})
	}
}

func TestPublisherDropsWhenFull(t *testing.T) {
	fake := &fakeRedis{seen: make(chan struct{}, 8)}
	p := NewPublisher(fake, slog.New(slog.DiscardHandler), 2)

	// No Run loop: the queue fills and Emit must not block.
	for i := range 5 {
		p.Emit(session.Signal{Seq: uint64(i), Slug: "lima"})
	}
	if got := p.Dropped(); got != 3 {
		t.Errorf("Dropped() = %d, want 3", got)
	}
}

func TestChecker(t *testing.T) {
	rdb := deadRedis()
	defer rdb.Close()

	if err := (Checker{Client: rdb}).Check(context.Background()); err == nil {
		t.Error("Check() = nil, want error for unreachable redis")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"bad scheme", "http://localhost:6379"},
		{"unreachable", "redis://localhost:1/0?dial_timeout=10ms&max_retries=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb, err := Open(context.Background(), tt.url)
			if err == nil {
				rdb.Close()
				t.Fatalf("Open(%q) = nil error, want error", tt.url)
			}
		})
	}
}
