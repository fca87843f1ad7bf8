package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playperu/reveal/internal/experience"
	"github.com/playperu/reveal/internal/session"
)

// Registry owns one live session per experience. Sessions are started on
// first use and run until Close.
type Registry struct {
	catalog *experience.Catalog
	sink    session.Sink
	logger  *slog.Logger
	metrics *Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*session.Session
	wg       sync.WaitGroup
}

// NewRegistry creates a registry whose sessions emit to sink.
func NewRegistry(catalog *experience.Catalog, sink session.Sink, logger *slog.Logger, metrics *Metrics) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		catalog:  catalog,
		sink:     sink,
		logger:   logger,
		metrics:  metrics,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session.Session),
	}
}

func (r *Registry) Catalog() *experience.Catalog { return r.catalog }

// Get returns the running session for slug, starting it if needed.
func (r *Registry) Get(slug string) (*session.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[slug]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if s, ok := r.sessions[slug]; ok {
		return s, nil
	}
	if r.ctx.Err() != nil {
		return nil, session.ErrClosed
	}

	s, err := r.start(slug)
	if err != nil {
		return nil, err
	}
	r.sessions[slug] = s
	return s, nil
}

func (r *Registry) start(slug string) (*session.Session, error) {
	exp, ok := r.catalog.Get(slug)
	if !ok {
		return nil, fmt.Errorf("experience %q: %w", slug, ErrNotFound)
	}
	s, err := session.New(exp, session.Options{
		Sink:   r.sink,
		Logger: r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("starting session %q: %w", slug, err)
	}

	r.wg.Add(1)
	r.metrics.sessionStarted()
	go func() {
		defer r.wg.Done()
		defer r.metrics.sessionStopped()
		if err := s.Run(r.ctx); err != nil {
			r.logger.Error("session stopped", "slug", slug, "error", err)
		}
	}()
	r.logger.Info("session started", "slug", slug)
	return s, nil
}

// Close stops every session and waits for their loops to exit.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.cancel()
	clear(r.sessions)
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}
