// Package health serves /healthz: one entry per dependency, 503 when any
// of them fails.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 3 * time.Second

// Checker verifies that a dependency is reachable or usable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc lets a plain function act as a Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type Handler struct {
	checks map[string]Checker
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{checks: checks, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type result struct {
	Status string `json:"status"`
}

// check runs every checker concurrently under one deadline.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]result, len(h.checks))
		status  = http.StatusOK
	)
	for name, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Error("health check failed", "name", name, "error", err)
				results[name] = result{Status: "error"}
				status = http.StatusServiceUnavailable
				return
			}
			results[name] = result{Status: "ok"}
		}()
	}
	wg.Wait()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(results)
}
