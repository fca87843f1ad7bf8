package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/reveal/internal/handler/health"
)

func ok(context.Context) error { return nil }

func failing(msg string) health.CheckerFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serve(t *testing.T, checks map[string]health.Checker) (int, map[string]string) {
	t.Helper()
	h := health.NewHandler(slog.New(slog.DiscardHandler), checks)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]struct{ Status string }
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	got := make(map[string]string, len(body))
	for name, r := range body {
		got[name] = r.Status
	}
	return rec.Code, got
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		want       map[string]string
	}{
		{
			name:       "no checks",
			checks:     map[string]health.Checker{},
			wantStatus: http.StatusOK,
			want:       map[string]string{},
		},
		{
			name: "sqlite and catalog healthy",
			checks: map[string]health.Checker{
				"sqlite":      health.CheckerFunc(ok),
				"experiences": health.CheckerFunc(ok),
			},
			wantStatus: http.StatusOK,
			want:       map[string]string{"sqlite": "ok", "experiences": "ok"},
		},
		{
			name: "empty catalog",
			checks: map[string]health.Checker{
				"sqlite":      health.CheckerFunc(ok),
				"experiences": failing("no experiences loaded"),
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"sqlite": "ok", "experiences": "error"},
		},
		{
			name: "relay unreachable",
			checks: map[string]health.Checker{
				"sqlite":      health.CheckerFunc(ok),
				"experiences": health.CheckerFunc(ok),
				"redis":       failing("connection refused"),
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"sqlite": "ok", "experiences": "ok", "redis": "error"},
		},
		{
			name: "everything down",
			checks: map[string]health.Checker{
				"sqlite": failing("database is locked"),
				"redis":  failing("i/o timeout"),
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"sqlite": "error", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, got := serve(t, tt.checks)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if len(got) != len(tt.want) {
				t.Errorf("got %d entries, want %d", len(got), len(tt.want))
			}
			for name, want := range tt.want {
				if got[name] != want {
					t.Errorf("%s status = %q, want %q", name, got[name], want)
				}
			}
		})
	}
}

func TestHandlerBoundsChecks(t *testing.T) {
	var hadDeadline bool
	checks := map[string]health.Checker{
		"sqlite": health.CheckerFunc(func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return nil
		}),
	}

	if status, _ := serve(t, checks); status != http.StatusOK {
		t.Fatalf("status = %d, want %d", status, http.StatusOK)
	}
	if !hadDeadline {
		t.Error("checker context has no deadline")
	}
}
