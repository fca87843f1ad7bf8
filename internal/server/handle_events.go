package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/playperu/reveal/internal/session"
)

const dispatchTimeout = 5 * time.Second

func handleState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), dispatchTimeout)
		defer cancel()

		st, err := sessionFrom(r).Snapshot(ctx)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "session unavailable")
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// handleDispatch applies one event and answers with the resulting state.
func handleDispatch(metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev session.Event
		if err := readJSON(w, r, &ev); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		st, status, err := dispatch(r.Context(), sessionFrom(r), ev, metrics)
		if err != nil {
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// dispatch is shared by the HTTP and WebSocket transports. It maps
// session errors to HTTP statuses.
func dispatch(ctx context.Context, s *session.Session, ev session.Event, metrics *Metrics) (session.State, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	start := time.Now()
	st, err := s.Dispatch(ctx, ev)
	metrics.observeEvent(ev.Type, err, time.Since(start))

	switch {
	case err == nil:
		return st, http.StatusOK, nil
	case errors.Is(err, session.ErrUnknownEvent):
		return st, http.StatusBadRequest, err
	default:
		return st, http.StatusServiceUnavailable, errors.New("session unavailable")
	}
}
