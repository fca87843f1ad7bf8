package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/reveal/internal/experience"
	"github.com/playperu/reveal/internal/session"
)

type ctxKey int

const (
	ctxKeyExperience ctxKey = iota
	ctxKeyViewer
	ctxKeySession
)

func experienceMiddleware(catalog *experience.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			exp, ok := catalog.Get(chi.URLParam(r, "slug"))
			if !ok {
				writeError(w, http.StatusNotFound, "experience not found")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyExperience, exp)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// viewerMiddleware requires a valid viewer token and attaches the viewer
// and the experience's live session to the context.
func viewerMiddleware(store Store, sessions *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := viewerFromRequest(r, store)
			if errors.Is(err, errNoSession) {
				writeError(w, http.StatusUnauthorized, "invalid session token")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			s, err := sessions.Get(v.Slug)
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, "session unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyViewer, v)
			ctx = context.WithValue(ctx, ctxKeySession, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func experienceFrom(r *http.Request) *experience.Experience {
	return r.Context().Value(ctxKeyExperience).(*experience.Experience)
}

func viewerFrom(r *http.Request) viewer {
	return r.Context().Value(ctxKeyViewer).(viewer)
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(ctxKeySession).(*session.Session)
}
