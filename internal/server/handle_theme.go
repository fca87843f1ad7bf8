package server

import (
	"errors"
	"log/slog"
	"net/http"
)

type ThemeResponse struct {
	Theme  string   `json:"theme"`
	Themes []string `json:"themes"`
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

// handleGetTheme returns the viewer's saved theme, or the experience
// default when nothing was saved yet.
func handleGetTheme(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp := experienceFrom(r)
		v := viewerFrom(r)

		theme, err := store.Theme(r.Context(), v.ID)
		switch {
		case errors.Is(err, ErrNotFound):
			theme = exp.DefaultTheme
		case err != nil:
			logger.Error("loading theme", "slug", exp.Slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		case !exp.HasTheme(theme):
			// Theme was removed from the experience since it was saved.
			theme = exp.DefaultTheme
		}

		writeJSON(w, http.StatusOK, ThemeResponse{Theme: theme, Themes: summarize(exp).Themes})
	}
}

func handlePutTheme(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ThemeRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		exp := experienceFrom(r)
		if !exp.HasTheme(req.Theme) {
			writeError(w, http.StatusBadRequest, "unknown theme")
			return
		}

		if err := store.SetTheme(r.Context(), viewerFrom(r).ID, req.Theme); err != nil {
			logger.Error("saving theme", "slug", exp.Slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, ThemeResponse{Theme: req.Theme, Themes: summarize(exp).Themes})
	}
}
