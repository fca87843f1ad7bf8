package server

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/reveal/internal/experience"
)

type ExperienceSummary struct {
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Recipient string   `json:"recipient,omitempty"`
	Protected bool     `json:"protected"`
	Themes    []string `json:"themes"`
}

type JoinRequest struct {
	Passphrase string `json:"passphrase"`
}

type JoinResponse struct {
	Token    string `json:"token"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	MediaURL string `json:"mediaUrl"`
}

func summarize(e *experience.Experience) ExperienceSummary {
	themes := e.Themes
	if themes == nil {
		themes = []string{}
	}
	return ExperienceSummary{
		Slug:      e.Slug,
		Title:     e.Title,
		Recipient: e.Recipient,
		Protected: e.Protected(),
		Themes:    themes,
	}
}

func handleListExperiences(catalog *experience.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]ExperienceSummary, 0, catalog.Len())
		for _, e := range catalog.List() {
			out = append(out, summarize(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleJoin(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		exp := experienceFrom(r)
		if exp.Protected() {
			if req.Passphrase == "" {
				writeError(w, http.StatusBadRequest, "passphrase is required")
				return
			}
			err := bcrypt.CompareHashAndPassword([]byte(exp.PassphraseHash()), []byte(req.Passphrase))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "wrong passphrase")
				return
			}
		}

		token, err := store.CreateViewer(r.Context(), exp.Slug)
		if err != nil {
			logger.Error("join failed", "slug", exp.Slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("viewer joined", "slug", exp.Slug)
		writeJSON(w, http.StatusOK, JoinResponse{
			Token:    token,
			Slug:     exp.Slug,
			Title:    exp.Title,
			MediaURL: exp.MediaURL,
		})
	}
}
