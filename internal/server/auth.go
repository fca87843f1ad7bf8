package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

// tokenFromRequest reads the viewer token from the Authorization header,
// or from the token query parameter for EventSource and WebSocket clients
// that cannot set headers.
func tokenFromRequest(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(auth, "Bearer "); found && token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

// viewerFromRequest resolves the token to a viewer of the experience in
// the request context.
func viewerFromRequest(r *http.Request, store Store) (viewer, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return viewer{}, errNoSession
	}
	v, err := store.ViewerFromToken(r.Context(), token)
	if err != nil {
		return viewer{}, err
	}
	if v.Slug != experienceFrom(r).Slug {
		return viewer{}, errNoSession
	}
	return v, nil
}
