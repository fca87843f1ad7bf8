package server

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// viewer is a joined browser. Its token is the bearer credential.
type viewer struct {
	ID   string
	Slug string
}

// Store persists viewer tokens and the cosmetic theme choice. Nothing
// about playback or the challenge is persisted.
type Store interface {
	CreateViewer(ctx context.Context, slug string) (token string, err error)
	ViewerFromToken(ctx context.Context, token string) (viewer, error)
	Theme(ctx context.Context, viewerID string) (string, error)
	SetTheme(ctx context.Context, viewerID, theme string) error
}
