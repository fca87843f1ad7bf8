package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateViewer(ctx context.Context, slug string) (string, error) {
	id := uuid.NewString()
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO viewers (id, slug, token, created_at)
		VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	`, id, slug, token)
	if err != nil {
		return "", fmt.Errorf("creating viewer: %w", err)
	}
	return token, nil
}

func (s *SQLiteStore) ViewerFromToken(ctx context.Context, token string) (viewer, error) {
	var v viewer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, slug FROM viewers WHERE token = ?
	`, token).Scan(&v.ID, &v.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return v, errNoSession
	}
	return v, err
}

// Theme returns the stored theme, or ErrNotFound if the viewer never
// picked one.
func (s *SQLiteStore) Theme(ctx context.Context, viewerID string) (string, error) {
	var theme string
	err := s.db.QueryRowContext(ctx, `
		SELECT theme FROM preferences WHERE viewer_id = ?
	`, viewerID).Scan(&theme)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return theme, err
}

func (s *SQLiteStore) SetTheme(ctx context.Context, viewerID, theme string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (viewer_id, theme, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (viewer_id) DO UPDATE SET theme = excluded.theme, updated_at = excluded.updated_at
	`, viewerID, theme)
	if err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}
