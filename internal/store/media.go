// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"folio/internal/models"
)

// MediaStore handles all media-related database operations.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `id, filename, url, size, content_type, thumb_url, created_at`

// scanMedia scans a media row from the result set.
func scanMedia(scanner interface{ Scan(...any) error }) (*models.MediaAsset, error) {
	var (
		m         models.MediaAsset
		createdAt string
	)
	if err := scanner.Scan(&m.ID, &m.Filename, &m.URL, &m.Size, &m.ContentType, &m.ThumbURL, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media record, filling in ID and CreatedAt.
func (s *MediaStore) Create(ctx context.Context, m *models.MediaAsset) (*models.MediaAsset, error) {
	if m.ID == "" {
		m.ID = models.NewID()
	}
	m.CreatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_assets (`+mediaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Filename, m.URL, m.Size, m.ContentType, m.ThumbURL, formatTime(m.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return m, nil
}

// FindByID retrieves a single media record. Returns nil if not found.
func (s *MediaStore) FindByID(ctx context.Context, id string) (*models.MediaAsset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_assets WHERE id = ?`, id)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}

// List returns all media records, newest first.
func (s *MediaStore) List(ctx context.Context) ([]models.MediaAsset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media_assets ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	items := []models.MediaAsset{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}
