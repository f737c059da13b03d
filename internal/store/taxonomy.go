package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"folio/internal/models"
	"folio/internal/slug"
)

// TagStore handles tag rows. Links to posts are managed by PostStore.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore with the given database connection.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// List returns all tags ordered by name.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Create inserts a tag whose id is derived from its name. Creating a tag
// that already exists returns the existing row unchanged.
func (s *TagStore) Create(ctx context.Context, name string, color *string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if color != nil && strings.TrimSpace(*color) == "" {
		color = nil
	}
	id, err := ensureTag(ctx, s.db, name, color)
	if err != nil {
		return nil, err
	}

	var t models.Tag
	err = s.db.QueryRowContext(ctx, `SELECT id, name, color FROM tags WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Color)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &t, nil
}

// Delete removes a tag and, through the cascade, its post links. Deleting
// a missing tag is not an error.
func (s *TagStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// CategoryStore handles category rows. Posts store the category name as
// free text, so deleting a category leaves posts untouched.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore creates a new CategoryStore with the given database connection.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create inserts a category whose id is derived from its name. A name that
// collides with an existing id or name returns the existing row.
func (s *CategoryStore) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	id := slug.Key(name)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name) VALUES (?, ?) ON CONFLICT DO NOTHING
	`, id, name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	var c models.Category
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name FROM categories WHERE id = ? OR name = ? ORDER BY id = ? DESC LIMIT 1
	`, id, name, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// Delete removes a category. Deleting a missing category is not an error.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Taxonomy returns the combined category and tag listing.
func Taxonomy(ctx context.Context, categories *CategoryStore, tags *TagStore) (*models.Taxonomy, error) {
	cs, err := categories.List(ctx)
	if err != nil {
		return nil, err
	}
	ts, err := tags.List(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Taxonomy{Categories: cs, Tags: ts}, nil
}
