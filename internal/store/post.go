// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"folio/internal/models"
	"folio/internal/slug"
)

// PostStore handles all post-related database operations, including the
// post_tags links.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter narrows List results. Zero values mean "no filter".
type PostFilter struct {
	Category      string
	Featured      *bool
	Search        string // substring match on title or excerpt
	PublishedOnly bool
}

// PostInput carries the fields of a new post.
type PostInput struct {
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Category    string
	HeroImage   string
	IsPublished bool
	Featured    bool
	PublishedAt *time.Time
	ReadingTime string
	Tags        []string
}

// PostPatch carries a partial update. Nil fields are left unchanged; a nil
// Tags leaves the links alone while an empty slice removes them all.
type PostPatch struct {
	Title       *string
	Slug        *string
	Excerpt     *string
	Content     *string
	Category    *string
	HeroImage   *string
	IsPublished *bool
	Featured    *bool
	PublishedAt *time.Time
	ReadingTime *string
	Tags        *[]string
}

const postColumns = `id, title, slug, excerpt, content, category, hero_image,
	is_published, featured, published_at, created_at, updated_at, reading_time, views`

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p                    models.Post
		publishedAt          sql.NullString
		createdAt, updatedAt string
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category, &p.HeroImage,
		&p.IsPublished, &p.Featured, &publishedAt, &createdAt, &updatedAt, &p.ReadingTime, &p.Views,
	)
	if err != nil {
		return nil, err
	}
	if p.PublishedAt, err = parseNullTime(publishedAt); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	p.Tags = []models.Tag{}
	return &p, nil
}

// List returns posts matching the filter. Undated posts sort last, then
// newest published first, then newest created first.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]models.Post, error) {
	var (
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, "is_published = 1")
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Featured != nil {
		where = append(where, "featured = ?")
		args = append(args, *f.Featured)
	}
	if f.Search != "" {
		where = append(where, "(title LIKE ? OR excerpt LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY published_at IS NULL, published_at DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachTags loads the tags of every post in one query, ordered by name.
func (s *PostStore) attachTags(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[string]int, len(posts))
	args := make([]any, len(posts))
	for i, p := range posts {
		index[p.ID] = i
		args[i] = p.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.color
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+placeholders(len(args))+`)
		ORDER BY t.name
	`, args...)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			t      models.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Color); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		i := index[postID]
		posts[i].Tags = append(posts[i].Tags, t)
	}
	return rows.Err()
}

// Get retrieves a post by id or slug in a single query. An id match wins
// over another post's slug. Returns nil if neither matches.
func (s *PostStore) Get(ctx context.Context, idOrSlug string) (*models.Post, error) {
	return s.get(ctx, s.db, idOrSlug)
}

func (s *PostStore) get(ctx context.Context, q querier, idOrSlug string) (*models.Post, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE id = ? OR slug = ?
		ORDER BY id = ? DESC
		LIMIT 1
	`, idOrSlug, idOrSlug, idOrSlug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.name, t.color
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ?
		ORDER BY t.name
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("get post tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("scan post tag: %w", err)
		}
		p.Tags = append(p.Tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get post tags: %w", err)
	}
	return p, nil
}

// Create inserts a post and its tag links in one transaction. published_at
// is only stamped when the post is created published. A duplicate slug
// returns ErrConflict.
func (s *PostStore) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	ts := now()
	var publishedAt *time.Time
	if in.IsPublished {
		publishedAt = in.PublishedAt
		if publishedAt == nil {
			publishedAt = &ts
		}
	}
	readingTime := in.ReadingTime
	if readingTime == "" {
		readingTime = models.DefaultReadingTime
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create post: %w", err)
	}
	defer rollback(tx)

	id := models.NewID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO posts (id, title, slug, excerpt, content, category, hero_image,
			is_published, featured, published_at, created_at, updated_at, reading_time, views)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, id, in.Title, in.Slug, in.Excerpt, in.Content, in.Category, in.HeroImage,
		in.IsPublished, in.Featured, nullTime(publishedAt), formatTime(ts), formatTime(ts), readingTime)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := syncTags(ctx, tx, id, in.Tags); err != nil {
		return nil, err
	}

	p, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create post: %w", err)
	}
	return p, nil
}

// Update merges the provided fields into an existing post. Publishing
// without an explicit timestamp sets published_at only if it was never set.
// updated_at is bumped whenever any field is supplied.
func (s *PostStore) Update(ctx context.Context, id string, patch PostPatch) (*models.Post, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Slug != nil {
		set("slug", *patch.Slug)
	}
	if patch.Excerpt != nil {
		set("excerpt", *patch.Excerpt)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.HeroImage != nil {
		set("hero_image", *patch.HeroImage)
	}
	if patch.Featured != nil {
		set("featured", *patch.Featured)
	}
	if patch.ReadingTime != nil {
		set("reading_time", *patch.ReadingTime)
	}
	if patch.IsPublished != nil {
		set("is_published", *patch.IsPublished)
	}

	ts := now()
	switch {
	case patch.PublishedAt != nil:
		set("published_at", formatTime(*patch.PublishedAt))
	case patch.IsPublished != nil && *patch.IsPublished:
		sets = append(sets, "published_at = COALESCE(published_at, ?)")
		args = append(args, formatTime(ts))
	}

	if len(sets) > 0 || patch.Tags != nil {
		set("updated_at", formatTime(ts))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update post: %w", err)
	}
	defer rollback(tx)

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	if len(sets) > 0 {
		_, err = tx.ExecContext(ctx, `UPDATE posts SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			append(args, id)...)
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		if err != nil {
			return nil, fmt.Errorf("update post: %w", err)
		}
	}

	if patch.Tags != nil {
		if err := syncTags(ctx, tx, id, *patch.Tags); err != nil {
			return nil, err
		}
	}

	p, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update post: %w", err)
	}
	return p, nil
}

// SetPublished publishes or unpublishes a post. The first publish stamps
// published_at; later transitions keep it.
func (s *PostStore) SetPublished(ctx context.Context, id string, published bool) (*models.Post, error) {
	ts := formatTime(now())
	var (
		res sql.Result
		err error
	)
	if published {
		res, err = s.db.ExecContext(ctx, `
			UPDATE posts SET is_published = 1, published_at = COALESCE(published_at, ?), updated_at = ?
			WHERE id = ?
		`, ts, ts, id)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE posts SET is_published = 0, updated_at = ? WHERE id = ?
		`, ts, id)
	}
	if err != nil {
		return nil, fmt.Errorf("set post published: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a post; its tag links go with it through the cascade.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter of a published post and returns
// the new count.
func (s *PostStore) IncrementViews(ctx context.Context, idOrSlug string) (int64, error) {
	var views int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts SET views = views + 1
		WHERE id = (
			SELECT id FROM posts
			WHERE (id = ? OR slug = ?) AND is_published = 1
			ORDER BY id = ? DESC
			LIMIT 1
		)
		RETURNING views
	`, idOrSlug, idOrSlug, idOrSlug).Scan(&views)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment post views: %w", err)
	}
	return views, nil
}

// syncTags replaces every link of a post with the given tag names. Tags
// are created on first use; an existing tag with the same name is reused
// even if its id was derived differently.
func syncTags(ctx context.Context, q querier, postID string, names []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tagID, err := ensureTag(ctx, q, name, nil)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING
		`, postID, tagID)
		if err != nil {
			return fmt.Errorf("link post tag: %w", err)
		}
	}
	return nil
}

// ensureTag returns the id of the tag called name, inserting it when
// missing.
func ensureTag(ctx context.Context, q querier, name string, color *string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("find tag: %w", err)
	}

	id = slug.Key(name)
	_, err = q.ExecContext(ctx, `
		INSERT INTO tags (id, name, color) VALUES (?, ?, ?) ON CONFLICT DO NOTHING
	`, id, name, color)
	if err != nil {
		return "", fmt.Errorf("insert tag: %w", err)
	}
	return id, nil
}
