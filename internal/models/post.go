// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// DefaultReadingTime is stored when a post is created without an estimate.
const DefaultReadingTime = "5 min read"

// Post is a blog article. Category is free text and deliberately not a
// foreign key; Tags are resolved through the post_tags join.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"contentHtml,omitempty"`
	Category    string     `json:"category"`
	HeroImage   string     `json:"heroImage"`
	IsPublished bool       `json:"isPublished"`
	Featured    bool       `json:"featured"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ReadingTime string     `json:"readingTime"`
	Views       int64      `json:"views"`
	Tags        []Tag      `json:"tags"`
}

// PostMeta is the deprecated nested form of the reading time and view count.
// It is emitted for older clients and never read back.
type PostMeta struct {
	ReadingTime string `json:"readingTime"`
	Views       int64  `json:"views"`
}

// MarshalJSON writes the canonical fields plus the "meta" alias.
func (p Post) MarshalJSON() ([]byte, error) {
	type post Post
	out := struct {
		post
		Meta PostMeta `json:"meta"`
	}{post: post(p), Meta: PostMeta{ReadingTime: p.ReadingTime, Views: p.Views}}
	if out.Tags == nil {
		out.Tags = []Tag{}
	}
	return json.Marshal(out)
}

// Tag labels posts. Its ID is derived from the name so re-creating a tag
// with the same name is idempotent.
type Tag struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

// Category groups posts. Posts reference it by name, not by ID.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Taxonomy is the combined category and tag listing.
type Taxonomy struct {
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
}
