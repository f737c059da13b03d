// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"folio/internal/models"
)

// WordPress reads content from the REST API of a headless WordPress site.
type WordPress struct {
	baseURL string
	base    *url.URL
	client  *http.Client
}

var _ Source = (*WordPress)(nil)

// NewWordPress creates a client for the site at baseURL. A nil client uses
// http.DefaultClient.
func NewWordPress(baseURL string, client *http.Client) *WordPress {
	if client == nil {
		client = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	base, _ := url.Parse(baseURL + "/")
	return &WordPress{baseURL: baseURL, base: base, client: client}
}

type wpRendered struct {
	Rendered string `json:"rendered"`
}

type wpTerm struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type wpMedia struct {
	SourceURL string `json:"source_url"`
}

type wpEmbedded struct {
	Terms         [][]wpTerm `json:"wp:term"`
	FeaturedMedia []wpMedia  `json:"wp:featuredmedia"`
}

type wpPost struct {
	ID       int        `json:"id"`
	Slug     string     `json:"slug"`
	Status   string     `json:"status"`
	Sticky   bool       `json:"sticky"`
	Date     string     `json:"date"`
	DateGMT  string     `json:"date_gmt"`
	Modified string     `json:"modified_gmt"`
	Title    wpRendered `json:"title"`
	Content  wpRendered `json:"content"`
	Excerpt  wpRendered `json:"excerpt"`
	Embedded wpEmbedded `json:"_embedded"`
}

type wpProject struct {
	ID        int             `json:"id"`
	Slug      string          `json:"slug"`
	Status    string          `json:"status"`
	Link      string          `json:"link"`
	MenuOrder int             `json:"menu_order"`
	Title     wpRendered      `json:"title"`
	Content   wpRendered      `json:"content"`
	Meta      json.RawMessage `json:"meta"`
	Embedded  wpEmbedded      `json:"_embedded"`
}

// fetch GETs wp-json/<endpoint> and decodes the JSON answer into dst.
// Empty query values are dropped.
func (w *WordPress) fetch(ctx context.Context, endpoint string, query map[string]string, dst any) error {
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "/"), "wp-json/")

	q := url.Values{}
	for k, v := range query {
		if v != "" {
			q.Set(k, v)
		}
	}
	target := w.baseURL + "/wp-json/" + endpoint
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("wordpress request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("wordpress %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &body) != nil || body.Message == "" {
			body.Message = strings.TrimSpace(string(raw))
		}
		return &Error{Status: resp.StatusCode, Path: "wordpress " + endpoint, Message: stripHTML(body.Message)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("wordpress %s: decode: %w", endpoint, err)
	}
	return nil
}

// Posts lists the newest published posts and filters them locally.
func (w *WordPress) Posts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	var raw []wpPost
	err := w.fetch(ctx, "wp/v2/posts", map[string]string{
		"status":   "publish",
		"per_page": "100",
		"_embed":   "1",
		"order":    "desc",
		"orderby":  "date",
	}, &raw)
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(raw))
	for _, p := range raw {
		posts = append(posts, w.mapPost(p))
	}
	return filterPosts(posts, f), nil
}

// Post fetches by numeric id when idOrSlug is all digits, otherwise by slug.
// Drafts are reported as ErrNotFound.
func (w *WordPress) Post(ctx context.Context, idOrSlug string) (*models.Post, error) {
	var raw wpPost
	if _, err := strconv.Atoi(idOrSlug); err == nil {
		if err := w.fetch(ctx, "wp/v2/posts/"+idOrSlug, map[string]string{"_embed": "1"}, &raw); err != nil {
			return nil, err
		}
	} else {
		var list []wpPost
		err := w.fetch(ctx, "wp/v2/posts", map[string]string{
			"slug":     idOrSlug,
			"per_page": "1",
			"_embed":   "1",
		}, &list)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, ErrNotFound
		}
		raw = list[0]
	}

	post := w.mapPost(raw)
	if !post.IsPublished {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (w *WordPress) mapPost(p wpPost) models.Post {
	body := htmlToMarkdown(p.Content.Rendered)

	title := stripHTML(p.Title.Rendered)
	if title == "" {
		title = p.Slug
	}

	post := models.Post{
		ID:          strconv.Itoa(p.ID),
		Title:       title,
		Slug:        p.Slug,
		Excerpt:     stripHTML(p.Excerpt.Rendered),
		Content:     body,
		Category:    "Uncategorized",
		IsPublished: p.Status == "publish",
		Featured:    p.Sticky,
		PublishedAt: parseTime(p.DateGMT),
		ReadingTime: readingTime(body),
		Tags:        []models.Tag{},
	}
	if post.PublishedAt == nil {
		post.PublishedAt = parseTime(p.Date)
	}
	if post.PublishedAt != nil {
		post.CreatedAt = *post.PublishedAt
	}
	if t := parseTime(p.Modified); t != nil {
		post.UpdatedAt = *t
	}

	groups := p.Embedded.Terms
	if len(groups) > 0 && len(groups[0]) > 0 && groups[0][0].Name != "" {
		post.Category = stripHTML(groups[0][0].Name)
	}
	if len(groups) > 1 {
		for _, t := range groups[1] {
			post.Tags = append(post.Tags, termTag(t))
		}
	}
	if len(p.Embedded.FeaturedMedia) > 0 {
		post.HeroImage = resolveAssetURL(w.base, p.Embedded.FeaturedMedia[0].SourceURL)
	}
	return post
}

// termTag maps a WordPress term to a tag. A description starting with '#'
// is taken as the tag colour.
func termTag(t wpTerm) models.Tag {
	tag := models.Tag{ID: strconv.Itoa(t.ID), Name: stripHTML(t.Name)}
	if t.ID == 0 {
		tag.ID = t.Slug
	}
	if d := strings.TrimSpace(t.Description); strings.HasPrefix(d, "#") {
		tag.Color = Ptr(d)
	}
	return tag
}

// Projects lists published projects from the "project" post type, ordered
// by their sort order.
func (w *WordPress) Projects(ctx context.Context) ([]models.Project, error) {
	var raw []wpProject
	err := w.fetch(ctx, "wp/v2/project", map[string]string{
		"status":   "publish",
		"per_page": "100",
		"_embed":   "1",
		"order":    "asc",
		"orderby":  "menu_order",
	}, &raw)
	if err != nil {
		return nil, err
	}

	projects := []models.Project{}
	for _, p := range raw {
		project, ok := w.mapProject(p)
		if ok {
			projects = append(projects, project)
		}
	}
	sortProjects(projects)
	return projects, nil
}

// mapProject reports false for projects whose status is not published.
func (w *WordPress) mapProject(p wpProject) (models.Project, bool) {
	meta := map[string]any{}
	if len(p.Meta) > 0 && p.Meta[0] == '{' {
		_ = json.Unmarshal(p.Meta, &meta)
	}

	status := metaString(meta, "project_status")
	if status == "" {
		status = p.Status
	}
	switch strings.ToLower(status) {
	case "", "publish", "published", string(models.ProjectActive):
	default:
		return models.Project{}, false
	}

	name := stripHTML(p.Title.Rendered)
	if name == "" {
		name = p.Slug
	}
	description := stripHTML(p.Content.Rendered)
	if description == "" {
		description = metaString(meta, "project_description")
	}
	link := metaString(meta, "project_link")
	if link == "" {
		link = p.Link
	}
	image := metaString(meta, "project_image")
	if len(p.Embedded.FeaturedMedia) > 0 && p.Embedded.FeaturedMedia[0].SourceURL != "" {
		image = p.Embedded.FeaturedMedia[0].SourceURL
	}

	stack := parseStringList(meta["project_tech_stack"])
	if len(stack) == 0 {
		stack = parseStringList(meta["project_tags"])
	}

	order, ok := metaInt(meta, "project_sort_order")
	if !ok {
		order = p.MenuOrder
	}

	id := p.Slug
	if id == "" {
		id = strconv.Itoa(p.ID)
	}

	return models.Project{
		ID:          id,
		Name:        name,
		Description: description,
		Link:        link,
		Image:       resolveAssetURL(w.base, image),
		TechStack:   stack,
		Status:      models.ProjectActive,
		SortOrder:   order,
	}, true
}

func metaString(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func metaInt(meta map[string]any, key string) (int, bool) {
	switch v := meta[key].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// parseStringList accepts a JSON array, a string holding a JSON array, or a
// comma-separated string.
func parseStringList(v any) []string {
	var out []string
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		s := strings.TrimSpace(v)
		var arr []string
		if strings.HasPrefix(s, "[") && json.Unmarshal([]byte(s), &arr) == nil {
			out = arr
		} else {
			out = strings.Split(s, ",")
		}
	}

	clean := []string{}
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			clean = append(clean, s)
		}
	}
	return clean
}

// Taxonomy fetches categories and tags concurrently.
func (w *WordPress) Taxonomy(ctx context.Context) (*models.Taxonomy, error) {
	query := map[string]string{"per_page": "100", "orderby": "name", "order": "asc"}
	var categories, tags []wpTerm

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.fetch(gctx, "wp/v2/categories", query, &categories) })
	g.Go(func() error { return w.fetch(gctx, "wp/v2/tags", query, &tags) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tax := &models.Taxonomy{
		Categories: make([]models.Category, 0, len(categories)),
		Tags:       make([]models.Tag, 0, len(tags)),
	}
	for _, c := range categories {
		tax.Categories = append(tax.Categories, models.Category{ID: strconv.Itoa(c.ID), Name: stripHTML(c.Name)})
	}
	for _, t := range tags {
		tax.Tags = append(tax.Tags, termTag(t))
	}
	return tax, nil
}
