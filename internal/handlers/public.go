package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"folio/internal/markdown"
	"folio/internal/store"
)

// Public serves the read-only API used by the public site. Only published
// posts and active projects are ever returned.
type Public struct {
	posts      *store.PostStore
	projects   *store.ProjectStore
	categories *store.CategoryStore
	tags       *store.TagStore
}

// NewPublic creates a new Public handler group.
func NewPublic(posts *store.PostStore, projects *store.ProjectStore, categories *store.CategoryStore, tags *store.TagStore) *Public {
	return &Public{posts: posts, projects: projects, categories: categories, tags: tags}
}

// postFilterFromQuery reads ?category, ?featured and ?search. featured only
// filters when it is a valid boolean.
func postFilterFromQuery(r *http.Request) store.PostFilter {
	q := r.URL.Query()
	f := store.PostFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if v, err := strconv.ParseBool(q.Get("featured")); err == nil {
		f.Featured = &v
	}
	return f
}

// Posts lists published posts.
func (p *Public) Posts(w http.ResponseWriter, r *http.Request) {
	f := postFilterFromQuery(r)
	f.PublishedOnly = true

	posts, err := p.posts.List(r.Context(), f)
	if err != nil {
		writeInternal(w, "list public posts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Post returns one published post by id or slug, with its body rendered to
// HTML. Drafts are reported as missing.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	post, err := p.posts.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeInternal(w, "get public post failed", err)
		return
	}
	if post == nil || !post.IsPublished {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		slog.Warn("render post body failed", "post", post.ID, "error", err)
	}
	post.ContentHTML = html

	writeJSON(w, http.StatusOK, post)
}

// PostViews records a view of a published post.
func (p *Public) PostViews(w http.ResponseWriter, r *http.Request) {
	views, err := p.posts.IncrementViews(r.Context(), chi.URLParam(r, "idOrSlug"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		writeInternal(w, "increment post views failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"views": views})
}

// Projects lists active projects.
func (p *Public) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := p.projects.List(r.Context(), true)
	if err != nil {
		writeInternal(w, "list public projects failed", err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Taxonomy returns all categories and tags.
func (p *Public) Taxonomy(w http.ResponseWriter, r *http.Request) {
	tax, err := store.Taxonomy(r.Context(), p.categories, p.tags)
	if err != nil {
		writeInternal(w, "load taxonomy failed", err)
		return
	}
	writeJSON(w, http.StatusOK, tax)
}
