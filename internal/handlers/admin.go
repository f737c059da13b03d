// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the folio API.
// Handlers are grouped by concern (auth, public, admin) and receive their
// dependencies through the handler struct.
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"folio/internal/models"
	"folio/internal/storage"
	"folio/internal/store"
)

// Admin groups the authenticated content management handlers.
type Admin struct {
	posts      *store.PostStore
	projects   *store.ProjectStore
	categories *store.CategoryStore
	tags       *store.TagStore
	media      *store.MediaStore
	storage    storage.Storage
	maxUpload  int64 // bytes
}

// AdminDeps holds the dependencies of the Admin handler group.
type AdminDeps struct {
	Posts       *store.PostStore
	Projects    *store.ProjectStore
	Categories  *store.CategoryStore
	Tags        *store.TagStore
	Media       *store.MediaStore
	Storage     storage.Storage
	MaxUploadMB int64
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(d AdminDeps) *Admin {
	return &Admin{
		posts:      d.Posts,
		projects:   d.Projects,
		categories: d.Categories,
		tags:       d.Tags,
		media:      d.Media,
		storage:    d.Storage,
		maxUpload:  d.MaxUploadMB << 20,
	}
}

// --- Posts ---

// Posts lists every post regardless of publish state. The public filters
// are honoured.
func (a *Admin) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.List(r.Context(), postFilterFromQuery(r))
	if err != nil {
		writeInternal(w, "list posts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Post returns one post by id or slug, drafts included.
func (a *Admin) Post(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternal(w, "get post failed", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// CreatePost validates and stores a new post with its tags.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in postPayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if errs := in.validate(true); errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	input := store.PostInput{
		Title:       derefString(in.Title),
		Slug:        derefString(in.Slug),
		Excerpt:     derefString(in.Excerpt),
		Content:     *in.Content,
		Category:    derefString(in.Category),
		HeroImage:   derefString(in.HeroImage),
		IsPublished: in.IsPublished != nil && *in.IsPublished,
		Featured:    in.Featured != nil && *in.Featured,
		PublishedAt: in.publishedAt,
		ReadingTime: derefString(in.ReadingTime),
	}
	if in.Tags != nil {
		input.Tags = *in.Tags
	}

	post, err := a.posts.Create(r.Context(), input)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "A post with this slug already exists")
		return
	}
	if err != nil {
		writeInternal(w, "create post failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost merges the supplied fields into a post. It serves both PUT and
// PATCH; absent fields keep their stored value.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var in postPayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if errs := in.validate(false); errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	patch := store.PostPatch{
		Title:       trimmed(in.Title),
		Slug:        trimmed(in.Slug),
		Excerpt:     trimmed(in.Excerpt),
		Content:     in.Content,
		Category:    trimmed(in.Category),
		HeroImage:   trimmed(in.HeroImage),
		IsPublished: in.IsPublished,
		Featured:    in.Featured,
		PublishedAt: in.publishedAt,
		ReadingTime: trimmed(in.ReadingTime),
	}
	if in.Tags != nil {
		tags := []string(*in.Tags)
		patch.Tags = &tags
	}

	post, err := a.posts.Update(r.Context(), chi.URLParam(r, "id"), patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "A post with this slug already exists")
	case err != nil:
		writeInternal(w, "update post failed", err)
	default:
		writeJSON(w, http.StatusOK, post)
	}
}

// PublishPost sets the publish state from {"isPublished": bool}, or toggles
// it when the field is absent. The first publish stamps publishedAt; later
// transitions never change it.
func (a *Admin) PublishPost(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IsPublished *bool `json:"isPublished"`
	}
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	id := chi.URLParam(r, "id")
	if in.IsPublished == nil {
		current, err := a.posts.Get(r.Context(), id)
		if err != nil {
			writeInternal(w, "get post failed", err)
			return
		}
		if current == nil {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		toggled := !current.IsPublished
		in.IsPublished = &toggled
		id = current.ID
	}

	post, err := a.posts.SetPublished(r.Context(), id, *in.IsPublished)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		writeInternal(w, "publish post failed", err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost removes a post. Its tag links go with it.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	err := a.posts.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		writeInternal(w, "delete post failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Projects ---

// Projects lists all projects, archived included.
func (a *Admin) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.projects.List(r.Context(), false)
	if err != nil {
		writeInternal(w, "list projects failed", err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Project returns one project.
func (a *Admin) Project(w http.ResponseWriter, r *http.Request) {
	project, err := a.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternal(w, "get project failed", err)
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// CreateProject stores a new project. Status defaults to active.
func (a *Admin) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in projectPayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if errs := in.validate(true); errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	p := &models.Project{
		Name:        derefString(in.Name),
		Description: derefString(in.Description),
		Link:        derefString(in.Link),
		Image:       derefString(in.Image),
	}
	if stack := in.stack(); stack != nil {
		p.TechStack = *stack
	}
	if in.Status != nil {
		p.Status = models.ProjectStatus(*in.Status)
	}
	if in.SortOrder != nil {
		p.SortOrder = *in.SortOrder
	}

	created, err := a.projects.Create(r.Context(), p)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "Project already exists")
		return
	}
	if err != nil {
		writeInternal(w, "create project failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProject merges the supplied fields into a project.
func (a *Admin) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var in projectPayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if errs := in.validate(false); errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	patch := store.ProjectPatch{
		Name:        trimmed(in.Name),
		Description: trimmed(in.Description),
		Link:        trimmed(in.Link),
		Image:       trimmed(in.Image),
		TechStack:   in.stack(),
		SortOrder:   in.SortOrder,
	}
	if in.Status != nil {
		status := models.ProjectStatus(*in.Status)
		patch.Status = &status
	}

	project, err := a.projects.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		writeInternal(w, "update project failed", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject removes a project.
func (a *Admin) DeleteProject(w http.ResponseWriter, r *http.Request) {
	err := a.projects.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		writeInternal(w, "delete project failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Taxonomy ---

// Taxonomy returns all categories and tags.
func (a *Admin) Taxonomy(w http.ResponseWriter, r *http.Request) {
	tax, err := store.Taxonomy(r.Context(), a.categories, a.tags)
	if err != nil {
		writeInternal(w, "load taxonomy failed", err)
		return
	}
	writeJSON(w, http.StatusOK, tax)
}

// CreateCategory adds a category. A name that maps to an existing id
// returns the existing category.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in termPayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if errs := in.validate("Category"); errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	category, err := a.categories.Create(r.Context(), strings.TrimSpace(in.Name))
	if err != nil {
		writeInternal(w, "create category failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes a category. Posts keep their category text.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := termID(w, r)
	if !ok {
		return
	}
	if err := a.categories.Delete(r.Context(), id); err != nil {
		writeInternal(w, "delete category failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateTag adds a tag with an optional color.
func (a *Admin) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in termPayload
	if errs := decodeJSON(w, r, &in); errs != nil {
		writeFieldErrors(w, errs)
		return
	}
	if errs := in.validate("Tag"); errs != nil {
		writeFieldErrors(w, errs)
		return
	}

	tag, err := a.tags.Create(r.Context(), strings.TrimSpace(in.Name), in.Color)
	if err != nil {
		writeInternal(w, "create tag failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// DeleteTag removes a tag and, by cascade, its post links.
func (a *Admin) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := termID(w, r)
	if !ok {
		return
	}
	if err := a.tags.Delete(r.Context(), id); err != nil {
		writeInternal(w, "delete tag failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// termID returns the unescaped id route parameter. Tag and category ids
// keep punctuation, so "ci/cd" arrives as "ci%2Fcd" and chi matches on the
// raw path.
func termID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return "", false
	}
	return id, true
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
