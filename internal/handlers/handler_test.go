// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Every test gets its own migrated SQLite file and upload directory.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/internal/database"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/session"
	"folio/internal/storage"
	"folio/internal/store"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "secret123"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Users      *store.UserStore
	Posts      *store.PostStore
	Projects   *store.ProjectStore
	Categories *store.CategoryStore
	Tags       *store.TagStore
	Media      *store.MediaStore
	Storage    *storage.Local
	Sessions   *session.Manager
	Admin      *Admin
	Auth       *Auth
	Public     *Public
	User       *models.User
}

// newTestEnv creates a complete test environment with one admin user.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := database.Connect(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	local, err := storage.NewLocal(filepath.Join(dir, "uploads"), storage.LocalPrefix)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	env := &testEnv{
		Users:      store.NewUserStore(db),
		Posts:      store.NewPostStore(db),
		Projects:   store.NewProjectStore(db),
		Categories: store.NewCategoryStore(db),
		Tags:       store.NewTagStore(db),
		Media:      store.NewMediaStore(db),
		Storage:    local,
		Sessions:   session.NewManager("test-secret", time.Hour, false),
	}
	env.Admin = NewAdmin(AdminDeps{
		Posts:       env.Posts,
		Projects:    env.Projects,
		Categories:  env.Categories,
		Tags:        env.Tags,
		Media:       env.Media,
		Storage:     local,
		MaxUploadMB: 1,
	})
	env.Auth = NewAuth(env.Sessions, env.Users)
	env.Public = NewPublic(env.Posts, env.Projects, env.Categories, env.Tags)

	env.User, err = env.Users.Create(context.Background(), testEmail, testPassword, "Admin")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return env
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches u to the request context as RequireAuth would.
func asUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

// serve runs h and returns the recorder.
func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

// decodeBody unmarshals the recorder body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

// validPost returns a create payload that passes validation.
func validPost(slug string) map[string]any {
	return map[string]any{
		"title":       "Hello World!!",
		"slug":        slug,
		"excerpt":     "An excerpt that is long enough to pass.",
		"content":     "# Heading\n\nBody content long enough to pass validation.",
		"category":    "Mobile",
		"heroImage":   "https://x/y.png",
		"tags":        []string{"swift", "ios"},
		"isPublished": false,
	}
}

// createPost creates a post through the admin handler.
func createPost(t *testing.T, env *testEnv, body map[string]any) map[string]any {
	t.Helper()
	rec := serve(env.Admin.CreatePost, jsonRequest(t, http.MethodPost, "/api/admin/posts", body))
	expectStatus(t, rec, http.StatusCreated)
	return decodeBody(t, rec)
}

func tagNamesOf(post map[string]any) []string {
	var names []string
	tags, _ := post["tags"].([]any)
	for _, tag := range tags {
		if m, ok := tag.(map[string]any); ok {
			names = append(names, m["name"].(string))
		}
	}
	return names
}
