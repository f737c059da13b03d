package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreatePostScenario(t *testing.T) {
	env := newTestEnv(t)

	post := createPost(t, env, validPost("hello-world"))

	names := tagNamesOf(post)
	if len(names) != 2 || names[0] != "ios" || names[1] != "swift" {
		t.Errorf("tags = %v, want [ios swift]", names)
	}
	if post["isPublished"] != false {
		t.Errorf("isPublished = %v, want false", post["isPublished"])
	}
	if post["publishedAt"] != nil {
		t.Errorf("publishedAt = %v, want null", post["publishedAt"])
	}
	if post["readingTime"] != "5 min read" {
		t.Errorf("readingTime = %v", post["readingTime"])
	}
	meta, _ := post["meta"].(map[string]any)
	if meta["readingTime"] != "5 min read" {
		t.Errorf("meta.readingTime alias = %v", meta["readingTime"])
	}
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	createPost(t, env, validPost("hello-world"))

	rec := serve(env.Admin.CreatePost, jsonRequest(t, http.MethodPost, "/api/admin/posts", validPost("hello-world")))
	expectStatus(t, rec, http.StatusConflict)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)

	body := validPost("Bad Slug")
	body["title"] = "abc"
	rec := serve(env.Admin.CreatePost, jsonRequest(t, http.MethodPost, "/api/admin/posts", body))
	expectStatus(t, rec, http.StatusBadRequest)

	errs, _ := decodeBody(t, rec)["errors"].([]any)
	if len(errs) != 2 {
		t.Errorf("errors = %v, want title and slug", errs)
	}

	body = validPost("typed")
	body["category"] = 42
	rec = serve(env.Admin.CreatePost, jsonRequest(t, http.MethodPost, "/api/admin/posts", body))
	expectStatus(t, rec, http.StatusBadRequest)
	errs, _ = decodeBody(t, rec)["errors"].([]any)
	if len(errs) != 1 || errs[0].(map[string]any)["field"] != "category" {
		t.Errorf("errors = %v, want a category type error", errs)
	}
}

func TestCreatePostDerivesSlugFromTitle(t *testing.T) {
	env := newTestEnv(t)
	body := validPost("")
	delete(body, "slug")

	post := createPost(t, env, body)
	if post["slug"] != "hello-world" {
		t.Errorf("slug = %v, want hello-world", post["slug"])
	}
}

func TestCreatePostCommaSeparatedTags(t *testing.T) {
	env := newTestEnv(t)
	body := validPost("comma-tags")
	body["tags"] = "Go, SQLite , ,Go"

	post := createPost(t, env, body)
	names := tagNamesOf(post)
	if len(names) != 2 || names[0] != "Go" || names[1] != "SQLite" {
		t.Errorf("tags = %v, want [Go SQLite]", names)
	}
}

func TestUpdatePostPartial(t *testing.T) {
	env := newTestEnv(t)
	created := createPost(t, env, validPost("hello-world"))
	id := created["id"].(string)

	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		t.Run(method, func(t *testing.T) {
			req := jsonRequest(t, method, "/api/admin/posts/"+id, map[string]any{"title": "Updated via " + method})
			rec := serve(env.Admin.UpdatePost, withChiURLParam(req, "id", id))
			expectStatus(t, rec, http.StatusOK)

			post := decodeBody(t, rec)
			if post["title"] != "Updated via "+method {
				t.Errorf("title = %v", post["title"])
			}
			if post["category"] != "Mobile" {
				t.Errorf("category changed to %v", post["category"])
			}
			if names := tagNamesOf(post); len(names) != 2 {
				t.Errorf("tags changed to %v", names)
			}
			if post["isPublished"] != false {
				t.Errorf("isPublished changed to %v", post["isPublished"])
			}
		})
	}
}

func TestUpdatePostReplacesTags(t *testing.T) {
	env := newTestEnv(t)
	id := createPost(t, env, validPost("hello-world"))["id"].(string)

	for i := 0; i < 2; i++ {
		req := jsonRequest(t, http.MethodPatch, "/", map[string]any{"tags": []string{"go", "swift"}})
		rec := serve(env.Admin.UpdatePost, withChiURLParam(req, "id", id))
		expectStatus(t, rec, http.StatusOK)

		names := tagNamesOf(decodeBody(t, rec))
		if len(names) != 2 || names[0] != "go" || names[1] != "swift" {
			t.Fatalf("round %d: tags = %v, want [go swift]", i, names)
		}
	}
}

func TestUpdatePostErrors(t *testing.T) {
	env := newTestEnv(t)
	createPost(t, env, validPost("first-post"))
	second := createPost(t, env, validPost("second-post"))["id"].(string)

	req := jsonRequest(t, http.MethodPatch, "/", map[string]any{"title": "Valid title"})
	rec := serve(env.Admin.UpdatePost, withChiURLParam(req, "id", "missing"))
	expectStatus(t, rec, http.StatusNotFound)

	req = jsonRequest(t, http.MethodPatch, "/", map[string]any{"slug": "first-post"})
	rec = serve(env.Admin.UpdatePost, withChiURLParam(req, "id", second))
	expectStatus(t, rec, http.StatusConflict)

	req = jsonRequest(t, http.MethodPatch, "/", map[string]any{"excerpt": "short"})
	rec = serve(env.Admin.UpdatePost, withChiURLParam(req, "id", second))
	expectStatus(t, rec, http.StatusBadRequest)
}

func parseTime(t *testing.T, v any) time.Time {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("timestamp %v is not a string", v)
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func TestPublishPostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	created := createPost(t, env, validPost("hello-world"))
	id := created["id"].(string)
	createdAt := parseTime(t, created["createdAt"])

	publish := func(body any) map[string]any {
		t.Helper()
		req := jsonRequest(t, http.MethodPatch, "/api/admin/posts/"+id+"/publish", body)
		rec := serve(env.Admin.PublishPost, withChiURLParam(req, "id", id))
		expectStatus(t, rec, http.StatusOK)
		return decodeBody(t, rec)
	}

	// Toggle with no body publishes the draft.
	post := publish(nil)
	if post["isPublished"] != true {
		t.Fatalf("isPublished = %v, want true", post["isPublished"])
	}
	first := parseTime(t, post["publishedAt"])
	if first.Before(createdAt) {
		t.Errorf("publishedAt %v is before createdAt %v", first, createdAt)
	}

	time.Sleep(5 * time.Millisecond)

	// Re-publishing keeps the original timestamp.
	post = publish(map[string]any{"isPublished": true})
	if !parseTime(t, post["publishedAt"]).Equal(first) {
		t.Errorf("re-publish changed publishedAt to %v", post["publishedAt"])
	}

	// Unpublishing keeps it too.
	post = publish(map[string]any{"isPublished": false})
	if post["isPublished"] != false {
		t.Errorf("isPublished = %v, want false", post["isPublished"])
	}
	if !parseTime(t, post["publishedAt"]).Equal(first) {
		t.Errorf("unpublish changed publishedAt to %v", post["publishedAt"])
	}

	// And so does publishing again.
	post = publish(nil)
	if !parseTime(t, post["publishedAt"]).Equal(first) {
		t.Errorf("second publish changed publishedAt to %v", post["publishedAt"])
	}
}

func TestPublishPostMissing(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []any{nil, map[string]any{"isPublished": true}} {
		req := jsonRequest(t, http.MethodPatch, "/", body)
		rec := serve(env.Admin.PublishPost, withChiURLParam(req, "id", "missing"))
		expectStatus(t, rec, http.StatusNotFound)
	}
}

func TestAdminPostsIncludeDrafts(t *testing.T) {
	env := newTestEnv(t)
	createPost(t, env, validPost("draft-post"))

	rec := serve(env.Admin.Posts, httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil))
	expectStatus(t, rec, http.StatusOK)
	if posts := decodeList(t, rec); len(posts) != 1 {
		t.Errorf("admin list has %d posts, want 1", len(posts))
	}

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "draft-post")
	rec = serve(env.Admin.Post, req)
	expectStatus(t, rec, http.StatusOK)

	req = withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope")
	expectStatus(t, serve(env.Admin.Post, req), http.StatusNotFound)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	id := createPost(t, env, validPost("hello-world"))["id"].(string)

	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id)
	expectStatus(t, serve(env.Admin.DeletePost, req), http.StatusNoContent)

	req = withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id)
	expectStatus(t, serve(env.Admin.DeletePost, req), http.StatusNotFound)
}

func TestDeleteTagKeepsPosts(t *testing.T) {
	env := newTestEnv(t)
	createPost(t, env, validPost("hello-world"))

	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "swift")
	expectStatus(t, serve(env.Admin.DeleteTag, req), http.StatusNoContent)

	req = withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "hello-world")
	rec := serve(env.Admin.Post, req)
	expectStatus(t, rec, http.StatusOK)
	if names := tagNamesOf(decodeBody(t, rec)); len(names) != 1 || names[0] != "ios" {
		t.Errorf("tags after delete = %v, want [ios]", names)
	}

	// Deleting an unknown tag is not an error.
	req = withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "nope")
	expectStatus(t, serve(env.Admin.DeleteTag, req), http.StatusNoContent)
}

func TestDeleteTermRejectsBadEscape(t *testing.T) {
	env := newTestEnv(t)

	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "ci%zzcd")
	expectStatus(t, serve(env.Admin.DeleteTag, req), http.StatusBadRequest)

	req = withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "ci%zzcd")
	expectStatus(t, serve(env.Admin.DeleteCategory, req), http.StatusBadRequest)
}

func TestTaxonomyCreate(t *testing.T) {
	env := newTestEnv(t)

	rec := serve(env.Admin.CreateCategory, jsonRequest(t, http.MethodPost, "/", map[string]any{"name": "Mobile Dev"}))
	expectStatus(t, rec, http.StatusCreated)
	if got := decodeBody(t, rec)["id"]; got != "mobile-dev" {
		t.Errorf("category id = %v, want mobile-dev", got)
	}

	// Same derived id returns the existing row.
	rec = serve(env.Admin.CreateCategory, jsonRequest(t, http.MethodPost, "/", map[string]any{"name": "Mobile Dev"}))
	expectStatus(t, rec, http.StatusCreated)
	if got := decodeBody(t, rec)["id"]; got != "mobile-dev" {
		t.Errorf("category id = %v, want mobile-dev", got)
	}

	rec = serve(env.Admin.CreateCategory, jsonRequest(t, http.MethodPost, "/", map[string]any{"name": "x"}))
	expectStatus(t, rec, http.StatusBadRequest)

	rec = serve(env.Admin.CreateTag, jsonRequest(t, http.MethodPost, "/", map[string]any{"name": "Swift UI", "color": "#D8B4FE"}))
	expectStatus(t, rec, http.StatusCreated)
	tag := decodeBody(t, rec)
	if tag["id"] != "swift-ui" || tag["color"] != "#D8B4FE" {
		t.Errorf("tag = %v", tag)
	}

	rec = serve(env.Admin.Taxonomy, httptest.NewRequest(http.MethodGet, "/", nil))
	expectStatus(t, rec, http.StatusOK)
	tax := decodeBody(t, rec)
	if cats, _ := tax["categories"].([]any); len(cats) != 1 {
		t.Errorf("categories = %v", tax["categories"])
	}
	if tags, _ := tax["tags"].([]any); len(tags) != 1 {
		t.Errorf("tags = %v", tax["tags"])
	}

	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "mobile-dev")
	expectStatus(t, serve(env.Admin.DeleteCategory, req), http.StatusNoContent)
}

func TestProjectCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := serve(env.Admin.CreateProject, jsonRequest(t, http.MethodPost, "/", map[string]any{
		"name":        "Folio",
		"description": "This site.",
		"tags":        []string{"Go", "SQLite"},
	}))
	expectStatus(t, rec, http.StatusCreated)
	project := decodeBody(t, rec)
	id := project["id"].(string)
	if project["status"] != "active" {
		t.Errorf("status = %v, want active", project["status"])
	}
	stack, _ := project["techStack"].([]any)
	alias, _ := project["tags"].([]any)
	if len(stack) != 2 || len(alias) != 2 {
		t.Errorf("techStack = %v, tags = %v", project["techStack"], project["tags"])
	}

	req := jsonRequest(t, http.MethodPut, "/", map[string]any{"status": "archived"})
	rec = serve(env.Admin.UpdateProject, withChiURLParam(req, "id", id))
	expectStatus(t, rec, http.StatusOK)
	updated := decodeBody(t, rec)
	if updated["status"] != "archived" || updated["name"] != "Folio" {
		t.Errorf("updated = %v", updated)
	}

	req = jsonRequest(t, http.MethodPut, "/", map[string]any{"status": "paused"})
	expectStatus(t, serve(env.Admin.UpdateProject, withChiURLParam(req, "id", id)), http.StatusBadRequest)

	req = jsonRequest(t, http.MethodPut, "/", map[string]any{"name": "Other"})
	expectStatus(t, serve(env.Admin.UpdateProject, withChiURLParam(req, "id", "missing")), http.StatusNotFound)

	// Archived projects still show in the admin list.
	rec = serve(env.Admin.Projects, httptest.NewRequest(http.MethodGet, "/", nil))
	expectStatus(t, rec, http.StatusOK)
	if list := decodeList(t, rec); len(list) != 1 {
		t.Errorf("admin projects = %d, want 1", len(list))
	}

	req = withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id)
	expectStatus(t, serve(env.Admin.Project, req), http.StatusOK)

	req = withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id)
	expectStatus(t, serve(env.Admin.DeleteProject, req), http.StatusNoContent)
	req = withChiURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id)
	expectStatus(t, serve(env.Admin.DeleteProject, req), http.StatusNotFound)

	rec = serve(env.Admin.CreateProject, jsonRequest(t, http.MethodPost, "/", map[string]any{"description": "no name"}))
	expectStatus(t, rec, http.StatusBadRequest)
}
