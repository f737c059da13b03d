// Package content is the read side used by clients of the blog: the CLI and
// any Go program that renders the public site. A Source hides where posts,
// projects and taxonomy come from. The implementation is chosen once at
// construction: embedded fixtures, a headless WordPress install, or the
// self-hosted folio API.
package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/models"
)

// ErrNotFound is returned when a post does not exist or is not published.
var ErrNotFound = errors.New("content: not found")

// PostFilter narrows a post listing. Zero values mean no filtering.
type PostFilter struct {
	Category string
	Featured *bool
	Search   string
}

// Source reads published content.
type Source interface {
	Posts(ctx context.Context, f PostFilter) ([]models.Post, error)
	Post(ctx context.Context, idOrSlug string) (*models.Post, error)
	Projects(ctx context.Context) ([]models.Project, error)
	Taxonomy(ctx context.Context) (*models.Taxonomy, error)
}

// Kind names a Source implementation.
type Kind string

const (
	KindAPI       Kind = "api"
	KindWordPress Kind = "wordpress"
	KindFixtures  Kind = "fixtures"
)

// DefaultKind picks the implementation the configuration asks for:
// fixtures when mock data is on, WordPress when a base URL is set, and the
// self-hosted API otherwise.
func DefaultKind(cfg config.SourceConfig) Kind {
	switch {
	case cfg.UseMockData:
		return KindFixtures
	case cfg.WordPressBaseURL != "":
		return KindWordPress
	default:
		return KindAPI
	}
}

// NewSource builds the Source selected by DefaultKind.
func NewSource(cfg config.SourceConfig) (Source, error) {
	return Open(DefaultKind(cfg), cfg)
}

// Open builds a Source of the given kind.
func Open(kind Kind, cfg config.SourceConfig) (Source, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch kind {
	case KindFixtures:
		return NewFixtures()
	case KindWordPress:
		if cfg.WordPressBaseURL == "" {
			return nil, errors.New("content: WORDPRESS_BASE_URL is not set")
		}
		return NewWordPress(cfg.WordPressBaseURL, client), nil
	case KindAPI:
		if cfg.APIBaseURL == "" {
			return nil, errors.New("content: API_BASE_URL is not set")
		}
		return NewAPI(cfg.APIBaseURL, NewSession(), client, DefaultCacheTTL), nil
	default:
		return nil, fmt.Errorf("content: unknown source %q", kind)
	}
}

// Error is a non-2xx answer from a remote source.
type Error struct {
	Status  int
	Path    string
	Message string
	Fields  []FieldError
}

// FieldError is one validation failure reported by the folio API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("request failed (%s): %s", e.Path, msg)
}

// Is reports 404 answers as ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// filterPosts applies f in memory, keeping the input order. Only published
// posts survive.
func filterPosts(posts []models.Post, f PostFilter) []models.Post {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !p.IsPublished {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// findPost matches idOrSlug against ids first, then slugs.
func findPost(posts []models.Post, idOrSlug string) *models.Post {
	for _, match := range []func(models.Post) bool{
		func(p models.Post) bool { return p.ID == idOrSlug },
		func(p models.Post) bool { return p.Slug == idOrSlug },
	} {
		if i := slices.IndexFunc(posts, match); i >= 0 {
			p := posts[i]
			return &p
		}
	}
	return nil
}

// resolveAssetURL turns a root-relative path such as /uploads/x.png into an
// absolute URL on base. Absolute and data URLs pass through.
func resolveAssetURL(base *url.URL, raw string) string {
	if raw == "" || base == nil || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

// Ptr returns a pointer to v, for optional payload fields.
func Ptr[T any](v T) *T { return &v }

func parseTime(s string) *time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// sortProjects orders projects by sortOrder, keeping ties stable.
func sortProjects(projects []models.Project) {
	slices.SortStableFunc(projects, func(a, b models.Project) int {
		return a.SortOrder - b.SortOrder
	})
}
