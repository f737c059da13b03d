package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"folio/internal/models"
)

// DefaultCacheTTL is how long a read stays cached by the API client.
const DefaultCacheTTL = 5 * time.Minute

// ErrTwoFactorRequired is returned by Login when the account needs a TOTP
// code and none (or a wrong one) was supplied.
var ErrTwoFactorRequired = errors.New("content: two-factor code required")

// Session holds the bearer token of a logged-in admin. It belongs to one
// API client and is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.PublicUser
}

// NewSession returns an empty, logged-out session.
func NewSession() *Session { return &Session{} }

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the logged-in user, or nil.
func (s *Session) User() *models.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Set stores a token obtained elsewhere, for example from a config file.
func (s *Session) Set(token string, user *models.PublicUser) {
	s.mu.Lock()
	s.token, s.user = token, user
	s.mu.Unlock()
}

// Clear logs the session out locally.
func (s *Session) Clear() { s.Set("", nil) }

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// API talks to a folio server. Reads are cached for ttl and identical
// in-flight reads share one request. Any successful write drops the cache.
type API struct {
	baseURL string
	origin  *url.URL
	client  *http.Client
	session *Session
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
	gen   uint64
	group singleflight.Group
}

var _ Source = (*API)(nil)

// NewAPI creates a client for the server at baseURL (with or without the
// trailing /api). A ttl of zero disables caching.
func NewAPI(baseURL string, session *Session, client *http.Client, ttl time.Duration) *API {
	if client == nil {
		client = http.DefaultClient
	}
	if session == nil {
		session = NewSession()
	}
	root := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
	origin, _ := url.Parse(root + "/")
	return &API{
		baseURL: root + "/api",
		origin:  origin,
		client:  client,
		session: session,
		ttl:     ttl,
		now:     time.Now,
		cache:   map[string]cacheEntry{},
	}
}

// Session returns the session this client authenticates with.
func (a *API) Session() *Session { return a.session }

// Invalidate drops every cached read. Reads already in flight are not
// stored once they finish.
func (a *API) Invalidate() {
	a.mu.Lock()
	a.cache = map[string]cacheEntry{}
	a.gen++
	a.mu.Unlock()
}

func (a *API) cached(key string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.cache[key]
	if !ok || !a.now().Before(e.expires) {
		return nil, false
	}
	return e.body, true
}

func (a *API) generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

func (a *API) store(key string, body []byte, gen uint64) {
	if a.ttl <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen == a.gen {
		a.cache[key] = cacheEntry{body: body, expires: a.now().Add(a.ttl)}
	}
}

// query performs a cached GET and decodes the body into dst.
func (a *API) query(ctx context.Context, path string, q url.Values, dst any) error {
	key := path
	if len(q) > 0 {
		key += "?" + q.Encode()
	}

	body, ok := a.cached(key)
	if !ok {
		v, err, _ := a.group.Do(key, func() (any, error) {
			if body, ok := a.cached(key); ok {
				return body, nil
			}
			gen := a.generation()
			body, err := a.do(ctx, http.MethodGet, key, nil, "")
			if err != nil {
				return nil, err
			}
			a.store(key, body, gen)
			return body, nil
		})
		if err != nil {
			return err
		}
		body = v.([]byte)
	}
	return decode(path, body, dst)
}

// mutate sends a write and drops the cache when it succeeds.
func (a *API) mutate(ctx context.Context, method, path string, payload, dst any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}
	return a.send(ctx, method, path, body, contentType, dst)
}

func (a *API) send(ctx context.Context, method, path string, body io.Reader, contentType string, dst any) error {
	raw, err := a.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	a.Invalidate()
	return decode(path, raw, dst)
}

func decode(path string, body []byte, dst any) error {
	if dst == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do issues one request against the API, adding the bearer token when the
// session has one.
func (a *API) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := a.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api %s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(resp.StatusCode, path, raw)
	}
	return raw, nil
}

func apiError(status int, path string, raw []byte) error {
	var body struct {
		Message           string       `json:"message"`
		Errors            []FieldError `json:"errors"`
		TwoFactorRequired bool         `json:"twoFactorRequired"`
	}
	_ = json.Unmarshal(raw, &body)
	if body.TwoFactorRequired {
		return fmt.Errorf("%w: %s", ErrTwoFactorRequired, body.Message)
	}
	if body.Message == "" && len(body.Errors) > 0 {
		body.Message = "Validation failed"
	}
	return &Error{Status: status, Path: path, Message: body.Message, Fields: body.Errors}
}

// Posts lists published posts, filtered server side.
func (a *API) Posts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	var posts []models.Post
	if err := a.query(ctx, "/posts", postQuery(f), &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		a.resolvePost(&posts[i])
	}
	return posts, nil
}

// postQuery encodes the filters the server's post listings accept.
func postQuery(f PostFilter) url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Featured != nil {
		q.Set("featured", strconv.FormatBool(*f.Featured))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	return q
}

func (a *API) Post(ctx context.Context, idOrSlug string) (*models.Post, error) {
	var post models.Post
	if err := a.query(ctx, "/posts/"+url.PathEscape(idOrSlug), nil, &post); err != nil {
		return nil, err
	}
	a.resolvePost(&post)
	return &post, nil
}

func (a *API) Projects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := a.query(ctx, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Image = resolveAssetURL(a.origin, projects[i].Image)
	}
	return projects, nil
}

func (a *API) Taxonomy(ctx context.Context) (*models.Taxonomy, error) {
	var tax models.Taxonomy
	if err := a.query(ctx, "/taxonomy", nil, &tax); err != nil {
		return nil, err
	}
	return &tax, nil
}

// RecordView bumps the view counter of a published post and returns the
// new count. It does not touch the cache.
func (a *API) RecordView(ctx context.Context, idOrSlug string) (int64, error) {
	raw, err := a.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(idOrSlug)+"/views", nil, "")
	if err != nil {
		return 0, err
	}
	var out struct {
		Views int64 `json:"views"`
	}
	if err := decode("views", raw, &out); err != nil {
		return 0, err
	}
	return out.Views, nil
}

func (a *API) resolvePost(p *models.Post) {
	p.HeroImage = resolveAssetURL(a.origin, p.HeroImage)
}
