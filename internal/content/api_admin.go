package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"folio/internal/models"
)

// PostInput is the body of post create and update calls. Nil fields are
// left out, so an update only touches what is set. Tags replace the
// post's tags when non-nil.
type PostInput struct {
	Title       *string   `json:"title,omitempty"`
	Slug        *string   `json:"slug,omitempty"`
	Excerpt     *string   `json:"excerpt,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Category    *string   `json:"category,omitempty"`
	HeroImage   *string   `json:"heroImage,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsPublished *bool     `json:"isPublished,omitempty"`
	Featured    *bool     `json:"featured,omitempty"`
	PublishedAt *string   `json:"publishedAt,omitempty"`
	ReadingTime *string   `json:"readingTime,omitempty"`
}

// ProjectInput is the body of project create and update calls.
type ProjectInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Link        *string   `json:"link,omitempty"`
	Image       *string   `json:"image,omitempty"`
	TechStack   *[]string `json:"techStack,omitempty"`
	Status      *string   `json:"status,omitempty"`
	SortOrder   *int      `json:"sortOrder,omitempty"`
}

// TwoFactorSetup is the pending secret returned by SetupTwoFactor.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"`
}

// Login authenticates and stores the token in the client's session.
// code is only needed for accounts with two-factor enabled.
func (a *API) Login(ctx context.Context, email, password, code string) (*models.PublicUser, error) {
	var out struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	payload := map[string]string{"email": email, "password": password}
	if code != "" {
		payload["code"] = code
	}
	if err := a.mutate(ctx, http.MethodPost, "/auth/login", payload, &out); err != nil {
		return nil, err
	}
	a.session.Set(out.Token, &out.User)
	return &out.User, nil
}

// Logout ends the server session. The local session is cleared even when
// the request fails.
func (a *API) Logout(ctx context.Context) error {
	defer func() {
		a.session.Clear()
		a.Invalidate()
	}()
	return a.mutate(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the account behind the session and whether it uses 2FA.
func (a *API) Me(ctx context.Context) (*models.PublicUser, bool, error) {
	raw, err := a.do(ctx, http.MethodGet, "/auth/me", nil, "")
	if err != nil {
		return nil, false, err
	}
	var out struct {
		User             models.PublicUser `json:"user"`
		TwoFactorEnabled bool              `json:"twoFactorEnabled"`
	}
	if err := decode("/auth/me", raw, &out); err != nil {
		return nil, false, err
	}
	return &out.User, out.TwoFactorEnabled, nil
}

// AdminPosts lists every post, drafts included.
func (a *API) AdminPosts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	var posts []models.Post
	if err := a.query(ctx, "/admin/posts", postQuery(f), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (a *API) AdminPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := a.query(ctx, "/admin/posts/"+url.PathEscape(id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (a *API) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	var post models.Post
	if err := a.mutate(ctx, http.MethodPost, "/admin/posts", in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost applies a partial update.
func (a *API) UpdatePost(ctx context.Context, id string, in PostInput) (*models.Post, error) {
	var post models.Post
	if err := a.mutate(ctx, http.MethodPatch, "/admin/posts/"+url.PathEscape(id), in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// SetPublished publishes or unpublishes a post.
func (a *API) SetPublished(ctx context.Context, id string, published bool) (*models.Post, error) {
	var post models.Post
	body := map[string]bool{"isPublished": published}
	if err := a.mutate(ctx, http.MethodPatch, "/admin/posts/"+url.PathEscape(id)+"/publish", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (a *API) DeletePost(ctx context.Context, id string) error {
	return a.mutate(ctx, http.MethodDelete, "/admin/posts/"+url.PathEscape(id), nil, nil)
}

// AdminProjects lists every project, archived ones included.
func (a *API) AdminProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := a.query(ctx, "/admin/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (a *API) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := a.mutate(ctx, http.MethodPost, "/admin/projects", in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (a *API) UpdateProject(ctx context.Context, id string, in ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := a.mutate(ctx, http.MethodPatch, "/admin/projects/"+url.PathEscape(id), in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (a *API) DeleteProject(ctx context.Context, id string) error {
	return a.mutate(ctx, http.MethodDelete, "/admin/projects/"+url.PathEscape(id), nil, nil)
}

func (a *API) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := a.mutate(ctx, http.MethodPost, "/admin/taxonomy/categories", map[string]string{"name": name}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *API) DeleteCategory(ctx context.Context, id string) error {
	return a.mutate(ctx, http.MethodDelete, "/admin/taxonomy/categories/"+url.PathEscape(id), nil, nil)
}

// CreateTag creates a tag. An empty color leaves it unset.
func (a *API) CreateTag(ctx context.Context, name, color string) (*models.Tag, error) {
	body := map[string]string{"name": name}
	if color != "" {
		body["color"] = color
	}
	var t models.Tag
	if err := a.mutate(ctx, http.MethodPost, "/admin/taxonomy/tags", body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *API) DeleteTag(ctx context.Context, id string) error {
	return a.mutate(ctx, http.MethodDelete, "/admin/taxonomy/tags/"+url.PathEscape(id), nil, nil)
}

// Media lists uploaded assets with absolute URLs.
func (a *API) Media(ctx context.Context) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	if err := a.query(ctx, "/admin/media", nil, &assets); err != nil {
		return nil, err
	}
	for i := range assets {
		a.resolveAsset(&assets[i])
	}
	return assets, nil
}

// UploadMedia sends r as a multipart "file" field.
func (a *API) UploadMedia(ctx context.Context, filename string, r io.Reader) (*models.MediaAsset, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("upload read: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload form: %w", err)
	}

	var asset models.MediaAsset
	if err := a.send(ctx, http.MethodPost, "/admin/media", &buf, mw.FormDataContentType(), &asset); err != nil {
		return nil, err
	}
	a.resolveAsset(&asset)
	return &asset, nil
}

func (a *API) resolveAsset(m *models.MediaAsset) {
	m.URL = resolveAssetURL(a.origin, m.URL)
	if m.ThumbURL != nil {
		m.ThumbURL = Ptr(resolveAssetURL(a.origin, *m.ThumbURL))
	}
}

// SetupTwoFactor starts 2FA enrolment.
func (a *API) SetupTwoFactor(ctx context.Context) (*TwoFactorSetup, error) {
	var out TwoFactorSetup
	if err := a.mutate(ctx, http.MethodPost, "/admin/account/2fa/setup", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnableTwoFactor confirms enrolment with a code from the authenticator.
func (a *API) EnableTwoFactor(ctx context.Context, code string) error {
	return a.mutate(ctx, http.MethodPost, "/admin/account/2fa/enable", map[string]string{"code": code}, nil)
}

func (a *API) DisableTwoFactor(ctx context.Context, code string) error {
	return a.mutate(ctx, http.MethodPost, "/admin/account/2fa/disable", map[string]string{"code": code}, nil)
}
