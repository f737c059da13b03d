package handlers

import (
	"encoding/json"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"folio/internal/models"
	"folio/internal/slug"
)

// Validation limits for admin input.
const (
	minTitleLen    = 4
	minExcerptLen  = 20
	minContentLen  = 20
	minPasswordLen = 6
	minTermLen     = 2
)

// fieldError is one entry of a 400 validation response.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *fieldError) Error() string {
	return e.Field + ": " + e.Message
}

type fieldErrors []fieldError

func (fe *fieldErrors) add(field, msg string) {
	*fe = append(*fe, fieldError{Field: field, Message: msg})
}

// tagList accepts either a JSON array of strings or a single
// comma-separated string. Entries are trimmed and blanks dropped.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = cleanTags(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = cleanTags(strings.Split(s, ","))
		return nil
	}
	return &fieldError{Field: "tags", Message: "must be a list of strings or a comma-separated string"}
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// postPayload is the JSON body of post create and update requests. Pointer
// fields distinguish "absent" from "empty" for partial updates.
type postPayload struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug"`
	Excerpt     *string  `json:"excerpt"`
	Content     *string  `json:"content"`
	Category    *string  `json:"category"`
	HeroImage   *string  `json:"heroImage"`
	Tags        *tagList `json:"tags"`
	IsPublished *bool    `json:"isPublished"`
	Featured    *bool    `json:"featured"`
	PublishedAt *string  `json:"publishedAt"`
	ReadingTime *string  `json:"readingTime"`

	publishedAt *time.Time
}

// validate checks the fields present in p. With create set, title,
// excerpt, content, category and heroImage are required; a missing slug is
// derived from the title.
func (p *postPayload) validate(create bool) fieldErrors {
	var errs fieldErrors

	if create && p.Slug == nil && p.Title != nil {
		derived := slug.Generate(*p.Title)
		p.Slug = &derived
	}

	required := func(field string, v *string) bool {
		if v == nil {
			if create {
				errs.add(field, "is required")
			}
			return false
		}
		return true
	}

	if required("title", p.Title) && runeLen(*p.Title) < minTitleLen {
		errs.add("title", "must be at least 4 characters")
	}
	if required("slug", p.Slug) && !slug.Valid(*p.Slug) {
		errs.add("slug", "may only contain lowercase letters, digits and hyphens")
	}
	if required("excerpt", p.Excerpt) && runeLen(*p.Excerpt) < minExcerptLen {
		errs.add("excerpt", "must be at least 20 characters")
	}
	if required("content", p.Content) && runeLen(*p.Content) < minContentLen {
		errs.add("content", "must be at least 20 characters")
	}
	required("category", p.Category)
	required("heroImage", p.HeroImage)

	if p.PublishedAt != nil && *p.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, *p.PublishedAt)
		if err != nil {
			errs.add("publishedAt", "must be an RFC 3339 timestamp")
		} else {
			p.publishedAt = &t
		}
	}
	if p.ReadingTime != nil && strings.TrimSpace(*p.ReadingTime) == "" {
		p.ReadingTime = nil
	}
	return errs
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// projectPayload is the JSON body of project create and update requests.
// "tags" is accepted as a deprecated alias of techStack.
type projectPayload struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Link        *string  `json:"link"`
	Image       *string  `json:"image"`
	TechStack   *tagList `json:"techStack"`
	Tags        *tagList `json:"tags"`
	Status      *string  `json:"status"`
	SortOrder   *int     `json:"sortOrder"`
}

func (p *projectPayload) stack() *[]string {
	switch {
	case p.TechStack != nil:
		s := []string(*p.TechStack)
		return &s
	case p.Tags != nil:
		s := []string(*p.Tags)
		return &s
	}
	return nil
}

func (p *projectPayload) validate(create bool) fieldErrors {
	var errs fieldErrors
	if (p.Name != nil && strings.TrimSpace(*p.Name) == "") || (create && p.Name == nil) {
		errs.add("name", "is required")
	}
	if p.Status != nil && !models.ProjectStatus(*p.Status).Valid() {
		errs.add("status", "must be active or archived")
	}
	return errs
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

func (p *loginPayload) validate() fieldErrors {
	var errs fieldErrors
	addr, err := mail.ParseAddress(strings.TrimSpace(p.Email))
	if err != nil || addr.Address != strings.TrimSpace(p.Email) {
		errs.add("email", "Provide a valid email")
	}
	if len(p.Password) < minPasswordLen {
		errs.add("password", "Password is required")
	}
	return errs
}

type termPayload struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

func (p *termPayload) validate(kind string) fieldErrors {
	var errs fieldErrors
	if runeLen(p.Name) < minTermLen {
		errs.add("name", kind+" name is required")
	}
	return errs
}
