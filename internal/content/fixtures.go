package content

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"folio/internal/models"
	"folio/internal/slug"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type fixtureTag struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

type fixturePost struct {
	ID          string       `yaml:"id"`
	Title       string       `yaml:"title"`
	Slug        string       `yaml:"slug"`
	Excerpt     string       `yaml:"excerpt"`
	Content     string       `yaml:"content"`
	Category    string       `yaml:"category"`
	Tags        []fixtureTag `yaml:"tags"`
	HeroImage   string       `yaml:"heroImage"`
	Featured    bool         `yaml:"featured"`
	PublishedAt string       `yaml:"publishedAt"`
	ReadingTime string       `yaml:"readingTime"`
}

type fixtureProject struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Link        string   `yaml:"link"`
	Image       string   `yaml:"image"`
	TechStack   []string `yaml:"techStack"`
	Status      string   `yaml:"status"`
	SortOrder   int      `yaml:"sortOrder"`
}

type fixtureFile struct {
	Categories []string         `yaml:"categories"`
	Posts      []fixturePost    `yaml:"posts"`
	Projects   []fixtureProject `yaml:"projects"`
}

// Fixtures serves the embedded sample content. It is read-only and safe for
// concurrent use.
type Fixtures struct {
	categories []string
	posts      []models.Post
	projects   []models.Project
}

var _ Source = (*Fixtures)(nil)

// NewFixtures parses the embedded fixture file.
func NewFixtures() (*Fixtures, error) {
	return parseFixtures(fixturesYAML)
}

func parseFixtures(data []byte) (*Fixtures, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	f := &Fixtures{categories: file.Categories}
	for _, p := range file.Posts {
		post := models.Post{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Excerpt:     p.Excerpt,
			Content:     p.Content,
			Category:    p.Category,
			HeroImage:   p.HeroImage,
			IsPublished: true,
			Featured:    p.Featured,
			PublishedAt: parseTime(p.PublishedAt),
			ReadingTime: p.ReadingTime,
			Tags:        make([]models.Tag, 0, len(p.Tags)),
		}
		if post.PublishedAt != nil {
			post.CreatedAt = *post.PublishedAt
			post.UpdatedAt = *post.PublishedAt
		}
		for _, t := range p.Tags {
			tag := models.Tag{ID: t.ID, Name: t.Name}
			if t.Color != "" {
				tag.Color = Ptr(t.Color)
			}
			post.Tags = append(post.Tags, tag)
		}
		f.posts = append(f.posts, post)
	}

	for _, p := range file.Projects {
		f.projects = append(f.projects, models.Project{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Link:        p.Link,
			Image:       p.Image,
			TechStack:   p.TechStack,
			Status:      models.ProjectStatus(p.Status),
			SortOrder:   p.SortOrder,
		})
	}
	return f, nil
}

func (f *Fixtures) Posts(_ context.Context, filter PostFilter) ([]models.Post, error) {
	return filterPosts(f.posts, filter), nil
}

func (f *Fixtures) Post(_ context.Context, idOrSlug string) (*models.Post, error) {
	if p := findPost(f.posts, idOrSlug); p != nil {
		return p, nil
	}
	return nil, ErrNotFound
}

// Projects returns the active fixture projects in sort order.
func (f *Fixtures) Projects(context.Context) ([]models.Project, error) {
	out := []models.Project{}
	for _, p := range f.projects {
		if p.Status == models.ProjectActive {
			out = append(out, p)
		}
	}
	sortProjects(out)
	return out, nil
}

// Taxonomy lists the default categories plus every tag used by a fixture
// post, in first-seen order.
func (f *Fixtures) Taxonomy(context.Context) (*models.Taxonomy, error) {
	tax := &models.Taxonomy{Categories: []models.Category{}, Tags: []models.Tag{}}
	for _, name := range f.categories {
		tax.Categories = append(tax.Categories, models.Category{ID: slug.Key(name), Name: name})
	}

	seen := map[string]bool{}
	for _, p := range f.posts {
		for _, t := range p.Tags {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tax.Tags = append(tax.Tags, t)
		}
	}
	return tax, nil
}
