package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
	"folio/internal/models"
)

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestFixturesPosts(t *testing.T) {
	f, err := NewFixtures()
	require.NoError(t, err)
	ctx := context.Background()

	all, err := f.Posts(ctx, PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "designing-venuevent-ios-experience", all[0].Slug)
	require.NotNil(t, all[0].PublishedAt)
	assert.Equal(t, 2025, all[0].PublishedAt.Year())
	assert.Equal(t, "6 min read", all[0].ReadingTime)

	projects, err := f.Posts(ctx, PostFilter{Category: "Projects"})
	require.NoError(t, err)
	assert.Len(t, projects, 3)

	// Category matching is exact.
	none, err := f.Posts(ctx, PostFilter{Category: "projects"})
	require.NoError(t, err)
	assert.Empty(t, none)

	featured, err := f.Posts(ctx, PostFilter{Featured: Ptr(true)})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.True(t, featured[0].Featured)

	found, err := f.Posts(ctx, PostFilter{Search: "TERRAZA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Terraza Los Palomos: building a bespoke digital presence"}, titles(found))

	combined, err := f.Posts(ctx, PostFilter{Category: "Mobile", Search: "stack"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Choosing the right cross-platform stack in 2025"}, titles(combined))
}

func TestFixturesPost(t *testing.T) {
	f, err := NewFixtures()
	require.NoError(t, err)
	ctx := context.Background()

	byID, err := f.Post(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "refining-ci-cd-mobile-apps", byID.Slug)

	bySlug, err := f.Post(ctx, "inside-ios-testing-stack")
	require.NoError(t, err)
	assert.Equal(t, "6", bySlug.ID)
	require.Len(t, bySlug.Tags, 2)
	require.NotNil(t, bySlug.Tags[0].Color)
	assert.Equal(t, "#FEF9C3", *bySlug.Tags[0].Color)

	_, err = f.Post(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixturesProjectsAndTaxonomy(t *testing.T) {
	f, err := NewFixtures()
	require.NoError(t, err)
	ctx := context.Background()

	projects, err := f.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "venuevent", projects[0].ID)
	assert.Equal(t, []string{"SwiftUI", "MapKit", "CloudKit"}, projects[0].TechStack)

	tax, err := f.Taxonomy(ctx)
	require.NoError(t, err)
	require.Len(t, tax.Categories, 4)
	assert.Equal(t, "mobile", tax.Categories[0].ID)
	assert.Equal(t, "Mobile", tax.Categories[0].Name)

	// Tags are unique across posts, in first-seen order.
	ids := make([]string, len(tax.Tags))
	for i, tag := range tax.Tags {
		ids[i] = tag.ID
	}
	assert.Equal(t, []string{
		"swiftui", "ios-design", "ci-cd", "devops", "react-native", "architecture",
		"webflow", "seo", "flutter", "swift", "testing",
	}, ids)
}

func TestParseFixturesRejectsBadYAML(t *testing.T) {
	_, err := parseFixtures([]byte("posts: [unterminated"))
	assert.Error(t, err)
}

func TestOpenSelectsSource(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SourceConfig
		want Kind
	}{
		{"mock data wins", config.SourceConfig{UseMockData: true, WordPressBaseURL: "https://wp.example.com"}, KindFixtures},
		{"wordpress when configured", config.SourceConfig{WordPressBaseURL: "https://wp.example.com", APIBaseURL: "http://localhost:4000"}, KindWordPress},
		{"api otherwise", config.SourceConfig{APIBaseURL: "http://localhost:4000"}, KindAPI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultKind(tt.cfg))

			src, err := NewSource(tt.cfg)
			require.NoError(t, err)
			switch tt.want {
			case KindFixtures:
				assert.IsType(t, &Fixtures{}, src)
			case KindWordPress:
				assert.IsType(t, &WordPress{}, src)
			case KindAPI:
				assert.IsType(t, &API{}, src)
			}
		})
	}

	_, err := Open(KindWordPress, config.SourceConfig{})
	assert.Error(t, err)
	_, err = Open("ftp", config.SourceConfig{})
	assert.Error(t, err)
}
