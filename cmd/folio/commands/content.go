package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"folio/internal/content"
)

var (
	sourceKind string

	postCategory string
	postSearch   string
	postFeatured bool
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Read published content through the client data layer",
	Long: `Read posts, projects and taxonomy the way a client of the blog does and
print them as JSON.

The source defaults to the configuration: fixtures when USE_MOCK_DATA is
set, WordPress when WORDPRESS_BASE_URL is set, the folio API otherwise.

Examples:
  folio content posts --category Mobile
  folio content post designing-venuevent-ios-experience --source fixtures
  folio content taxonomy --source wordpress`,
}

var contentPostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List published posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource()
		if err != nil {
			return err
		}
		f := content.PostFilter{Category: postCategory, Search: postSearch}
		if cmd.Flags().Changed("featured") {
			f.Featured = content.Ptr(postFeatured)
		}
		posts, err := src.Posts(cmd.Context(), f)
		if err != nil {
			return err
		}
		return printJSON(cmd, posts)
	},
}

var contentPostCmd = &cobra.Command{
	Use:   "post <idOrSlug>",
	Short: "Show one published post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource()
		if err != nil {
			return err
		}
		post, err := src.Post(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, post)
	},
}

var contentProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List active projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource()
		if err != nil {
			return err
		}
		projects, err := src.Projects(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, projects)
	},
}

var contentTaxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "List categories and tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource()
		if err != nil {
			return err
		}
		tax, err := src.Taxonomy(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, tax)
	},
}

func init() {
	contentCmd.PersistentFlags().StringVar(&sourceKind, "source", "", "api, wordpress or fixtures (default from configuration)")

	contentPostsCmd.Flags().StringVar(&postCategory, "category", "", "Exact category name")
	contentPostsCmd.Flags().StringVar(&postSearch, "search", "", "Case-insensitive title search")
	contentPostsCmd.Flags().BoolVar(&postFeatured, "featured", false, "Only featured (or, with =false, only non-featured) posts")

	contentCmd.AddCommand(contentPostsCmd, contentPostCmd, contentProjectsCmd, contentTaxonomyCmd)
	rootCmd.AddCommand(contentCmd)
}

func openSource() (content.Source, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	kind := content.DefaultKind(cfg.Source)
	if sourceKind != "" {
		kind = content.Kind(sourceKind)
	}
	return content.Open(kind, cfg.Source)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
