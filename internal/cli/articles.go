package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

func newArticlesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"article"},
		Short:   "List and manage articles",
	}
	cmd.AddCommand(
		newArticlesListCmd(rt),
		newArticlesGetCmd(rt),
		newArticlesCreateCmd(rt),
		newArticleStatusCmd(rt, "publish", "Publish an article", domain.StatusPublished),
		newArticleStatusCmd(rt, "unpublish", "Move an article back to draft", domain.StatusDraft),
		newArticleStatusCmd(rt, "archive", "Archive an article", domain.StatusArchived),
		newArticlesDeleteCmd(rt),
	)
	return cmd
}

// addListFlags binds the shared pagination, search and sort flags.
func addListFlags(cmd *cobra.Command, q *domain.ListQuery) {
	f := cmd.Flags()
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.Limit, "limit", 10, "items per page (max 100)")
	f.StringVar(&q.Search, "search", "", "free-text search")
	f.StringVar(&q.SortBy, "sort", "", "sort field")
	f.StringVar((*string)(&q.SortOrder), "order", "", "sort order: asc or desc")
}

func articleRow(a domain.Article) []string {
	category := "-"
	if a.Category != nil {
		category = a.Category.Name
	}
	featured := ""
	if a.IsFeatured {
		featured = "*"
	}
	return []string{
		a.ID,
		a.Title + featured,
		string(a.Status),
		category,
		strconv.Itoa(a.ViewCount),
		formatTime(a.UpdatedAt),
	}
}

func newArticlesListCmd(rt *runtime) *cobra.Command {
	var (
		filter   domain.ArticleFilter
		status   string
		featured string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		Long: `List articles, newest first. Anonymous callers see published articles only.

Examples:
  newsctl articles list --status DRAFT
  newsctl articles list --category politics --search election --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			filter.Status = domain.ArticleStatus(strings.ToUpper(status))
			if featured != "" {
				v, err := strconv.ParseBool(featured)
				if err != nil {
					return fmt.Errorf("invalid --featured %q", featured)
				}
				filter.Featured = &v
			}

			page, err := a.Client().ListArticles(ctx, filter)
			if err != nil {
				return err
			}
			return printPage(rt, page, []string{"ID", "TITLE", "STATUS", "CATEGORY", "VIEWS", "UPDATED"}, articleRow)
		},
	}
	addListFlags(cmd, &filter.ListQuery)
	cmd.Flags().StringVar(&status, "status", "", "DRAFT, PUBLISHED or ARCHIVED")
	cmd.Flags().StringVar(&filter.CategoryID, "category", "", "category id or slug")
	cmd.Flags().StringVar(&featured, "featured", "", "true or false")
	return cmd
}

func (rt *runtime) printArticle(a *domain.Article) error {
	category := "-"
	if a.Category != nil {
		category = a.Category.Name
	}
	author := "-"
	if a.Author != nil {
		author = a.Author.Username
	}
	image := "-"
	if a.FeaturedImage != nil {
		image = *a.FeaturedImage
	}
	return rt.printFields(a, [][2]string{
		{"ID", a.ID},
		{"Title", a.Title},
		{"Slug", a.Slug},
		{"Status", string(a.Status)},
		{"Featured", yesNo(a.IsFeatured)},
		{"Category", category},
		{"Author", author},
		{"Tags", orDash(strings.Join(a.Tags, ", "))},
		{"Image", image},
		{"Views", strconv.Itoa(a.ViewCount)},
		{"Published", formatTimePtr(a.PublishedAt)},
		{"Updated", formatTime(a.UpdatedAt)},
		{"Excerpt", orDash(a.Excerpt)},
	})
}

func newArticlesGetCmd(rt *runtime) *cobra.Command {
	var bySlug bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			var article *domain.Article
			if bySlug {
				article, err = a.Client().GetArticleBySlug(ctx, args[0])
			} else {
				article, err = a.Client().GetArticle(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return rt.printArticle(article)
		},
	}
	cmd.Flags().BoolVar(&bySlug, "slug", false, "look the article up by slug")
	return cmd
}

func newArticlesCreateCmd(rt *runtime) *cobra.Command {
	var (
		in     domain.ArticleInput
		status string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an article",
		Long: `Create an article. The slug is derived from the title when omitted.

Examples:
  newsctl articles create --title "Election day" --content "..." --category politics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			in.Status = domain.ArticleStatus(strings.ToUpper(status))
			if in.CategoryID != "" {
				category, err := a.Client().GetCategory(ctx, in.CategoryID)
				if err != nil {
					return fmt.Errorf("resolve category %q: %w", in.CategoryID, err)
				}
				in.CategoryID = category.ID
			}
			article, err := a.Client().CreateArticle(ctx, in)
			if err != nil {
				return err
			}
			return rt.printArticle(article)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "headline")
	f.StringVar(&in.Slug, "slug", "", "URL slug")
	f.StringVar(&in.Content, "content", "", "body text")
	f.StringVar(&in.Excerpt, "excerpt", "", "short summary")
	f.StringVar(&in.CategoryID, "category", "", "category id or slug")
	f.StringSliceVar(&in.Tags, "tag", nil, "tag (repeatable)")
	f.StringVar(&status, "status", "", "DRAFT, PUBLISHED or ARCHIVED")
	f.BoolVar(&in.IsFeatured, "featured", false, "feature on the front page")
	return cmd
}

func newArticleStatusCmd(rt *runtime, use, short string, status domain.ArticleStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			article, err := a.Client().SetArticleStatus(ctx, args[0], status)
			if err != nil {
				return err
			}
			rt.printf("%s is now %s\n", article.Title, article.Status)
			return nil
		},
	}
}

func newArticlesDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			if err := a.Client().DeleteArticle(ctx, args[0]); err != nil {
				return err
			}
			rt.printf("Deleted article %s\n", args[0])
			return nil
		},
	}
}
