package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
)

func newCategoriesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "List sections",
	}

	var q domain.ListQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			page, err := a.Client().ListCategories(ctx, q)
			if err != nil {
				return err
			}
			return printPage(rt, page, []string{"ID", "NAME", "SLUG", "ARTICLES", "ACTIVE"}, func(c domain.Category) []string {
				return []string{c.ID, c.Name, c.Slug, strconv.Itoa(c.ArticleCount), yesNo(c.IsActive)}
			})
		},
	}
	addListFlags(list, &q)
	cmd.AddCommand(list)
	return cmd
}

func newMediaCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "List and upload media files",
	}

	var filter domain.MediaFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List uploaded media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			page, err := a.Client().ListMedia(ctx, filter)
			if err != nil {
				return err
			}
			return printPage(rt, page, []string{"ID", "NAME", "TYPE", "SIZE", "URL"}, func(m domain.Media) []string {
				return []string{m.ID, m.OriginalName, m.MimeType, strconv.FormatInt(m.Size, 10), m.URL}
			})
		},
	}
	addListFlags(list, &filter.ListQuery)
	list.Flags().StringVar(&filter.Type, "type", "", "MIME type family, e.g. image")

	var alt string
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file to the media library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.authed(ctx)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open upload: %w", err)
			}
			defer f.Close()

			m, err := a.Client().UploadMedia(ctx, domain.Upload{
				Filename:    filepath.Base(args[0]),
				ContentType: mime.TypeByExtension(filepath.Ext(args[0])),
				Body:        f,
			}, alt)
			if err != nil {
				return err
			}
			return rt.printFields(m, [][2]string{
				{"ID", m.ID},
				{"Name", m.OriginalName},
				{"Type", m.MimeType},
				{"Size", strconv.FormatInt(m.Size, 10)},
				{"URL", m.URL},
			})
		},
	}
	upload.Flags().StringVar(&alt, "alt", "", "alternative text")

	cmd.AddCommand(list, upload)
	return cmd
}
