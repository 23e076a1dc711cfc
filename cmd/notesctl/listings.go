package main

import (
	"context"
	"fmt"
	"mime"
	"notes-marketplace/internal/app"
	"notes-marketplace/internal/service"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func listingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Manage note listings",
	}

	cmd.AddCommand(listingsListCmd())
	cmd.AddCommand(listingsUploadCmd())
	cmd.AddCommand(listingsDeleteCmd())

	return cmd
}

func listingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every note, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				listings, err := a.Services.Listing.List(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCREATED\tURL")
				for _, l := range listings {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						l.ID, l.Title, l.Price.StringFixed(2),
						l.CreatedAt.Format("2006-01-02 15:04"),
						a.Services.Listing.AssetURL(l))
				}
				return w.Flush()
			})
		},
	}
}

func listingsUploadCmd() *cobra.Command {
	var (
		title string
		price string
	)

	cmd := &cobra.Command{
		Use:   "upload [pdf-path]",
		Short: "Upload a PDF as a new note",
		Example: `  notesctl listings upload ./calculus.pdf --title "Calculus I" --price 499
  notesctl listings upload notes.pdf -t "Optics" -p 149.50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price %q: %w", price, err)
			}

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				listing, err := a.Services.Listing.Upload(ctx, &service.UploadListingInput{
					Title:       title,
					Price:       amount,
					FileName:    filepath.Base(path),
					ContentType: mime.TypeByExtension(filepath.Ext(path)),
					Body:        f,
					Size:        info.Size(),
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) at %s\n",
					listing.ID, listing.Title, a.Services.Listing.AssetURL(listing))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().StringVarP(&price, "price", "p", "", "price in major currency units")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func listingsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [note-id]",
		Short: "Delete a note and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Services.Listing.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}
