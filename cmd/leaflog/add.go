package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/usecase"
)

func newAddCmd() *cobra.Command {
	var (
		author string
		pages  int64
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a book to the tracker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]

			var totalPages *int64
			if cmd.Flags().Changed("pages") {
				totalPages = &pages
			}

			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			tracker := usecase.NewTracker(dbCtx)
			book, err := tracker.AddBook(context.Background(), title, author, totalPages)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (id %d)\n", book.Title, book.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&author, "author", "a", "", "Book author")
	cmd.Flags().Int64VarP(&pages, "pages", "p", 0, "Total page count")

	return cmd
}
