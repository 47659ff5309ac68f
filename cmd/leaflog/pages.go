package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/usecase"
)

func newPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages <book-id> <total>",
		Short: "Correct a book's total page count",
		Long:  "Correct a book's total page count. Percentages of all logged progress are recomputed; a reduction below already-logged progress is rejected.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id: %s", args[0])
			}
			total, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid page count: %s", args[1])
			}

			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			tracker := usecase.NewTracker(dbCtx)
			book, err := tracker.UpdateTotalPages(context.Background(), bookID, total)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Page count for %q set to %d\n", book.Title, *book.TotalPages)
			return nil
		},
	}

	return cmd
}
