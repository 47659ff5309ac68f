package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/usecase"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <book-id>",
		Short: "Show a book with all its reading sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id: %s", args[0])
			}

			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			tracker := usecase.NewTracker(dbCtx)
			detail, err := tracker.BookInfo(context.Background(), bookID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s", detail.Book.Title)
			if detail.Book.Author != "" {
				fmt.Fprintf(out, " by %s", detail.Book.Author)
			}
			fmt.Fprintln(out)
			if detail.Book.TotalPages != nil {
				fmt.Fprintf(out, "Pages: %d\n", *detail.Book.TotalPages)
			}
			if detail.Book.Rating != nil {
				fmt.Fprintf(out, "Rating: %d/5\n", *detail.Book.Rating)
			}
			fmt.Fprintln(out)

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Session", "Status", "Active", "Started", "Completed", "DNF"})
			for _, s := range detail.Sessions {
				active := ""
				if s.IsActive {
					active = "yes"
				}
				t.AppendRow(table.Row{
					s.SessionNumber,
					string(s.Status),
					active,
					formatDate(s.StartedDate),
					formatDate(s.CompletedDate),
					formatDate(s.DNFDate),
				})
			}
			t.Render()

			fmt.Fprintf(out, "\n%d progress entries logged\n", len(detail.Entries))
			return nil
		},
	}

	return cmd
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
