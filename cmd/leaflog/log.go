package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
	"github.com/leaflog/leaflog/internal/services"
	"github.com/leaflog/leaflog/internal/usecase"
)

func newLogCmd() *cobra.Command {
	var (
		page    int64
		percent int64
		date    string
		notes   string
	)

	cmd := &cobra.Command{
		Use:   "log <book-id>",
		Short: "Log reading progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id: %s", args[0])
			}

			input := services.LogProgressInput{}
			if cmd.Flags().Changed("page") {
				input.CurrentPage = &page
			}
			if cmd.Flags().Changed("percent") {
				input.CurrentPercentage = &percent
			}
			if notes != "" {
				input.Notes = &notes
			}

			input.ProgressDate, err = parseDateFlag(date)
			if err != nil {
				return err
			}

			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			tracker := usecase.NewTracker(dbCtx)
			result, err := tracker.LogProgress(context.Background(), bookID, input)
			if err != nil {
				return err
			}

			entry := result.Entry
			fmt.Fprintf(cmd.OutOrStdout(), "Logged page %d (%d%%), %d pages read\n",
				entry.CurrentPage, entry.CurrentPercentage, entry.PagesRead)
			if result.SessionCompleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Book finished!")
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&page, "page", "p", 0, "Page reached")
	cmd.Flags().Int64Var(&percent, "percent", 0, "Percentage reached")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Progress date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Note for this entry")

	return cmd
}

func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return reading.DateOnly(time.Now().UTC()), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", raw)
	}
	return date, nil
}
