package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
	"github.com/leaflog/leaflog/internal/services"
	"github.com/leaflog/leaflog/internal/usecase"
)

func newStatusCmd() *cobra.Command {
	var (
		rating int64
		review string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "status <book-id> <to-read|read-next|reading|read|dnf>",
		Short: "Change a book's reading status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id: %s", args[0])
			}

			status, err := reading.ParseStatus(args[1])
			if err != nil {
				return err
			}

			input := services.SetStatusInput{Status: status}
			if cmd.Flags().Changed("rating") {
				input.Rating = &rating
			}
			if review != "" {
				input.Review = &review
			}
			if date != "" {
				stamp, err := parseDateFlag(date)
				if err != nil {
					return err
				}
				switch status {
				case reading.StatusReading:
					input.StartedDate = &stamp
				case reading.StatusRead:
					input.CompletedDate = &stamp
				case reading.StatusDNF:
					input.DNFDate = &stamp
				}
			}

			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			tracker := usecase.NewTracker(dbCtx)
			result, err := tracker.SetStatus(context.Background(), bookID, input)
			if err != nil {
				return err
			}

			if result.Archived != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Archived session %d, started session %d as %s\n",
					result.Archived.FromSessionNumber, result.Session.SessionNumber, result.Session.Status)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Status set to %s (session %d)\n",
				result.Session.Status, result.Session.SessionNumber)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&rating, "rating", "r", 0, "Rating 1-5 (stored on the book)")
	cmd.Flags().StringVar(&review, "review", "", "Review text (stored on the session)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date for the started/completed/dnf stamp (YYYY-MM-DD)")

	return cmd
}
