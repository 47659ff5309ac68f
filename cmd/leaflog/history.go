package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/usecase"
)

func newHistoryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history <book-id>",
		Short: "Show a book's progress history",
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
			entries, err := tracker.History(context.Background(), bookID)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputHistoryJSON(cmd, entries)
			case "table":
				outputHistoryTable(cmd, entries)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type historyOutputEntry struct {
	Session           int64   `json:"session"`
	Date              string  `json:"date"`
	CurrentPage       int64   `json:"currentPage"`
	CurrentPercentage int64   `json:"currentPercentage"`
	PagesRead         int64   `json:"pagesRead"`
	Notes             *string `json:"notes,omitempty"`
}

func outputHistoryJSON(cmd *cobra.Command, entries []usecase.HistoryEntry) error {
	var output []historyOutputEntry

	for _, e := range entries {
		output = append(output, historyOutputEntry{
			Session:           e.SessionNumber,
			Date:              e.Entry.ProgressDate.Format("2006-01-02"),
			CurrentPage:       e.Entry.CurrentPage,
			CurrentPercentage: e.Entry.CurrentPercentage,
			PagesRead:         e.Entry.PagesRead,
			Notes:             e.Entry.Notes,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputHistoryTable(cmd *cobra.Command, entries []usecase.HistoryEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Session", "Date", "Page", "Percent", "Pages Read", "Notes"})

	for _, e := range entries {
		notes := ""
		if e.Entry.Notes != nil {
			notes = *e.Entry.Notes
		}
		t.AppendRow(table.Row{
			e.SessionNumber,
			e.Entry.ProgressDate.Format("2006-01-02"),
			e.Entry.CurrentPage,
			fmt.Sprintf("%d%%", e.Entry.CurrentPercentage),
			e.Entry.PagesRead,
			notes,
		})
	}

	t.Render()
}
