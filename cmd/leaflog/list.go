package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
	"github.com/leaflog/leaflog/internal/usecase"
)

func newListCmd() *cobra.Command {
	var (
		format     string
		statusFlag string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var statusFilter *reading.Status
			if statusFlag != "" {
				status, err := reading.ParseStatus(statusFlag)
				if err != nil {
					return err
				}
				statusFilter = &status
			}

			dbCtx, err := database.CreateDatabase("")
			if err != nil {
				return err
			}
			defer func() {
				_ = database.CloseDatabase(dbCtx)
			}()

			tracker := usecase.NewTracker(dbCtx)
			overviews, err := tracker.ListBooks(context.Background(), statusFilter)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputBooksJSON(cmd, overviews)
			case "table":
				outputBooksTable(cmd, overviews)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Only books whose active session has this status")

	return cmd
}

type bookOutputEntry struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Status     string `json:"status,omitempty"`
	Percent    int64  `json:"percent"`
	TotalPages *int64 `json:"totalPages,omitempty"`
	Rating     *int64 `json:"rating,omitempty"`
}

func outputBooksJSON(cmd *cobra.Command, overviews []usecase.BookOverview) error {
	var output []bookOutputEntry

	for _, o := range overviews {
		item := bookOutputEntry{
			ID:         o.Book.ID,
			Title:      o.Book.Title,
			Author:     o.Book.Author,
			Percent:    o.Percent,
			TotalPages: o.Book.TotalPages,
			Rating:     o.Book.Rating,
		}
		if o.Session != nil {
			item.Status = string(o.Session.Status)
		}
		output = append(output, item)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputBooksTable(cmd *cobra.Command, overviews []usecase.BookOverview) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Author", "Status", "Progress", "Pages", "Rating"})

	for _, o := range overviews {
		status := "-"
		if o.Session != nil {
			status = string(o.Session.Status)
		}
		pages := "?"
		if o.Book.TotalPages != nil {
			pages = fmt.Sprintf("%d", *o.Book.TotalPages)
		}
		rating := ""
		if o.Book.Rating != nil {
			rating = fmt.Sprintf("%d/5", *o.Book.Rating)
		}
		t.AppendRow(table.Row{
			o.Book.ID,
			o.Book.Title,
			o.Book.Author,
			status,
			fmt.Sprintf("%d%%", o.Percent),
			pages,
			rating,
		})
	}

	t.Render()
}
