package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
	"github.com/leaflog/leaflog/internal/services"
	"github.com/leaflog/leaflog/internal/usecase"
)

// Server wraps the MCP server with tracker-specific functionality
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
}

// NewServer creates a new MCP server instance
func NewServer() (*Server, error) {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "leaflog",
		Version: "0.1.0",
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	defer database.CloseDatabase(s.dbCtx)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "leaflog_add_book",
		Description: "Add a book to the tracker",
	}, s.handleAddBook)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "leaflog_log_progress",
		Description: "Log reading progress for a book (page or percentage)",
	}, s.handleLogProgress)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "leaflog_set_status",
		Description: "Change a book's reading status",
	}, s.handleSetStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "leaflog_set_page_count",
		Description: "Correct a book's total page count",
	}, s.handleSetPageCount)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "leaflog_list_books",
		Description: "List tracked books with their current status",
	}, s.handleListBooks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "leaflog_book_info",
		Description: "Get a book's sessions and progress history",
	}, s.handleBookInfo)
}

// Input/Output types for each tool

type AddBookInput struct {
	Title      string  `json:"title" jsonschema:"required,description=Book title"`
	Author     *string `json:"author,omitempty" jsonschema:"description=Book author"`
	TotalPages *int64  `json:"totalPages,omitempty" jsonschema:"description=Total page count if known"`
}

type AddBookOutput struct {
	BookID  int64  `json:"bookId"`
	Message string `json:"message"`
}

type LogProgressInput struct {
	BookID            int64   `json:"bookId" jsonschema:"required,description=Book id"`
	CurrentPage       *int64  `json:"currentPage,omitempty" jsonschema:"description=Page reached (mutually exclusive with currentPercentage)"`
	CurrentPercentage *int64  `json:"currentPercentage,omitempty" jsonschema:"description=Percentage reached (mutually exclusive with currentPage)"`
	Date              *string `json:"date,omitempty" jsonschema:"description=Progress date (YYYY-MM-DD; today if not specified)"`
	Notes             *string `json:"notes,omitempty" jsonschema:"description=Optional note for the entry"`
}

type LogProgressOutput struct {
	EntryID           int64  `json:"entryId"`
	CurrentPage       int64  `json:"currentPage"`
	CurrentPercentage int64  `json:"currentPercentage"`
	PagesRead         int64  `json:"pagesRead"`
	CompletionReached bool   `json:"completionReached"`
	SessionCompleted  bool   `json:"sessionCompleted"`
	Message           string `json:"message"`
}

type SetStatusInput struct {
	BookID int64   `json:"bookId" jsonschema:"required,description=Book id"`
	Status string  `json:"status" jsonschema:"required,enum=to-read;read-next;reading;read;dnf,description=New status"`
	Rating *int64  `json:"rating,omitempty" jsonschema:"description=Rating 1-5 (stored on the book)"`
	Review *string `json:"review,omitempty" jsonschema:"description=Review text (stored on the session)"`
	Date   *string `json:"date,omitempty" jsonschema:"description=Date for started/completed/dnf stamps (YYYY-MM-DD)"`
}

type SetStatusOutput struct {
	SessionNumber   int64  `json:"sessionNumber"`
	Status          string `json:"status"`
	ArchivedSession *int64 `json:"archivedSession,omitempty"`
	Message         string `json:"message"`
}

type SetPageCountInput struct {
	BookID     int64 `json:"bookId" jsonschema:"required,description=Book id"`
	TotalPages int64 `json:"totalPages" jsonschema:"required,description=Corrected total page count"`
}

type SetPageCountOutput struct {
	TotalPages int64  `json:"totalPages"`
	Message    string `json:"message"`
}

type ListBooksInput struct {
	Status *string `json:"status,omitempty" jsonschema:"enum=to-read;read-next;reading;read;dnf,description=Only books whose active session has this status"`
}

type ListBooksOutput struct {
	Books []BookSummary `json:"books"`
}

type BookSummary struct {
	BookID     int64  `json:"bookId"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Status     string `json:"status,omitempty"`
	Percent    int64  `json:"percent"`
	TotalPages *int64 `json:"totalPages,omitempty"`
	Rating     *int64 `json:"rating,omitempty"`
}

type BookInfoInput struct {
	BookID int64 `json:"bookId" jsonschema:"required,description=Book id"`
}

type BookInfoOutput struct {
	Book     BookSummary       `json:"book"`
	Sessions []SessionSummary  `json:"sessions"`
	Entries  []ProgressSummary `json:"entries"`
}

type SessionSummary struct {
	SessionNumber int64   `json:"sessionNumber"`
	Status        string  `json:"status"`
	IsActive      bool    `json:"isActive"`
	StartedDate   *string `json:"startedDate,omitempty"`
	CompletedDate *string `json:"completedDate,omitempty"`
	DNFDate       *string `json:"dnfDate,omitempty"`
	Review        *string `json:"review,omitempty"`
}

type ProgressSummary struct {
	SessionNumber     int64   `json:"sessionNumber"`
	Date              string  `json:"date"`
	CurrentPage       int64   `json:"currentPage"`
	CurrentPercentage int64   `json:"currentPercentage"`
	PagesRead         int64   `json:"pagesRead"`
	Notes             *string `json:"notes,omitempty"`
}

// Tool handlers

func (s *Server) handleAddBook(ctx context.Context, req *mcp.CallToolRequest, input AddBookInput) (*mcp.CallToolResult, AddBookOutput, error) {
	tracker := usecase.NewTracker(s.dbCtx)

	author := ""
	if input.Author != nil {
		author = *input.Author
	}
	book, err := tracker.AddBook(ctx, input.Title, author, input.TotalPages)
	if err != nil {
		return nil, AddBookOutput{}, fmt.Errorf("failed to add book: %w", err)
	}

	return nil, AddBookOutput{
		BookID:  book.ID,
		Message: fmt.Sprintf("Added %q", book.Title),
	}, nil
}

func (s *Server) handleLogProgress(ctx context.Context, req *mcp.CallToolRequest, input LogProgressInput) (*mcp.CallToolResult, LogProgressOutput, error) {
	date, err := parseDateOrToday(input.Date)
	if err != nil {
		return nil, LogProgressOutput{}, err
	}

	tracker := usecase.NewTracker(s.dbCtx)
	result, err := tracker.LogProgress(ctx, input.BookID, services.LogProgressInput{
		CurrentPage:       input.CurrentPage,
		CurrentPercentage: input.CurrentPercentage,
		Notes:             input.Notes,
		ProgressDate:      date,
	})
	if err != nil {
		return nil, LogProgressOutput{}, fmt.Errorf("failed to log progress: %w", err)
	}

	message := fmt.Sprintf("Logged page %d (%d%%)", result.Entry.CurrentPage, result.Entry.CurrentPercentage)
	if result.SessionCompleted {
		message = "Book finished!"
	}
	return nil, LogProgressOutput{
		EntryID:           result.Entry.ID,
		CurrentPage:       result.Entry.CurrentPage,
		CurrentPercentage: result.Entry.CurrentPercentage,
		PagesRead:         result.Entry.PagesRead,
		CompletionReached: result.CompletionReached,
		SessionCompleted:  result.SessionCompleted,
		Message:           message,
	}, nil
}

func (s *Server) handleSetStatus(ctx context.Context, req *mcp.CallToolRequest, input SetStatusInput) (*mcp.CallToolResult, SetStatusOutput, error) {
	status, err := reading.ParseStatus(input.Status)
	if err != nil {
		return nil, SetStatusOutput{}, err
	}

	svcInput := services.SetStatusInput{
		Status: status,
		Rating: input.Rating,
		Review: input.Review,
	}
	if input.Date != nil {
		date, err := time.Parse("2006-01-02", *input.Date)
		if err != nil {
			return nil, SetStatusOutput{}, fmt.Errorf("invalid date %q: %w", *input.Date, err)
		}
		switch status {
		case reading.StatusReading:
			svcInput.StartedDate = &date
		case reading.StatusRead:
			svcInput.CompletedDate = &date
		case reading.StatusDNF:
			svcInput.DNFDate = &date
		}
	}

	tracker := usecase.NewTracker(s.dbCtx)
	result, err := tracker.SetStatus(ctx, input.BookID, svcInput)
	if err != nil {
		return nil, SetStatusOutput{}, fmt.Errorf("failed to set status: %w", err)
	}

	output := SetStatusOutput{
		SessionNumber: result.Session.SessionNumber,
		Status:        string(result.Session.Status),
		Message:       fmt.Sprintf("Status set to %s", result.Session.Status),
	}
	if result.Archived != nil {
		output.ArchivedSession = &result.Archived.FromSessionNumber
		output.Message = fmt.Sprintf("Archived session %d, started session %d as %s",
			result.Archived.FromSessionNumber, result.Session.SessionNumber, result.Session.Status)
	}
	return nil, output, nil
}

func (s *Server) handleSetPageCount(ctx context.Context, req *mcp.CallToolRequest, input SetPageCountInput) (*mcp.CallToolResult, SetPageCountOutput, error) {
	tracker := usecase.NewTracker(s.dbCtx)
	book, err := tracker.UpdateTotalPages(ctx, input.BookID, input.TotalPages)
	if err != nil {
		return nil, SetPageCountOutput{}, fmt.Errorf("failed to update page count: %w", err)
	}

	return nil, SetPageCountOutput{
		TotalPages: *book.TotalPages,
		Message:    fmt.Sprintf("Page count set to %d; progress percentages recomputed", *book.TotalPages),
	}, nil
}

func (s *Server) handleListBooks(ctx context.Context, req *mcp.CallToolRequest, input ListBooksInput) (*mcp.CallToolResult, ListBooksOutput, error) {
	var statusFilter *reading.Status
	if input.Status != nil && *input.Status != "" {
		status, err := reading.ParseStatus(*input.Status)
		if err != nil {
			return nil, ListBooksOutput{}, err
		}
		statusFilter = &status
	}

	tracker := usecase.NewTracker(s.dbCtx)
	overviews, err := tracker.ListBooks(ctx, statusFilter)
	if err != nil {
		return nil, ListBooksOutput{}, fmt.Errorf("failed to list books: %w", err)
	}

	output := ListBooksOutput{Books: make([]BookSummary, 0, len(overviews))}
	for _, o := range overviews {
		summary := BookSummary{
			BookID:     o.Book.ID,
			Title:      o.Book.Title,
			Author:     o.Book.Author,
			Percent:    o.Percent,
			TotalPages: o.Book.TotalPages,
			Rating:     o.Book.Rating,
		}
		if o.Session != nil {
			summary.Status = string(o.Session.Status)
		}
		output.Books = append(output.Books, summary)
	}
	return nil, output, nil
}

func (s *Server) handleBookInfo(ctx context.Context, req *mcp.CallToolRequest, input BookInfoInput) (*mcp.CallToolResult, BookInfoOutput, error) {
	tracker := usecase.NewTracker(s.dbCtx)
	detail, err := tracker.BookInfo(ctx, input.BookID)
	if err != nil {
		return nil, BookInfoOutput{}, fmt.Errorf("failed to get book info: %w", err)
	}

	numbers := make(map[int64]int64, len(detail.Sessions))
	output := BookInfoOutput{
		Book: BookSummary{
			BookID:     detail.Book.ID,
			Title:      detail.Book.Title,
			Author:     detail.Book.Author,
			TotalPages: detail.Book.TotalPages,
			Rating:     detail.Book.Rating,
		},
	}
	for _, session := range detail.Sessions {
		numbers[session.ID] = session.SessionNumber
		output.Sessions = append(output.Sessions, SessionSummary{
			SessionNumber: session.SessionNumber,
			Status:        string(session.Status),
			IsActive:      session.IsActive,
			StartedDate:   formatDatePtr(session.StartedDate),
			CompletedDate: formatDatePtr(session.CompletedDate),
			DNFDate:       formatDatePtr(session.DNFDate),
			Review:        session.Review,
		})
	}
	for _, entry := range detail.Entries {
		output.Entries = append(output.Entries, ProgressSummary{
			SessionNumber:     numbers[entry.SessionID],
			Date:              entry.ProgressDate.Format("2006-01-02"),
			CurrentPage:       entry.CurrentPage,
			CurrentPercentage: entry.CurrentPercentage,
			PagesRead:         entry.PagesRead,
			Notes:             entry.Notes,
		})
	}
	return nil, output, nil
}

func parseDateOrToday(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return reading.DateOnly(time.Now().UTC()), nil
	}
	date, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", *raw, err)
	}
	return date, nil
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
