// Package usecase wires the tracker services into the operations the CLI,
// MCP, and HTTP surfaces expose.
package usecase

import (
	"context"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
	"github.com/leaflog/leaflog/internal/services"
)

type Tracker struct {
	books    *services.BookService
	sessions *services.SessionService
	progress *services.ProgressService
}

func NewTracker(dbCtx *database.Context) *Tracker {
	return &Tracker{
		books:    services.NewBookService(dbCtx),
		sessions: services.NewSessionService(dbCtx),
		progress: services.NewProgressService(dbCtx),
	}
}

func (t *Tracker) AddBook(ctx context.Context, title, author string, totalPages *int64) (*database.BookRecord, error) {
	return t.books.AddBook(ctx, title, author, totalPages)
}

func (t *Tracker) GetBook(ctx context.Context, bookID int64) (*database.BookRecord, error) {
	return t.books.GetBook(ctx, bookID)
}

func (t *Tracker) UpdateTotalPages(ctx context.Context, bookID, newTotal int64) (*database.BookRecord, error) {
	return t.books.UpdateTotalPages(ctx, bookID, newTotal)
}

func (t *Tracker) SetStatus(ctx context.Context, bookID int64, input services.SetStatusInput) (*services.SetStatusResult, error) {
	return t.sessions.SetStatus(ctx, bookID, input)
}

func (t *Tracker) LogProgress(ctx context.Context, bookID int64, input services.LogProgressInput) (*services.LogProgressResult, error) {
	return t.progress.LogProgress(ctx, bookID, input)
}

// BookOverview pairs a book with the state of its active session for list
// views.
type BookOverview struct {
	Book    database.BookRecord
	Session *database.SessionRecord
	Percent int64
}

// ListBooks joins each book with its active session. A non-nil statusFilter
// narrows the result to books whose active session has that status.
func (t *Tracker) ListBooks(ctx context.Context, statusFilter *reading.Status) ([]BookOverview, error) {
	books, err := t.books.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]BookOverview, 0, len(books))
	for _, book := range books {
		overview := BookOverview{Book: book}

		session, err := t.sessions.ActiveSession(ctx, book.ID)
		if err != nil {
			return nil, err
		}
		if statusFilter != nil && (session == nil || session.Status != *statusFilter) {
			continue
		}
		if session != nil {
			overview.Session = session
			entries, err := t.progress.SessionEntries(ctx, session.ID)
			if err != nil {
				return nil, err
			}
			if len(entries) > 0 {
				overview.Percent = entries[len(entries)-1].CurrentPercentage
			}
		}
		result = append(result, overview)
	}
	return result, nil
}

// BookDetail is the full picture of one book: every attempt and every
// logged observation.
type BookDetail struct {
	Book     database.BookRecord
	Sessions []database.SessionRecord
	Entries  []database.ProgressRecord
}

func (t *Tracker) BookInfo(ctx context.Context, bookID int64) (*BookDetail, error) {
	book, err := t.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	sessions, err := t.sessions.ListSessions(ctx, bookID)
	if err != nil {
		return nil, err
	}
	entries, err := t.progress.History(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return &BookDetail{Book: *book, Sessions: sessions, Entries: entries}, nil
}

// HistoryEntry annotates a progress entry with the number of the session it
// belongs to.
type HistoryEntry struct {
	Entry         database.ProgressRecord
	SessionNumber int64
}

func (t *Tracker) History(ctx context.Context, bookID int64) ([]HistoryEntry, error) {
	detail, err := t.BookInfo(ctx, bookID)
	if err != nil {
		return nil, err
	}

	numbers := make(map[int64]int64, len(detail.Sessions))
	for _, s := range detail.Sessions {
		numbers[s.ID] = s.SessionNumber
	}

	result := make([]HistoryEntry, 0, len(detail.Entries))
	for _, entry := range detail.Entries {
		result = append(result, HistoryEntry{Entry: entry, SessionNumber: numbers[entry.SessionID]})
	}
	return result, nil
}
