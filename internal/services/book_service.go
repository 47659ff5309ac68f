package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leaflog/leaflog/internal/database"
)

// BookService owns the book catalogue and guards page-count edits against
// the progress already logged.
type BookService struct {
	ctx *database.Context
}

func NewBookService(dbCtx *database.Context) *BookService {
	return &BookService{ctx: dbCtx}
}

func (s *BookService) AddBook(ctx context.Context, title, author string, totalPages *int64) (*database.BookRecord, error) {
	if strings.TrimSpace(title) == "" {
		return nil, validationf("title is required")
	}
	if totalPages != nil && *totalPages < 1 {
		return nil, validationf("total pages must be at least 1, got %d", *totalPages)
	}

	books := database.NewBookRepository(s.ctx.DB)
	id, err := books.Create(ctx, strings.TrimSpace(title), strings.TrimSpace(author), totalPages)
	if err != nil {
		return nil, err
	}
	return books.FindByID(ctx, id)
}

func (s *BookService) GetBook(ctx context.Context, bookID int64) (*database.BookRecord, error) {
	books := database.NewBookRepository(s.ctx.DB)
	book, err := books.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("book %d: %w", bookID, err)
	}
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context) ([]database.BookRecord, error) {
	books := database.NewBookRepository(s.ctx.DB)
	return books.List(ctx)
}

// UpdateTotalPages changes a book's page count. A reduction below the
// highest page ever logged (any session) is rejected outright; an accepted
// change rewrites the derived fields of every session with progress, all in
// one transaction, so a reader never sees the new count next to stale
// percentages.
func (s *BookService) UpdateTotalPages(ctx context.Context, bookID, newTotal int64) (*database.BookRecord, error) {
	if newTotal < 1 {
		return nil, validationf("total pages must be at least 1, got %d", newTotal)
	}

	var result *database.BookRecord
	err := withTx(ctx, s.ctx, func(txCtx context.Context, tx *sql.Tx) error {
		books := database.NewBookRepository(tx)
		sessions := database.NewSessionRepository(tx)
		entries := database.NewProgressRepository(tx)

		if _, err := books.FindByID(txCtx, bookID); err != nil {
			return fmt.Errorf("book %d: %w", bookID, err)
		}

		maxLogged, err := entries.MaxPageByBook(txCtx, bookID)
		if err != nil {
			return err
		}
		if newTotal < maxLogged {
			return &PageCountError{Requested: newTotal, MaxLogged: maxLogged}
		}

		if err := books.UpdateTotalPages(txCtx, bookID, newTotal); err != nil {
			return err
		}

		// Fan out over every session with entries, archived and DNF ones
		// included: their historical percentages are still displayed and
		// must agree with the new count.
		ids, err := sessions.ListWithEntries(txCtx, bookID)
		if err != nil {
			return err
		}
		for _, sessionID := range ids {
			if _, err := recomputeSession(txCtx, tx, sessionID, newTotal); err != nil {
				return err
			}
		}

		result, err = books.FindByID(txCtx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
