package services

import (
	"context"
	"testing"
	"time"

	"github.com/leaflog/leaflog/internal/database"
)

func setupServiceDB(t *testing.T) *database.Context {
	t.Helper()
	ctx, err := database.CreateDatabase(":memory:")
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}

	t.Cleanup(func() {
		if err := database.CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func addTestBook(t *testing.T, dbCtx *database.Context, totalPages *int64) int64 {
	t.Helper()
	book, err := NewBookService(dbCtx).AddBook(context.Background(), "The Left Hand of Darkness", "Ursula K. Le Guin", totalPages)
	if err != nil {
		t.Fatalf("AddBook failed: %v", err)
	}
	return book.ID
}

func i64(v int64) *int64 {
	return &v
}

func onDay(d int) time.Time {
	return time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC)
}

func logPage(t *testing.T, svc *ProgressService, bookID, page int64, date time.Time) *LogProgressResult {
	t.Helper()
	result, err := svc.LogProgress(context.Background(), bookID, LogProgressInput{
		CurrentPage:  &page,
		ProgressDate: date,
	})
	if err != nil {
		t.Fatalf("LogProgress(page=%d) failed: %v", page, err)
	}
	return result
}
