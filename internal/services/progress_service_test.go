package services

import (
	"context"
	"errors"
	"testing"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
)

func TestLogProgressFirstEntryStartsSession(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewProgressService(dbCtx)

	result := logPage(t, svc, bookID, 100, onDay(1))

	if result.Entry.CurrentPercentage != 33 {
		t.Fatalf("expected 33%%, got %d", result.Entry.CurrentPercentage)
	}
	if result.Entry.PagesRead != 100 {
		t.Fatalf("expected pagesRead 100, got %d", result.Entry.PagesRead)
	}
	if result.CompletionReached {
		t.Fatal("33% should not reach completion")
	}

	session := result.Session
	if session.Status != reading.StatusReading || !session.IsActive {
		t.Fatalf("expected active reading session, got %+v", session)
	}
	if session.SessionNumber != 1 {
		t.Fatalf("expected session number 1, got %d", session.SessionNumber)
	}
	if session.StartedDate == nil || !session.StartedDate.Equal(onDay(1)) {
		t.Fatalf("expected startedDate %v, got %v", onDay(1), session.StartedDate)
	}
}

func TestLogProgressDeltaLaw(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(500))
	svc := NewProgressService(dbCtx)

	pages := []int64{40, 40, 90, 250}
	wantDeltas := []int64{40, 0, 50, 160}

	for i, page := range pages {
		result := logPage(t, svc, bookID, page, onDay(i+1))
		if result.Entry.PagesRead != wantDeltas[i] {
			t.Fatalf("entry %d: expected pagesRead %d, got %d", i, wantDeltas[i], result.Entry.PagesRead)
		}
	}
}

func TestLogProgressPercentageInput(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(350))
	svc := NewProgressService(dbCtx)

	pct := int64(42)
	result, err := svc.LogProgress(context.Background(), bookID, LogProgressInput{
		CurrentPercentage: &pct,
		ProgressDate:      onDay(1),
	})
	if err != nil {
		t.Fatalf("LogProgress failed: %v", err)
	}
	if result.Entry.CurrentPage != 147 {
		t.Fatalf("expected derived page 147, got %d", result.Entry.CurrentPage)
	}
	if result.Entry.CurrentPercentage != 42 {
		t.Fatalf("expected 42%%, got %d", result.Entry.CurrentPercentage)
	}
}

func TestLogProgressUnknownTotalPages(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, nil)
	svc := NewProgressService(dbCtx)

	// Page-only input without a known total records 0%.
	result := logPage(t, svc, bookID, 80, onDay(1))
	if result.Entry.CurrentPercentage != 0 {
		t.Fatalf("expected 0%% without a page count, got %d", result.Entry.CurrentPercentage)
	}

	// Percentage input keeps the given percentage; 100 still completes.
	pct := int64(100)
	res, err := svc.LogProgress(context.Background(), bookID, LogProgressInput{
		CurrentPercentage: &pct,
		ProgressDate:      onDay(2),
	})
	if err != nil {
		t.Fatalf("LogProgress failed: %v", err)
	}
	if !res.CompletionReached || !res.SessionCompleted {
		t.Fatalf("expected completion at 100%%, got %+v", res)
	}
}

func TestLogProgressTimelineConflictWritesNothing(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewProgressService(dbCtx)

	logPage(t, svc, bookID, 50, onDay(1))
	logPage(t, svc, bookID, 200, onDay(10))

	// A retroactive entry between the two must fit between their pages.
	page := int64(30)
	_, err := svc.LogProgress(context.Background(), bookID, LogProgressInput{
		CurrentPage:  &page,
		ProgressDate: onDay(5),
	})
	var conflict *reading.TimelineConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected TimelineConflict, got %v", err)
	}
	if conflict.Direction != "before" || conflict.Value != 50 {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}

	history, err := svc.History(context.Background(), bookID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("rejected entry must not be persisted, have %d entries", len(history))
	}

	// A fitting retroactive value is accepted.
	logPage(t, svc, bookID, 120, onDay(5))
}

func TestLogProgressValidation(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewProgressService(dbCtx)
	ctx := context.Background()

	cases := []struct {
		name  string
		input LogProgressInput
	}{
		{"neither page nor percentage", LogProgressInput{ProgressDate: onDay(1)}},
		{"both page and percentage", LogProgressInput{CurrentPage: i64(10), CurrentPercentage: i64(5), ProgressDate: onDay(1)}},
		{"negative page", LogProgressInput{CurrentPage: i64(-1), ProgressDate: onDay(1)}},
		{"percentage above 100", LogProgressInput{CurrentPercentage: i64(101), ProgressDate: onDay(1)}},
		{"missing date", LogProgressInput{CurrentPage: i64(10)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.LogProgress(ctx, bookID, tc.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestLogProgressUnknownBook(t *testing.T) {
	dbCtx := setupServiceDB(t)
	svc := NewProgressService(dbCtx)

	page := int64(10)
	_, err := svc.LogProgress(context.Background(), 999, LogProgressInput{CurrentPage: &page, ProgressDate: onDay(1)})
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompletionThreshold(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(100))
	svc := NewProgressService(dbCtx)

	result := logPage(t, svc, bookID, 99, onDay(1))
	if result.CompletionReached || result.SessionCompleted {
		t.Fatal("99% must not complete the session")
	}

	result = logPage(t, svc, bookID, 100, onDay(2))
	if !result.CompletionReached || !result.SessionCompleted {
		t.Fatal("100% must complete a reading session")
	}
	if result.Session.Status != reading.StatusRead {
		t.Fatalf("expected status read, got %s", result.Session.Status)
	}
	if result.Session.CompletedDate == nil || !result.Session.CompletedDate.Equal(onDay(2)) {
		t.Fatalf("expected completedDate from the entry, got %v", result.Session.CompletedDate)
	}
	if result.Session.IsActive {
		t.Fatal("completed session must be archived")
	}
}

func TestCompletionIgnoresNonReadingSessions(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(100))
	sessionSvc := NewSessionService(dbCtx)
	svc := NewProgressService(dbCtx)

	if _, err := sessionSvc.SetStatus(context.Background(), bookID, SetStatusInput{Status: reading.StatusToRead}); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	result := logPage(t, svc, bookID, 100, onDay(1))
	if !result.CompletionReached {
		t.Fatal("completion flag still reports 100%")
	}
	if result.SessionCompleted {
		t.Fatal("only reading sessions auto-complete")
	}
	if result.Session.Status != reading.StatusToRead {
		t.Fatalf("expected status untouched, got %s", result.Session.Status)
	}
}

func TestRecomputeSessionIdempotent(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewProgressService(dbCtx)
	ctx := context.Background()

	logPage(t, svc, bookID, 75, onDay(1))
	result := logPage(t, svc, bookID, 150, onDay(2))

	first, err := svc.RecomputeSession(ctx, result.Session.ID, 600)
	if err != nil {
		t.Fatalf("RecomputeSession failed: %v", err)
	}
	second, err := svc.RecomputeSession(ctx, result.Session.ID, 600)
	if err != nil {
		t.Fatalf("second RecomputeSession failed: %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 entries, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].CurrentPercentage != second[i].CurrentPercentage || first[i].PagesRead != second[i].PagesRead {
			t.Fatalf("recompute not idempotent at entry %d: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].CurrentPage != second[i].CurrentPage || !first[i].ProgressDate.Equal(second[i].ProgressDate) {
			t.Fatalf("recompute must not touch page or date: %+v vs %+v", first[i], second[i])
		}
	}
	if first[0].CurrentPercentage != 12 || first[1].CurrentPercentage != 25 {
		t.Fatalf("expected 12%% and 25%% against 600 pages, got %d and %d", first[0].CurrentPercentage, first[1].CurrentPercentage)
	}
}
