package services

import (
	"context"
	"errors"
	"testing"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
)

func TestSetStatusCreatesFirstSession(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewSessionService(dbCtx)

	result, err := svc.SetStatus(context.Background(), bookID, SetStatusInput{Status: reading.StatusToRead})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	session := result.Session
	if session.SessionNumber != 1 || !session.IsActive || session.Status != reading.StatusToRead {
		t.Fatalf("unexpected session: %+v", session)
	}
	if result.Archived != nil {
		t.Fatal("first session cannot archive a predecessor")
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewSessionService(dbCtx)

	_, err := svc.SetStatus(context.Background(), bookID, SetStatusInput{Status: reading.Status("finished")})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	sessions, err := svc.ListSessions(context.Background(), bookID)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatal("rejected status must not create a session")
	}
}

func TestSetStatusUnknownBook(t *testing.T) {
	dbCtx := setupServiceDB(t)
	svc := NewSessionService(dbCtx)

	_, err := svc.SetStatus(context.Background(), 42, SetStatusInput{Status: reading.StatusToRead})
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBackwardMovementArchivesSessionWithProgress(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	sessionSvc := NewSessionService(dbCtx)
	progressSvc := NewProgressService(dbCtx)
	ctx := context.Background()

	logPage(t, progressSvc, bookID, 100, onDay(1))

	result, err := sessionSvc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusToRead})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	if result.Archived == nil || result.Archived.FromSessionNumber != 1 {
		t.Fatalf("expected archival of session 1, got %+v", result.Archived)
	}
	if result.Session.SessionNumber != 2 || result.Session.Status != reading.StatusToRead || !result.Session.IsActive {
		t.Fatalf("unexpected successor: %+v", result.Session)
	}

	sessions, err := sessionSvc.ListSessions(ctx, bookID)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	old := sessions[0]
	if old.IsActive {
		t.Fatal("archived session must not stay active")
	}
	if old.Status != reading.StatusReading {
		t.Fatalf("archived session keeps its status as history, got %s", old.Status)
	}
}

func TestBackwardMovementWithoutProgressUpdatesInPlace(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewSessionService(dbCtx)
	ctx := context.Background()

	if _, err := svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusReading}); err != nil {
		t.Fatalf("SetStatus reading failed: %v", err)
	}

	result, err := svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusReadNext})
	if err != nil {
		t.Fatalf("SetStatus read-next failed: %v", err)
	}
	if result.Archived != nil {
		t.Fatal("no progress, nothing to archive")
	}
	if result.Session.SessionNumber != 1 || result.Session.Status != reading.StatusReadNext {
		t.Fatalf("expected in-place update, got %+v", result.Session)
	}
}

func TestSetStatusReadWithoutPages(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, nil)
	svc := NewSessionService(dbCtx)

	result, err := svc.SetStatus(context.Background(), bookID, SetStatusInput{Status: reading.StatusRead})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	session := result.Session
	if session.Status != reading.StatusRead {
		t.Fatalf("expected read, got %s", session.Status)
	}
	if session.CompletedDate == nil || session.StartedDate == nil {
		t.Fatalf("read must stamp both dates, got %+v", session)
	}
	if session.IsActive {
		t.Fatal("read archives the session")
	}

	history, err := NewProgressService(dbCtx).History(context.Background(), bookID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatal("marking read creates no progress entries")
	}
}

func TestSetStatusDNFStampsDate(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewSessionService(dbCtx)
	ctx := context.Background()

	if _, err := svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusReading}); err != nil {
		t.Fatalf("SetStatus reading failed: %v", err)
	}

	dnfDate := onDay(9)
	result, err := svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusDNF, DNFDate: &dnfDate})
	if err != nil {
		t.Fatalf("SetStatus dnf failed: %v", err)
	}
	if result.Session.DNFDate == nil || !result.Session.DNFDate.Equal(dnfDate) {
		t.Fatalf("expected dnfDate %v, got %v", dnfDate, result.Session.DNFDate)
	}
	if result.Session.IsActive {
		t.Fatal("dnf archives the session")
	}
}

func TestSetStatusStampsStartedDateOnce(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewSessionService(dbCtx)
	ctx := context.Background()

	started := onDay(3)
	first, err := svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusReading, StartedDate: &started})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if first.Session.StartedDate == nil || !first.Session.StartedDate.Equal(started) {
		t.Fatalf("expected explicit startedDate, got %v", first.Session.StartedDate)
	}

	later := onDay(20)
	second, err := svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusReading, StartedDate: &later})
	if err != nil {
		t.Fatalf("second SetStatus failed: %v", err)
	}
	if !second.Session.StartedDate.Equal(started) {
		t.Fatalf("startedDate must not be overwritten, got %v", second.Session.StartedDate)
	}
}

func TestSetStatusAppliesRatingAndReview(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewSessionService(dbCtx)
	ctx := context.Background()

	rating := int64(4)
	review := "quietly devastating"
	result, err := svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusRead, Rating: &rating, Review: &review})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if result.Session.Review == nil || *result.Session.Review != review {
		t.Fatalf("expected review on session, got %v", result.Session.Review)
	}

	book, err := NewBookService(dbCtx).GetBook(ctx, bookID)
	if err != nil {
		t.Fatalf("GetBook failed: %v", err)
	}
	if book.Rating == nil || *book.Rating != rating {
		t.Fatalf("expected rating on book, got %v", book.Rating)
	}

	badRating := int64(6)
	_, err = svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusRead, Rating: &badRating})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for rating 6, got %v", err)
	}
}

func TestRereadAfterCompletion(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(100))
	sessionSvc := NewSessionService(dbCtx)
	progressSvc := NewProgressService(dbCtx)
	ctx := context.Background()

	result := logPage(t, progressSvc, bookID, 100, onDay(1))
	if !result.SessionCompleted {
		t.Fatal("expected auto-completion")
	}

	// The finished session is archived; picking the book up again starts
	// attempt number 2.
	second, err := sessionSvc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusReading})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if second.Session.SessionNumber != 2 || !second.Session.IsActive {
		t.Fatalf("expected fresh session 2, got %+v", second.Session)
	}
}

func TestCompleteSessionDirect(t *testing.T) {
	dbCtx := setupServiceDB(t)
	bookID := addTestBook(t, dbCtx, i64(300))
	svc := NewSessionService(dbCtx)
	ctx := context.Background()

	created, err := svc.SetStatus(ctx, bookID, SetStatusInput{Status: reading.StatusReading})
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	session, err := svc.CompleteSession(ctx, created.Session.ID, onDay(14))
	if err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	if session.Status != reading.StatusRead || session.IsActive {
		t.Fatalf("expected archived read session, got %+v", session)
	}
	if session.CompletedDate == nil || !session.CompletedDate.Equal(onDay(14)) {
		t.Fatalf("expected completedDate %v, got %v", onDay(14), session.CompletedDate)
	}

	if _, err := svc.CompleteSession(ctx, 999, onDay(1)); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
