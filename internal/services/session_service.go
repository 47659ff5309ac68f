package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
)

// SessionService owns the reading-session lifecycle: status changes,
// backward-movement archival, and completion.
type SessionService struct {
	ctx *database.Context
}

func NewSessionService(dbCtx *database.Context) *SessionService {
	return &SessionService{ctx: dbCtx}
}

// SetStatusInput carries a user-initiated status change. Rating lands on the
// book, review on the session; dates override the default "now" stamps.
type SetStatusInput struct {
	Status        reading.Status
	Rating        *int64
	Review        *string
	StartedDate   *time.Time
	CompletedDate *time.Time
	DNFDate       *time.Time
}

// ArchivedSession identifies the predecessor retired by a backward movement,
// so callers can trigger dependent recalculations.
type ArchivedSession struct {
	SessionID         int64
	FromSessionNumber int64
}

type SetStatusResult struct {
	Session  database.SessionRecord
	Archived *ArchivedSession
}

// SetStatus applies a status change to the book's active session, creating
// one when none exists. Moving a reading session backwards after progress
// has been logged archives it and starts a successor; the archived session
// keeps its history untouched.
func (s *SessionService) SetStatus(ctx context.Context, bookID int64, input SetStatusInput) (*SetStatusResult, error) {
	if _, err := reading.ParseStatus(string(input.Status)); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, validationf("rating must be between 1 and 5, got %d", *input.Rating)
	}

	var result SetStatusResult
	err := withTx(ctx, s.ctx, func(txCtx context.Context, tx *sql.Tx) error {
		books := database.NewBookRepository(tx)
		sessions := database.NewSessionRepository(tx)
		entries := database.NewProgressRepository(tx)

		if _, err := books.FindByID(txCtx, bookID); err != nil {
			return fmt.Errorf("book %d: %w", bookID, err)
		}

		active, err := sessions.FindActiveByBook(txCtx, bookID)
		if err != nil {
			return err
		}

		switch {
		case active != nil && reading.IsBackward(active.Status, input.Status):
			count, err := entries.CountBySession(txCtx, active.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				session, err := archiveAndRestart(txCtx, sessions, active, input)
				if err != nil {
					return err
				}
				result.Session = *session
				result.Archived = &ArchivedSession{
					SessionID:         active.ID,
					FromSessionNumber: active.SessionNumber,
				}
				break
			}
			// No progress yet, nothing worth preserving: plain update.
			fallthrough

		case active != nil:
			if err := applyStatus(active, input); err != nil {
				return err
			}
			if err := sessions.Update(txCtx, *active); err != nil {
				return err
			}
			result.Session = *active

		default:
			session, err := createWithStatus(txCtx, sessions, bookID, input)
			if err != nil {
				return err
			}
			result.Session = *session
		}

		if input.Rating != nil {
			if err := books.UpdateRating(txCtx, bookID, *input.Rating); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CompleteSession finishes a session as if the reader had marked it read,
// stamping the given completion date. The ledger calls the same logic when
// an entry reaches 100%.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID int64, completedDate time.Time) (*database.SessionRecord, error) {
	var result *database.SessionRecord
	err := withTx(ctx, s.ctx, func(txCtx context.Context, tx *sql.Tx) error {
		sessions := database.NewSessionRepository(tx)
		session, err := sessions.FindByID(txCtx, sessionID)
		if err != nil {
			return fmt.Errorf("session %d: %w", sessionID, err)
		}
		if err := finishSession(txCtx, sessions, session, reading.DateOnly(completedDate)); err != nil {
			return err
		}
		result = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ActiveSession returns the book's active session, nil when none exists.
func (s *SessionService) ActiveSession(ctx context.Context, bookID int64) (*database.SessionRecord, error) {
	sessions := database.NewSessionRepository(s.ctx.DB)
	return sessions.FindActiveByBook(ctx, bookID)
}

// ListSessions returns every session of a book, oldest attempt first.
func (s *SessionService) ListSessions(ctx context.Context, bookID int64) ([]database.SessionRecord, error) {
	sessions := database.NewSessionRepository(s.ctx.DB)
	return sessions.ListByBook(ctx, bookID)
}

// archiveAndRestart retires the active session in place (status untouched,
// history preserved) and creates the successor with the next session number.
// The active-flag flip and the insert share the caller's transaction so no
// reader can observe zero or two active sessions.
func archiveAndRestart(ctx context.Context, sessions *database.SessionRepository, active *database.SessionRecord, input SetStatusInput) (*database.SessionRecord, error) {
	active.IsActive = false
	if err := sessions.Update(ctx, *active); err != nil {
		return nil, err
	}

	successor := database.SessionRecord{
		BookID:        active.BookID,
		SessionNumber: active.SessionNumber + 1,
		Status:        input.Status,
		IsActive:      true,
		Review:        input.Review,
	}
	id, err := sessions.Create(ctx, successor)
	if err != nil {
		return nil, err
	}
	return sessions.FindByID(ctx, id)
}

func createWithStatus(ctx context.Context, sessions *database.SessionRepository, bookID int64, input SetStatusInput) (*database.SessionRecord, error) {
	number, err := sessions.MaxSessionNumber(ctx, bookID)
	if err != nil {
		return nil, err
	}

	session := database.SessionRecord{
		BookID:        bookID,
		SessionNumber: number + 1,
		Status:        input.Status,
		IsActive:      true,
	}
	if err := applyStatus(&session, input); err != nil {
		return nil, err
	}

	id, err := sessions.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	return sessions.FindByID(ctx, id)
}

// startSession creates a bare active session for implicit starts (first
// progress logged against a book with no session yet).
func startSession(ctx context.Context, sessions *database.SessionRepository, bookID int64, status reading.Status, startedDate time.Time) (*database.SessionRecord, error) {
	number, err := sessions.MaxSessionNumber(ctx, bookID)
	if err != nil {
		return nil, err
	}

	id, err := sessions.Create(ctx, database.SessionRecord{
		BookID:        bookID,
		SessionNumber: number + 1,
		Status:        status,
		IsActive:      true,
		StartedDate:   &startedDate,
	})
	if err != nil {
		return nil, err
	}
	return sessions.FindByID(ctx, id)
}

// applyStatus mutates a session for a normal (non-archival) status change,
// stamping lifecycle dates.
func applyStatus(session *database.SessionRecord, input SetStatusInput) error {
	session.Status = input.Status
	if input.Review != nil {
		session.Review = input.Review
	}

	switch input.Status {
	case reading.StatusReading:
		if session.StartedDate == nil {
			session.StartedDate = stampOrNow(input.StartedDate)
		}
	case reading.StatusRead:
		session.CompletedDate = stampOrNow(input.CompletedDate)
		if session.StartedDate == nil {
			session.StartedDate = stampOrNow(input.StartedDate)
		}
		session.IsActive = false
	case reading.StatusDNF:
		session.DNFDate = stampOrNow(input.DNFDate)
		session.IsActive = false
	case reading.StatusToRead, reading.StatusReadNext:
		// No date stamps; the session just waits in the queue.
	default:
		return validationf("invalid status: %q", input.Status)
	}
	return nil
}

// finishSession is the read branch driven by the ledger rather than the
// reader: completion date comes from the triggering entry.
func finishSession(ctx context.Context, sessions *database.SessionRepository, session *database.SessionRecord, completedDate time.Time) error {
	session.Status = reading.StatusRead
	session.CompletedDate = &completedDate
	if session.StartedDate == nil {
		session.StartedDate = &completedDate
	}
	session.IsActive = false
	return sessions.Update(ctx, *session)
}

func stampOrNow(explicit *time.Time) *time.Time {
	if explicit != nil {
		d := reading.DateOnly(*explicit)
		return &d
	}
	d := reading.DateOnly(time.Now().UTC())
	return &d
}
