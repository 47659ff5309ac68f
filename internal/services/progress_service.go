package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leaflog/leaflog/internal/database"
	"github.com/leaflog/leaflog/internal/reading"
)

// ProgressService owns the progress ledger: appending entries, deriving
// pages-read deltas and percentages, and rewriting derived fields when a
// book's page count changes.
type ProgressService struct {
	ctx *database.Context
}

func NewProgressService(dbCtx *database.Context) *ProgressService {
	return &ProgressService{ctx: dbCtx}
}

// LogProgressInput carries one observation. Exactly one of CurrentPage or
// CurrentPercentage must be set.
type LogProgressInput struct {
	CurrentPage       *int64
	CurrentPercentage *int64
	Notes             *string
	ProgressDate      time.Time
}

// LogProgressResult reports the persisted entry plus the events the caller
// may need to act on (completion drives external stats rebuilds).
type LogProgressResult struct {
	Entry             database.ProgressRecord
	Session           database.SessionRecord
	CompletionReached bool
	SessionCompleted  bool
}

// LogProgress validates an observation against the session timeline and
// appends it. Validation, the append, and any completion transition commit
// as one transaction; re-reading the timeline inside that transaction is
// what keeps concurrent appends from breaking monotonicity.
func (s *ProgressService) LogProgress(ctx context.Context, bookID int64, input LogProgressInput) (*LogProgressResult, error) {
	if err := validateLogInput(input); err != nil {
		return nil, err
	}
	progressDate := reading.DateOnly(input.ProgressDate)

	var result LogProgressResult
	err := withTx(ctx, s.ctx, func(txCtx context.Context, tx *sql.Tx) error {
		books := database.NewBookRepository(tx)
		sessions := database.NewSessionRepository(tx)
		entries := database.NewProgressRepository(tx)

		book, err := books.FindByID(txCtx, bookID)
		if err != nil {
			return fmt.Errorf("book %d: %w", bookID, err)
		}

		session, err := sessions.FindActiveByBook(txCtx, bookID)
		if err != nil {
			return err
		}
		if session == nil {
			session, err = startSession(txCtx, sessions, bookID, reading.StatusReading, progressDate)
			if err != nil {
				return err
			}
		}

		var totalPages int64
		if book.TotalPages != nil {
			totalPages = *book.TotalPages
		}

		var (
			page, percent  int64
			unit           reading.Unit
			candidateValue int64
		)
		if input.CurrentPage != nil {
			page = *input.CurrentPage
			percent = reading.PercentForPage(page, totalPages)
			unit = reading.UnitPage
			candidateValue = page
		} else {
			percent = *input.CurrentPercentage
			page = reading.PageForPercent(percent, totalPages)
			unit = reading.UnitPercent
			candidateValue = percent
		}

		existing, err := entries.ListBySession(txCtx, session.ID)
		if err != nil {
			return err
		}
		if err := reading.CheckTimeline(toSamples(existing), progressDate, candidateValue, unit, 0); err != nil {
			return err
		}

		var lastPage int64
		if latest := latestByDate(existing); latest != nil {
			lastPage = latest.CurrentPage
		}

		entry := database.ProgressRecord{
			BookID:            bookID,
			SessionID:         session.ID,
			CurrentPage:       page,
			CurrentPercentage: percent,
			PagesRead:         reading.PagesRead(page, lastPage),
			ProgressDate:      progressDate,
			Notes:             input.Notes,
		}
		entryID, err := entries.Insert(txCtx, entry)
		if err != nil {
			return err
		}
		entry.ID = entryID

		result.Entry = entry
		result.CompletionReached = percent >= 100

		// The only automatic transition: hitting 100% finishes a session
		// that is currently being read. Already-finished sessions and
		// other statuses are left alone.
		if result.CompletionReached && session.Status == reading.StatusReading {
			if err := finishSession(txCtx, sessions, session, progressDate); err != nil {
				return err
			}
			result.SessionCompleted = true
		}

		result.Session = *session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecomputeSession rewrites the derived fields of every entry in a session
// against a new page count, in its own transaction. The page-count guard
// uses the transaction-scoped recomputeSession directly instead.
func (s *ProgressService) RecomputeSession(ctx context.Context, sessionID, newTotalPages int64) ([]database.ProgressRecord, error) {
	var result []database.ProgressRecord
	err := withTx(ctx, s.ctx, func(txCtx context.Context, tx *sql.Tx) error {
		var err error
		result, err = recomputeSession(txCtx, tx, sessionID, newTotalPages)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History returns every entry logged against a book, oldest first, across
// all of its sessions.
func (s *ProgressService) History(ctx context.Context, bookID int64) ([]database.ProgressRecord, error) {
	entries := database.NewProgressRepository(s.ctx.DB)
	return entries.ListByBook(ctx, bookID)
}

// SessionEntries returns one session's entries in chronological order.
func (s *ProgressService) SessionEntries(ctx context.Context, sessionID int64) ([]database.ProgressRecord, error) {
	entries := database.NewProgressRepository(s.ctx.DB)
	return entries.ListBySession(ctx, sessionID)
}

// recomputeSession walks a session's entries chronologically and rewrites
// current_percentage and pages_read against the new total. Recorded pages
// and dates are preserved, so running it twice is a no-op the second time.
func recomputeSession(ctx context.Context, db database.DBTX, sessionID, newTotalPages int64) ([]database.ProgressRecord, error) {
	entries := database.NewProgressRepository(db)

	records, err := entries.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var previousPage int64
	for i := range records {
		record := &records[i]
		percent := reading.PercentForPage(record.CurrentPage, newTotalPages)
		pagesRead := reading.PagesRead(record.CurrentPage, previousPage)
		if percent != record.CurrentPercentage || pagesRead != record.PagesRead {
			if err := entries.UpdateDerived(ctx, record.ID, percent, pagesRead); err != nil {
				return nil, err
			}
		}
		record.CurrentPercentage = percent
		record.PagesRead = pagesRead
		previousPage = record.CurrentPage
	}
	return records, nil
}

func validateLogInput(input LogProgressInput) error {
	if input.CurrentPage == nil && input.CurrentPercentage == nil {
		return validationf("either a page or a percentage is required")
	}
	if input.CurrentPage != nil && input.CurrentPercentage != nil {
		return validationf("page and percentage are mutually exclusive")
	}
	if input.CurrentPage != nil && *input.CurrentPage < 0 {
		return validationf("page must not be negative, got %d", *input.CurrentPage)
	}
	if input.CurrentPercentage != nil && (*input.CurrentPercentage < 0 || *input.CurrentPercentage > 100) {
		return validationf("percentage must be between 0 and 100, got %d", *input.CurrentPercentage)
	}
	if input.ProgressDate.IsZero() {
		return validationf("progress date is required")
	}
	return nil
}

func toSamples(records []database.ProgressRecord) []reading.Sample {
	samples := make([]reading.Sample, 0, len(records))
	for _, r := range records {
		samples = append(samples, reading.Sample{
			EntryID: r.ID,
			Date:    r.ProgressDate,
			Page:    r.CurrentPage,
			Percent: r.CurrentPercentage,
		})
	}
	return samples
}

// latestByDate picks the chronologically newest entry; records arrive
// ordered by date then id, so the last one wins.
func latestByDate(records []database.ProgressRecord) *database.ProgressRecord {
	if len(records) == 0 {
		return nil
	}
	return &records[len(records)-1]
}
