package database

import (
	"context"
	"database/sql"
	"errors"
)

type ProgressRepository struct {
	db DBTX
}

func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = "id, book_id, session_id, current_page, current_percentage, pages_read, progress_date, notes, created_at"

func (r *ProgressRepository) Insert(ctx context.Context, record ProgressRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO progress_entries (book_id, session_id, current_page, current_percentage, pages_read, progress_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.BookID, record.SessionID, record.CurrentPage, record.CurrentPercentage,
		record.PagesRead, record.ProgressDate, nullStringPtr(record.Notes))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ProgressRepository) FindByID(ctx context.Context, id int64) (*ProgressRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+progressColumns+" FROM progress_entries WHERE id = ?", id)

	record, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// ListBySession returns a session's entries in chronological order; entries
// sharing a date keep insertion order.
func (r *ProgressRepository) ListBySession(ctx context.Context, sessionID int64) ([]ProgressRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+progressColumns+" FROM progress_entries WHERE session_id = ? ORDER BY progress_date, id", sessionID)
	if err != nil {
		return nil, err
	}
	return collectProgress(rows)
}

func (r *ProgressRepository) ListByBook(ctx context.Context, bookID int64) ([]ProgressRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+progressColumns+" FROM progress_entries WHERE book_id = ? ORDER BY progress_date, id", bookID)
	if err != nil {
		return nil, err
	}
	return collectProgress(rows)
}

// MaxPageByBook returns the highest page ever logged for a book across all
// of its sessions, 0 when nothing is logged.
func (r *ProgressRepository) MaxPageByBook(ctx context.Context, bookID int64) (int64, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(current_page) FROM progress_entries WHERE book_id = ?", bookID).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

func (r *ProgressRepository) CountBySession(ctx context.Context, sessionID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM progress_entries WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateDerived rewrites the computed fields of an entry. The recorded page
// and date are never touched here.
func (r *ProgressRepository) UpdateDerived(ctx context.Context, id, currentPercentage, pagesRead int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE progress_entries SET current_percentage = ?, pages_read = ? WHERE id = ?",
		currentPercentage, pagesRead, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func collectProgress(rows *sql.Rows) ([]ProgressRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	var result []ProgressRecord
	for rows.Next() {
		record, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

func scanProgress(row rowScanner) (*ProgressRecord, error) {
	var (
		record ProgressRecord
		notes  sql.NullString
	)
	if err := row.Scan(&record.ID, &record.BookID, &record.SessionID, &record.CurrentPage,
		&record.CurrentPercentage, &record.PagesRead, &record.ProgressDate, &notes, &record.CreatedAt); err != nil {
		return nil, err
	}
	record.Notes = stringPtr(notes)
	return &record, nil
}
