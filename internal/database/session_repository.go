package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leaflog/leaflog/internal/reading"
)

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, book_id, session_number, status, is_active, started_date, completed_date, dnf_date, review, created_at, updated_at"

func (r *SessionRepository) Create(ctx context.Context, record SessionRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reading_sessions (book_id, session_number, status, is_active, started_date, completed_date, dnf_date, review)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.BookID, record.SessionNumber, string(record.Status), boolToInt64(record.IsActive),
		nullTimePtr(record.StartedDate), nullTimePtr(record.CompletedDate), nullTimePtr(record.DNFDate),
		nullStringPtr(record.Review))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM reading_sessions WHERE id = ?", id)

	record, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// FindActiveByBook returns the book's active session, or nil when the book
// has none yet.
func (r *SessionRepository) FindActiveByBook(ctx context.Context, bookID int64) (*SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM reading_sessions WHERE book_id = ? AND is_active = 1", bookID)

	record, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (r *SessionRepository) ListByBook(ctx context.Context, bookID int64) ([]SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM reading_sessions WHERE book_id = ? ORDER BY session_number", bookID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

// MaxSessionNumber returns the highest session number used for a book, 0
// when the book has no sessions.
func (r *SessionRepository) MaxSessionNumber(ctx context.Context, bookID int64) (int64, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(session_number) FROM reading_sessions WHERE book_id = ?", bookID).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

func (r *SessionRepository) Update(ctx context.Context, record SessionRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reading_sessions
		 SET status = ?, is_active = ?, started_date = ?, completed_date = ?, dnf_date = ?, review = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(record.Status), boolToInt64(record.IsActive),
		nullTimePtr(record.StartedDate), nullTimePtr(record.CompletedDate), nullTimePtr(record.DNFDate),
		nullStringPtr(record.Review), record.ID)
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

// ListWithEntries returns the ids of every session of a book that has at
// least one progress entry, regardless of session status.
func (r *SessionRepository) ListWithEntries(ctx context.Context, bookID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id FROM reading_sessions s
		 WHERE s.book_id = ? AND EXISTS (SELECT 1 FROM progress_entries p WHERE p.session_id = s.id)
		 ORDER BY s.session_number`, bookID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var (
		record    SessionRecord
		status    string
		isActive  int64
		started   sql.NullTime
		completed sql.NullTime
		dnf       sql.NullTime
		review    sql.NullString
	)
	if err := row.Scan(&record.ID, &record.BookID, &record.SessionNumber, &status, &isActive,
		&started, &completed, &dnf, &review, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.Status = reading.Status(status)
	record.IsActive = isActive != 0
	record.StartedDate = timePtr(started)
	record.CompletedDate = timePtr(completed)
	record.DNFDate = timePtr(dnf)
	record.Review = stringPtr(review)
	return &record, nil
}
