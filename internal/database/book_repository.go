package database

import (
	"context"
	"database/sql"
	"errors"
)

type BookRepository struct {
	db DBTX
}

func NewBookRepository(db DBTX) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = "id, title, author, total_pages, rating, created_at, updated_at"

func (r *BookRepository) Create(ctx context.Context, title, author string, totalPages *int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO books (title, author, total_pages) VALUES (?, ?, ?)",
		title, author, nullInt64Ptr(totalPages))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*BookRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id = ?", id)

	record, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *BookRepository) List(ctx context.Context) ([]BookRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books ORDER BY title, id")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []BookRecord
	for rows.Next() {
		record, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

func (r *BookRepository) UpdateTotalPages(ctx context.Context, id, totalPages int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE books SET total_pages = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		totalPages, id)
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

func (r *BookRepository) UpdateRating(ctx context.Context, id, rating int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE books SET rating = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		rating, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*BookRecord, error) {
	var (
		record     BookRecord
		totalPages sql.NullInt64
		rating     sql.NullInt64
	)
	if err := row.Scan(&record.ID, &record.Title, &record.Author, &totalPages, &rating, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.TotalPages = int64Ptr(totalPages)
	record.Rating = int64Ptr(rating)
	return &record, nil
}
