package database

import (
	"time"

	"github.com/leaflog/leaflog/internal/reading"
)

// BookRecord represents a row in the books table. TotalPages and Rating are
// nil until the reader supplies them.
type BookRecord struct {
	ID         int64
	Title      string
	Author     string
	TotalPages *int64
	Rating     *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SessionRecord represents a row in the reading_sessions table. Each session
// is one attempt at reading a book; at most one per book is active.
type SessionRecord struct {
	ID            int64
	BookID        int64
	SessionNumber int64
	Status        reading.Status
	IsActive      bool
	StartedDate   *time.Time
	CompletedDate *time.Time
	DNFDate       *time.Time
	Review        *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProgressRecord corresponds to a row in the progress_entries table: one
// point-in-time observation of how far into a book the reader is.
type ProgressRecord struct {
	ID                int64
	BookID            int64
	SessionID         int64
	CurrentPage       int64
	CurrentPercentage int64
	PagesRead         int64
	ProgressDate      time.Time
	Notes             *string
	CreatedAt         time.Time
}

// SessionProgress is a denormalised view pairing a session with its entry
// count, used when deciding which sessions a recompute must cover.
type SessionProgress struct {
	SessionID  int64
	EntryCount int64
}
