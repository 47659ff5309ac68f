// Package services implements the transactional core of the tracker: the
// progress ledger, the session state machine, and the page-count guard.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leaflog/leaflog/internal/database"
)

// withTx runs fn inside a single transaction. Every multi-step mutation in
// this package goes through it so a failure can never leave the ledger and
// the session state disagreeing.
func withTx(ctx context.Context, dbCtx *database.Context, fn func(txCtx context.Context, tx *sql.Tx) error) error {
	if dbCtx == nil || dbCtx.DB == nil {
		return fmt.Errorf("services: missing database context")
	}

	tx, err := dbCtx.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return nil
}
