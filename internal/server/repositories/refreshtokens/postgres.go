// Package refreshtokens provides a PostgreSQL-backed store for the refresh
// token fingerprint held in users.refresh_token_hash.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dev-c-webd/tube-v/internal/common"
	"github.com/dev-c-webd/tube-v/internal/dbx"
)

// PostgresRepository works over dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Set(ctx context.Context, userID string, fingerprint string) error {
	query := `
		UPDATE users SET refresh_token_hash = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, fingerprint)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (string, error) {
	query := `
		SELECT refresh_token_hash
		FROM users
		WHERE id = $1
	`
	var fingerprint sql.NullString
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&fingerprint); err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	if !fingerprint.Valid || fingerprint.String == "" {
		return "", common.ErrorNotFound
	}
	return fingerprint.String, nil
}

// Rotate is a single compare-and-swap UPDATE, so two concurrent refreshes
// presenting the same token cannot both succeed.
func (r *PostgresRepository) Rotate(ctx context.Context, userID string, current, next string) (bool, error) {
	query := `
		UPDATE users SET refresh_token_hash = $3
		WHERE id = $1 AND refresh_token_hash = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, current, next)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	query := `
		UPDATE users SET refresh_token_hash = NULL
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		if dbx.IsInvalidText(err) {
			return nil
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
