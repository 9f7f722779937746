package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dev-c-webd/tube-v/internal/dbx"
)

const (
	keyUsername     = "username"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keySavedAt      = "saved_at"
)

var sessionKeys = []string{keyUsername, keyAccessToken, keyRefreshToken, keySavedAt}

// SQLiteRepository keeps the session as rows of the metadata key/value table.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save replaces the stored session atomically.
func (r *SQLiteRepository) Save(ctx context.Context, s *Session) error {
	values := map[string]string{
		keyUsername:     s.Username,
		keyAccessToken:  s.AccessToken,
		keyRefreshToken: s.RefreshToken,
		keySavedAt:      s.SavedAt.UTC().Format(time.RFC3339),
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range sessionKeys {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO metadata (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, k, []byte(values[k]))
			if err != nil {
				return fmt.Errorf("failed to save session[%s]: %w", k, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Load(ctx context.Context) (*Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata WHERE key IN (?, ?, ?, ?)`,
		keyUsername, keyAccessToken, keyRefreshToken, keySavedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(sessionKeys))
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		values[key] = string(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	if values[keyRefreshToken] == "" {
		return nil, nil
	}

	s := &Session{
		Username:     values[keyUsername],
		AccessToken:  values[keyAccessToken],
		RefreshToken: values[keyRefreshToken],
	}
	if ts, err := time.Parse(time.RFC3339, values[keySavedAt]); err == nil {
		s.SavedAt = ts
	}
	return s, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?, ?, ?)`,
		keyUsername, keyAccessToken, keyRefreshToken, keySavedAt)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
