// Package videos provides PostgreSQL queries over videos and watch history.
package videos

import (
	"context"
	"fmt"

	"github.com/dev-c-webd/tube-v/internal/dbx"
	"github.com/dev-c-webd/tube-v/internal/server/models"
)

// PostgresRepository implements video queries over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// WatchHistory joins each watched video with its owner's public fields.
// A user with no history gets an empty, non-nil slice.
func (r *PostgresRepository) WatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error) {
	query := `
		SELECT v.id, v.title, v.description, v.video_file, v.thumbnail, v.duration, v.views,
			o.id, o.username, o.full_name, o.avatar, h.watched_at
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.watched_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select watch history: %w", err)
	}
	defer rows.Close()

	result := []*models.WatchedVideo{}
	for rows.Next() {
		var item models.WatchedVideo
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Description, &item.VideoFile, &item.Thumbnail, &item.Duration, &item.Views,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.Avatar, &item.WatchedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
