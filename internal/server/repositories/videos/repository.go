package videos

import (
	"context"

	"github.com/dev-c-webd/tube-v/internal/server/models"
)

type Repository interface {
	// WatchHistory lists the videos userID watched, most recent first.
	WatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error)
}
