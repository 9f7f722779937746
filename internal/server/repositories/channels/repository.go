package channels

import (
	"context"

	"github.com/dev-c-webd/tube-v/internal/server/models"
)

type Repository interface {
	// GetProfile loads the channel owned by username. viewerID decides
	// IsSubscribed and may be empty for anonymous viewers.
	GetProfile(ctx context.Context, username string, viewerID string) (*models.ChannelProfile, error)
}
