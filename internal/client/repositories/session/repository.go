// Package session persists the CLI's login session in the local database.
package session

import (
	"context"
	"time"
)

// Session is what the CLI needs to resume after a restart.
type Session struct {
	Username     string
	AccessToken  string
	RefreshToken string
	SavedAt      time.Time
}

// Repository stores at most one session. Load returns (nil, nil) when there
// is none.
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}
