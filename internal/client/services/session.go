// Package services contains application services for the tube-v client.
// SessionService keeps the API client's tokens and the local session store
// in step: every call that can rotate tokens is followed by a save.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dev-c-webd/tube-v/internal/client/client"
	"github.com/dev-c-webd/tube-v/internal/client/repositories/session"
)

// SessionService is the CLI's view of an account session.
//
// Restore must be called once at startup; it returns the saved username or
// "" when there is nothing to resume.
type SessionService interface {
	Restore(ctx context.Context) (string, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.User, error)
	Login(ctx context.Context, identifier string, password []byte) (*client.User, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*client.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error
	Ping(ctx context.Context) error
}

type sessionService struct {
	client   client.Client
	sessions session.Repository
	username string
	now      func() time.Time
}

func NewSessionService(c client.Client, r session.Repository) SessionService {
	return &sessionService{client: c, sessions: r, now: time.Now}
}

func (s *sessionService) Restore(ctx context.Context) (string, error) {
	saved, err := s.sessions.Load(ctx)
	if err != nil {
		return "", err
	}
	if saved == nil {
		return "", nil
	}
	s.username = saved.Username
	s.client.SetTokens(client.Tokens{AccessToken: saved.AccessToken, RefreshToken: saved.RefreshToken})
	return saved.Username, nil
}

func (s *sessionService) Register(ctx context.Context, req client.RegisterRequest) (*client.User, error) {
	return s.client.Register(ctx, req)
}

func (s *sessionService) Login(ctx context.Context, identifier string, password []byte) (*client.User, error) {
	u, err := s.client.Login(ctx, identifier, string(password))
	if err != nil {
		return nil, err
	}
	s.username = u.Username
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *sessionService) Refresh(ctx context.Context) error {
	err := s.client.Refresh(ctx)
	return s.settle(ctx, err)
}

// Logout drops the local session even when the server could not be reached.
func (s *sessionService) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.username = ""
	if cerr := s.sessions.Clear(ctx); cerr != nil {
		return cerr
	}
	if errors.Is(err, client.ErrNotLoggedIn) {
		return nil
	}
	return err
}

func (s *sessionService) Me(ctx context.Context) (*client.User, error) {
	u, err := s.client.CurrentUser(ctx)
	if err := s.settle(ctx, err); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *sessionService) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	err := s.client.ChangePassword(ctx, string(oldPassword), string(newPassword))
	return s.settle(ctx, err)
}

func (s *sessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// settle saves whatever tokens the client now holds. When the refresh token
// was rejected the stale session is discarded instead.
func (s *sessionService) settle(ctx context.Context, callErr error) error {
	if errors.Is(callErr, client.ErrSessionExpired) {
		s.client.SetTokens(client.Tokens{})
		s.username = ""
		if err := s.sessions.Clear(ctx); err != nil {
			return err
		}
		return callErr
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	return callErr
}

func (s *sessionService) persist(ctx context.Context) error {
	t := s.client.Tokens()
	if t.RefreshToken == "" {
		return nil
	}
	err := s.sessions.Save(ctx, &session.Session{
		Username:     s.username,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		SavedAt:      s.now(),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
