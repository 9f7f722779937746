// Package services contains server-side business logic. This file implements
// SessionService, which owns the session lifecycle: login, refresh token
// rotation with reuse detection, logout and password change.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"

	"github.com/dev-c-webd/tube-v/internal/common"
	"github.com/dev-c-webd/tube-v/internal/server/auth"
	"github.com/dev-c-webd/tube-v/internal/server/models"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/repomanager"
)

// LoginInput identifies an account by username or email; either may match.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is the public account view plus a freshly issued token pair.
type LoginResult struct {
	User   *models.User
	Tokens *auth.TokenPair
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.TokenIssuer
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.TokenIssuer) *SessionService {
	return &SessionService{db: db, repomanager: m, issuer: issuer}
}

// Login verifies credentials, issues a token pair and stores the refresh
// token fingerprint as the account's only valid one.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" && email == "" {
		return nil, common.NewError(common.ErrorValidation, "username or email is required")
	}
	if in.Password == "" {
		return nil, common.NewError(common.ErrorValidation, "password is required")
	}

	user, err := s.repomanager.Users(s.db).GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "user does not exist")
		}
		return nil, internalError("find user", err)
	}

	if !auth.ComparePassword(user.PasswordHash, in.Password) {
		return nil, common.NewError(common.ErrorUnauthorized, "invalid user credentials")
	}

	pair, err := s.issuer.Issue(identityOf(user))
	if err != nil {
		return nil, internalError("issue tokens", err)
	}

	if err := s.repomanager.RefreshTokens(s.db).Set(ctx, user.ID, auth.Fingerprint(pair.RefreshToken)); err != nil {
		return nil, internalError("store refresh token", err)
	}

	return &LoginResult{User: user.Public(), Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// be the one currently stored for the account; a superseded or cleared token
// is rejected, and so is the loser of two concurrent refreshes.
func (s *SessionService) Refresh(ctx context.Context, token string) (*auth.TokenPair, error) {
	if token == "" {
		return nil, common.NewError(common.ErrorUnauthorized, "unauthorized request")
	}

	userID, err := s.issuer.ParseRefreshToken(token)
	if err != nil {
		return nil, common.NewError(common.ErrorUnauthorized, "invalid refresh token")
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, "invalid refresh token")
		}
		return nil, internalError("find user", err)
	}

	tokens := s.repomanager.RefreshTokens(s.db)

	current := auth.Fingerprint(token)
	stored, err := tokens.Get(ctx, user.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, internalError("load refresh token", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(current)) != 1 {
		return nil, common.NewError(common.ErrorUnauthorized, "refresh token is expired or used")
	}

	pair, err := s.issuer.Issue(identityOf(user))
	if err != nil {
		return nil, internalError("issue tokens", err)
	}

	rotated, err := tokens.Rotate(ctx, user.ID, current, auth.Fingerprint(pair.RefreshToken))
	if err != nil {
		return nil, internalError("rotate refresh token", err)
	}
	if !rotated {
		return nil, common.NewError(common.ErrorUnauthorized, "refresh token is expired or used")
	}

	return pair, nil
}

// Logout clears the stored refresh token. Logging out twice is fine.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.db).Clear(ctx, userID); err != nil {
		return internalError("clear refresh token", err)
	}
	return nil
}

// ChangePassword replaces the password hash. The stored refresh token is left
// as is, so existing sessions keep working.
func (s *SessionService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" {
		return common.NewError(common.ErrorValidation, "old password and new password are required")
	}

	users := s.repomanager.Users(s.db)

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, "user does not exist")
		}
		return internalError("find user", err)
	}

	if !auth.ComparePassword(user.PasswordHash, in.OldPassword) {
		return common.NewError(common.ErrorUnauthorized, "invalid old password")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return err
		}
		return internalError("hash password", err)
	}

	if err := users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return internalError("update password", err)
	}
	return nil
}

// Authenticate resolves an access token to its account.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, common.NewError(common.ErrorUnauthorized, "unauthorized request")
	}

	claims, err := s.issuer.ParseAccessToken(accessToken)
	if err != nil {
		return nil, common.NewError(common.ErrorUnauthorized, "invalid access token")
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, "invalid access token")
		}
		return nil, internalError("find user", err)
	}

	return user.Public(), nil
}

func identityOf(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName}
}
