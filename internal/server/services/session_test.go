package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dev-c-webd/tube-v/internal/common"
	"github.com/dev-c-webd/tube-v/internal/server/auth"
	"github.com/dev-c-webd/tube-v/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService(t *testing.T) (*SessionService, *memStore) {
	t.Helper()
	store := newMemStore()
	issuer := auth.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)
	return NewSessionService(nil, &fakeRepoManager{s: store}, issuer), store
}

func addAlice(t *testing.T, store *memStore) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("p1")
	require.NoError(t, err)
	return store.add(models.User{Username: "alice", Email: "a@x.com", FullName: "Alice", PasswordHash: hash})
}

func requireKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	if msg != "" {
		assert.Equal(t, msg, common.Message(err, ""))
	}
}

func TestLogin_Success(t *testing.T) {
	s, store := newSessionService(t)
	alice := addAlice(t, store)

	res, err := s.Login(context.Background(), LoginInput{Username: "ALICE", Password: "p1"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, alice.ID, res.User.ID)
	assert.Empty(t, res.User.PasswordHash)
	assert.Empty(t, res.User.RefreshTokenHash)

	// stored fingerprint matches the issued token
	assert.Equal(t, auth.Fingerprint(res.Tokens.RefreshToken), store.snapshot(alice.ID).RefreshTokenHash)

	raw, err := json.Marshal(res.User)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "refresh")
}

func TestLogin_ByEmail(t *testing.T) {
	s, store := newSessionService(t)
	addAlice(t, store)

	_, err := s.Login(context.Background(), LoginInput{Email: "A@X.com", Password: "p1"})
	require.NoError(t, err)
}

func TestLogin_Failures(t *testing.T) {
	s, store := newSessionService(t)
	addAlice(t, store)

	_, err := s.Login(context.Background(), LoginInput{Password: "p1"})
	requireKind(t, err, common.ErrorValidation, "username or email is required")

	_, err = s.Login(context.Background(), LoginInput{Username: "alice"})
	requireKind(t, err, common.ErrorValidation, "password is required")

	_, err = s.Login(context.Background(), LoginInput{Username: "bob", Password: "p1"})
	requireKind(t, err, common.ErrorNotFound, "user does not exist")

	_, err = s.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	requireKind(t, err, common.ErrorUnauthorized, "invalid user credentials")

	store.getErr = errBoom{}
	_, err = s.Login(context.Background(), LoginInput{Username: "alice", Password: "p1"})
	requireKind(t, err, common.ErrorInternal, "")
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	s, store := newSessionService(t)
	addAlice(t, store)
	store.setErr = errBoom{}

	_, err := s.Login(context.Background(), LoginInput{Username: "alice", Password: "p1"})
	requireKind(t, err, common.ErrorInternal, "")
}

// Login, rotate once, then replay the original token.
func TestRefresh_RotationAndReuseDetection(t *testing.T) {
	s, store := newSessionService(t)
	addAlice(t, store)
	ctx := context.Background()

	login, err := s.Login(ctx, LoginInput{Username: "alice", Password: "p1"})
	require.NoError(t, err)
	original := login.Tokens.RefreshToken

	rotated, err := s.Refresh(ctx, original)
	require.NoError(t, err)
	assert.NotEqual(t, original, rotated.RefreshToken)
	assert.NotEmpty(t, rotated.AccessToken)

	_, err = s.Refresh(ctx, original)
	requireKind(t, err, common.ErrorUnauthorized, "refresh token is expired or used")

	// the rotated token is still good
	_, err = s.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_InvalidTokens(t *testing.T) {
	s, store := newSessionService(t)
	alice := addAlice(t, store)
	ctx := context.Background()

	_, err := s.Refresh(ctx, "")
	requireKind(t, err, common.ErrorUnauthorized, "unauthorized request")

	_, err = s.Refresh(ctx, "not-a-jwt")
	requireKind(t, err, common.ErrorUnauthorized, "invalid refresh token")

	// access token presented as refresh token
	pair, err := s.issuer.Issue(identityOf(alice))
	require.NoError(t, err)
	_, err = s.Refresh(ctx, pair.AccessToken)
	requireKind(t, err, common.ErrorUnauthorized, "invalid refresh token")

	// well-formed but never stored
	_, err = s.Refresh(ctx, pair.RefreshToken)
	requireKind(t, err, common.ErrorUnauthorized, "refresh token is expired or used")

	// account gone
	ghost, err := s.issuer.Issue(auth.Identity{UserID: "u-404"})
	require.NoError(t, err)
	_, err = s.Refresh(ctx, ghost.RefreshToken)
	requireKind(t, err, common.ErrorUnauthorized, "invalid refresh token")
}

func TestRefresh_Expired(t *testing.T) {
	s, store := newSessionService(t)
	addAlice(t, store)
	ctx := context.Background()

	past := time.Now().Add(-300 * time.Hour)
	s.issuer = s.issuer.WithClock(func() time.Time { return past })
	login, err := s.Login(ctx, LoginInput{Username: "alice", Password: "p1"})
	require.NoError(t, err)

	s.issuer = s.issuer.WithClock(time.Now)
	_, err = s.Refresh(ctx, login.Tokens.RefreshToken)
	requireKind(t, err, common.ErrorUnauthorized, "invalid refresh token")
}

func TestRefresh_ConcurrentReplayOnlyOneWins(t *testing.T) {
	s, store := newSessionService(t)
	addAlice(t, store)
	ctx := context.Background()

	login, err := s.Login(ctx, LoginInput{Username: "alice", Password: "p1"})
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Refresh(ctx, login.Tokens.RefreshToken); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestRefresh_RotateFailureIsInternal(t *testing.T) {
	s, store := newSessionService(t)
	addAlice(t, store)
	ctx := context.Background()

	login, err := s.Login(ctx, LoginInput{Username: "alice", Password: "p1"})
	require.NoError(t, err)

	store.rotateErr = errBoom{}
	_, err = s.Refresh(ctx, login.Tokens.RefreshToken)
	requireKind(t, err, common.ErrorInternal, "")
}

func TestLogout_ThenRefreshFails(t *testing.T) {
	s, store := newSessionService(t)
	alice := addAlice(t, store)
	ctx := context.Background()

	login, err := s.Login(ctx, LoginInput{Username: "alice", Password: "p1"})
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, alice.ID))
	assert.Empty(t, store.snapshot(alice.ID).RefreshTokenHash)

	// idempotent
	require.NoError(t, s.Logout(ctx, alice.ID))

	_, err = s.Refresh(ctx, login.Tokens.RefreshToken)
	requireKind(t, err, common.ErrorUnauthorized, "refresh token is expired or used")
}

func TestChangePassword(t *testing.T) {
	s, store := newSessionService(t)
	alice := addAlice(t, store)
	ctx := context.Background()

	before := store.snapshot(alice.ID).PasswordHash
	err := s.ChangePassword(ctx, alice.ID, ChangePasswordInput{OldPassword: "nope", NewPassword: "p2"})
	requireKind(t, err, common.ErrorUnauthorized, "invalid old password")
	assert.Equal(t, before, store.snapshot(alice.ID).PasswordHash)

	require.NoError(t, s.ChangePassword(ctx, alice.ID, ChangePasswordInput{OldPassword: "p1", NewPassword: "p2"}))

	_, err = s.Login(ctx, LoginInput{Username: "alice", Password: "p1"})
	requireKind(t, err, common.ErrorUnauthorized, "invalid user credentials")

	_, err = s.Login(ctx, LoginInput{Username: "alice", Password: "p2"})
	require.NoError(t, err)
}

func TestChangePassword_KeepsRefreshToken(t *testing.T) {
	s, store := newSessionService(t)
	alice := addAlice(t, store)
	ctx := context.Background()

	login, err := s.Login(ctx, LoginInput{Username: "alice", Password: "p1"})
	require.NoError(t, err)

	require.NoError(t, s.ChangePassword(ctx, alice.ID, ChangePasswordInput{OldPassword: "p1", NewPassword: "p2"}))

	_, err = s.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
}

func TestChangePassword_Validation(t *testing.T) {
	s, store := newSessionService(t)
	alice := addAlice(t, store)
	ctx := context.Background()

	err := s.ChangePassword(ctx, alice.ID, ChangePasswordInput{OldPassword: "p1"})
	requireKind(t, err, common.ErrorValidation, "old password and new password are required")

	err = s.ChangePassword(ctx, "u-404", ChangePasswordInput{OldPassword: "p1", NewPassword: "p2"})
	requireKind(t, err, common.ErrorNotFound, "user does not exist")

	err = s.ChangePassword(ctx, alice.ID, ChangePasswordInput{OldPassword: "p1", NewPassword: strings.Repeat("a", 80)})
	requireKind(t, err, common.ErrorValidation, "password must be at most 72 bytes")
	assert.True(t, auth.ComparePassword(store.users[alice.ID].PasswordHash, "p1"))
}

func TestAuthenticate(t *testing.T) {
	s, store := newSessionService(t)
	alice := addAlice(t, store)
	ctx := context.Background()

	login, err := s.Login(ctx, LoginInput{Username: "alice", Password: "p1"})
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, login.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.Empty(t, u.PasswordHash)

	_, err = s.Authenticate(ctx, "")
	requireKind(t, err, common.ErrorUnauthorized, "unauthorized request")

	_, err = s.Authenticate(ctx, login.Tokens.RefreshToken)
	requireKind(t, err, common.ErrorUnauthorized, "invalid access token")

	store.mu.Lock()
	delete(store.users, alice.ID)
	store.mu.Unlock()
	_, err = s.Authenticate(ctx, login.Tokens.AccessToken)
	requireKind(t, err, common.ErrorUnauthorized, "invalid access token")

	store.getErr = errors.New("db down")
	_, err = s.Authenticate(ctx, login.Tokens.AccessToken)
	requireKind(t, err, common.ErrorInternal, "")
}
