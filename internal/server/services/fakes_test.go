package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dev-c-webd/tube-v/internal/common"
	"github.com/dev-c-webd/tube-v/internal/dbx"
	"github.com/dev-c-webd/tube-v/internal/server/models"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/channels"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/refreshtokens"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/users"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/videos"
	"github.com/dev-c-webd/tube-v/internal/server/storage"
)

// memStore backs every fake repository with one map of accounts.
type memStore struct {
	mu    sync.Mutex
	seq   int
	users map[string]*models.User

	// injected failures
	getErr     error
	setErr     error
	rotateErr  error
	existsErr  error
	createErr  error
	historyErr error

	profiles map[string]*models.ChannelProfile
	history  []*models.WatchedVideo
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*models.User{}, profiles: map[string]*models.ChannelProfile{}}
}

func (m *memStore) add(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	u.ID = fmt.Sprintf("u-%d", m.seq)
	u.CreatedAt = time.Now()
	m.users[u.ID] = &u
	c := u
	return &c
}

func (m *memStore) snapshot(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

type memUsers struct{ *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.add(*u), nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, err := r.GetByUsernameOrEmail(ctx, username, email)
	return err == nil, nil
}

func (r memUsers) UpdatePassword(ctx context.Context, id string, hash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r memUsers) UpdateDetails(ctx context.Context, id string, fullName, email string) (*models.User, error) {
	r.mu.Lock()
	for _, u := range r.users {
		if u.ID != id && strings.EqualFold(u.Email, email) {
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: users_email_key", common.ErrorConflict)
		}
	}
	r.mu.Unlock()
	if err := r.update(id, func(u *models.User) { u.FullName, u.Email = fullName, email }); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r memUsers) UpdateAvatar(ctx context.Context, id string, url string) (*models.User, error) {
	if err := r.update(id, func(u *models.User) { u.Avatar = url }); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r memUsers) UpdateCoverImage(ctx context.Context, id string, url string) (*models.User, error) {
	if err := r.update(id, func(u *models.User) { u.CoverImage = url }); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r memUsers) update(id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

type memTokens struct{ *memStore }

func (r memTokens) Set(ctx context.Context, userID, fp string) error {
	if r.setErr != nil {
		return r.setErr
	}
	return memUsers(r).update(userID, func(u *models.User) { u.RefreshTokenHash = fp })
}

func (r memTokens) Get(ctx context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.RefreshTokenHash == "" {
		return "", common.ErrorNotFound
	}
	return u.RefreshTokenHash, nil
}

func (r memTokens) Rotate(ctx context.Context, userID, current, next string) (bool, error) {
	if r.rotateErr != nil {
		return false, r.rotateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.RefreshTokenHash != current {
		return false, nil
	}
	u.RefreshTokenHash = next
	return true, nil
}

func (r memTokens) Clear(ctx context.Context, userID string) error {
	_ = memUsers(r).update(userID, func(u *models.User) { u.RefreshTokenHash = "" })
	return nil
}

type memChannels struct{ *memStore }

func (r memChannels) GetProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	p, ok := r.profiles[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

type memVideos struct{ *memStore }

func (r memVideos) WatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	return r.history, nil
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return memUsers{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memTokens{m.s} }
func (m *fakeRepoManager) Channels(dbx.DBTX) channels.Repository           { return memChannels{m.s} }
func (m *fakeRepoManager) Videos(dbx.DBTX) videos.Repository               { return memVideos{m.s} }

// fakeUploader returns a CDN URL derived from the local path.
type fakeUploader struct {
	calls []string
	fail  map[string]error
}

func (f *fakeUploader) Upload(ctx context.Context, localPath string) (*storage.UploadResult, error) {
	if localPath == "" {
		return nil, nil
	}
	f.calls = append(f.calls, localPath)
	if err := f.fail[localPath]; err != nil {
		return nil, err
	}
	return &storage.UploadResult{URL: "https://cdn.test/" + localPath, Key: localPath}, nil
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
