package rest

import (
	"context"
	"os"

	"github.com/dev-c-webd/tube-v/internal/common"
	"github.com/dev-c-webd/tube-v/internal/server/auth"
	"github.com/dev-c-webd/tube-v/internal/server/models"
	"github.com/dev-c-webd/tube-v/internal/server/services"
)

var alice = &models.User{ID: "u-1", Username: "alice", Email: "a@x.com", FullName: "Alice"}

// fakeSessions accepts "good-access" as the only valid access token.
type fakeSessions struct {
	loginIn    services.LoginInput
	loginErr   error
	refreshIn  string
	refreshErr error
	logoutID   string
	changeIn   services.ChangePasswordInput
	changeErr  error
}

func (f *fakeSessions) Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error) {
	f.loginIn = in
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.LoginResult{User: alice, Tokens: &auth.TokenPair{AccessToken: "acc-1", RefreshToken: "ref-1"}}, nil
}

func (f *fakeSessions) Refresh(ctx context.Context, token string) (*auth.TokenPair, error) {
	f.refreshIn = token
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	if token == "" {
		return nil, common.NewError(common.ErrorUnauthorized, "unauthorized request")
	}
	return &auth.TokenPair{AccessToken: "acc-2", RefreshToken: "ref-2"}, nil
}

func (f *fakeSessions) Logout(ctx context.Context, userID string) error {
	f.logoutID = userID
	return nil
}

func (f *fakeSessions) ChangePassword(ctx context.Context, userID string, in services.ChangePasswordInput) error {
	f.changeIn = in
	return f.changeErr
}

func (f *fakeSessions) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.NewError(common.ErrorUnauthorized, "unauthorized request")
	}
	if token != "good-access" {
		return nil, common.NewError(common.ErrorUnauthorized, "invalid access token")
	}
	return alice, nil
}

type fakeUsers struct {
	registerIn    services.RegisterInput
	avatarBody    string
	registerErr   error
	updatedPath   string
	channelName   string
	channelViewer string
}

func (f *fakeUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	f.registerIn = in
	if in.AvatarPath != "" {
		b, _ := os.ReadFile(in.AvatarPath)
		f.avatarBody = string(b)
	}
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if in.AvatarPath == "" {
		return nil, common.NewError(common.ErrorValidation, "avatar file is required")
	}
	return alice, nil
}

func (f *fakeUsers) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	return alice, nil
}

func (f *fakeUsers) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.User, error) {
	u := *alice
	u.FullName, u.Email = fullName, email
	return &u, nil
}

func (f *fakeUsers) UpdateAvatar(ctx context.Context, id, localPath string) (*models.User, error) {
	f.updatedPath = localPath
	if localPath == "" {
		return nil, common.NewError(common.ErrorValidation, "avatar file is missing")
	}
	return alice, nil
}

func (f *fakeUsers) UpdateCoverImage(ctx context.Context, id, localPath string) (*models.User, error) {
	f.updatedPath = localPath
	return alice, nil
}

func (f *fakeUsers) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	f.channelName, f.channelViewer = username, viewerID
	if username == "ghost" {
		return nil, common.NewError(common.ErrorNotFound, "channel does not exist")
	}
	return &models.ChannelProfile{Username: username, SubscribersCount: 5}, nil
}

func (f *fakeUsers) WatchHistory(ctx context.Context, id string) ([]*models.WatchedVideo, error) {
	return []*models.WatchedVideo{}, nil
}
