package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dev-c-webd/tube-v/internal/common"
	"github.com/dev-c-webd/tube-v/internal/dbx"
	"github.com/dev-c-webd/tube-v/internal/server/auth"
	"github.com/dev-c-webd/tube-v/internal/server/models"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/repomanager"
	"github.com/dev-c-webd/tube-v/internal/server/storage"
)

// MediaUploader stores a local file and returns its public location. A nil
// result with a nil error means there was nothing to upload.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (*storage.UploadResult, error)
}

// RegisterInput carries sign-up fields. AvatarPath and CoverImagePath point at
// files already saved locally by the transport layer.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// UserService handles account data outside the session lifecycle.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       MediaUploader
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, media MediaUploader) *UserService {
	return &UserService{db: db, repomanager: m, media: media}
}

// Register creates an account. Username and email are stored lowercased.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, common.NewError(common.ErrorValidation, "all fields are required")
	}
	if in.AvatarPath == "" {
		return nil, common.NewError(common.ErrorValidation, "avatar file is required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		return nil, internalError("hash password", err)
	}

	exists, err := s.repomanager.Users(s.db).ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, internalError("check user", err)
	}
	if exists {
		return nil, common.NewError(common.ErrorConflict, "user with email or username already exists")
	}

	// A later failure leaves the uploaded avatar orphaned in the bucket.
	avatar, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil || avatar == nil {
		return nil, common.NewError(common.ErrorValidation, "failed to upload avatar")
	}

	var coverURL string
	cover, err := s.media.Upload(ctx, in.CoverImagePath)
	if err != nil {
		return nil, common.NewError(common.ErrorValidation, "failed to upload cover image")
	}
	if cover != nil {
		coverURL = cover.URL
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		u, err := users.Create(ctx, &models.User{
			Username:     username,
			Email:        email,
			FullName:     fullName,
			Avatar:       avatar.URL,
			CoverImage:   coverURL,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		created, err = users.GetByID(ctx, u.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, "user with email or username already exists")
		}
		return nil, internalError("something went wrong while registering the user", err)
	}

	return created.Public(), nil
}

func (s *UserService) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user does not exist", "find user")
	}
	return u.Public(), nil
}

func (s *UserService) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, common.NewError(common.ErrorValidation, "all fields are required")
	}

	u, err := s.repomanager.Users(s.db).UpdateDetails(ctx, id, fullName, email)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, "email is already in use")
		}
		return nil, notFoundOr(err, "user does not exist", "update account")
	}
	return u.Public(), nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, id, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, common.NewError(common.ErrorValidation, "avatar file is missing")
	}
	res, err := s.media.Upload(ctx, localPath)
	if err != nil || res == nil {
		return nil, common.NewError(common.ErrorValidation, "failed to upload avatar")
	}

	u, err := s.repomanager.Users(s.db).UpdateAvatar(ctx, id, res.URL)
	if err != nil {
		return nil, notFoundOr(err, "user does not exist", "update avatar")
	}
	return u.Public(), nil
}

func (s *UserService) UpdateCoverImage(ctx context.Context, id, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, common.NewError(common.ErrorValidation, "cover image file is missing")
	}
	res, err := s.media.Upload(ctx, localPath)
	if err != nil || res == nil {
		return nil, common.NewError(common.ErrorValidation, "failed to upload cover image")
	}

	u, err := s.repomanager.Users(s.db).UpdateCoverImage(ctx, id, res.URL)
	if err != nil {
		return nil, notFoundOr(err, "user does not exist", "update cover image")
	}
	return u.Public(), nil
}

// ChannelProfile returns username's channel as seen by viewerID.
func (s *UserService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, common.NewError(common.ErrorValidation, "username is missing")
	}

	p, err := s.repomanager.Channels(s.db).GetProfile(ctx, username, viewerID)
	if err != nil {
		return nil, notFoundOr(err, "channel does not exist", "load channel")
	}
	return p, nil
}

func (s *UserService) WatchHistory(ctx context.Context, id string) ([]*models.WatchedVideo, error) {
	items, err := s.repomanager.Videos(s.db).WatchHistory(ctx, id)
	if err != nil {
		return nil, internalError("load watch history", err)
	}
	return items, nil
}

func notFoundOr(err error, message, op string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewError(common.ErrorNotFound, message)
	}
	return internalError(op, err)
}
