package client

import (
	"context"
	"time"
)

// User is the account view returned by the API.
type User struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Tokens is the pair the API hands out on login and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest carries the sign-up form. AvatarPath is required by the
// server; CoverImagePath is optional.
type RegisterRequest struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, identifier, password string) (*User, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	Ping(ctx context.Context) error
	Tokens() Tokens
	SetTokens(t Tokens)
}
