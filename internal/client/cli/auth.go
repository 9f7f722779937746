package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dev-c-webd/tube-v/internal/client/client"
)

// getSimpleText and getPassword are swapped out in tests.
var getSimpleText = ReadLine
var getPassword = ReadSecret

var errPasswordMismatch = errors.New("passwords do not match")

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return "session expired, please log in again"
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, client.ErrNotLoggedIn):
		return "not logged in"
	default:
		return err.Error()
	}
}

// Register prompts for the sign-up form and creates the account. It does not
// log in.
func (a *App) Register(ctx context.Context) error {
	var req client.RegisterRequest

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Full name", &req.FullName},
		{"Email", &req.Email},
		{"Username", &req.Username},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)
	req.Password = string(password)

	if req.AvatarPath, err = getSimpleText(a.reader, "Avatar image path", a.out); err != nil {
		return err
	}
	if req.CoverImagePath, err = getSimpleText(a.reader, "Cover image path (optional)", a.out); err != nil {
		return err
	}

	u, err := a.sessions.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s, you can log in now\n", u.Username)
	return nil
}

// Login accepts a username or an email.
func (a *App) Login(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.sessions.Login(ctx, id, password)
	if err != nil {
		return err
	}
	a.userName = u.Username
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Username)
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.sessions.Me(ctx)
	if err != nil {
		a.dropIfExpired(err)
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n  name:   %s\n  avatar: %s\n", u.Username, u.Email, u.FullName, u.Avatar)
	if u.CoverImage != "" {
		fmt.Fprintf(a.out, "  cover:  %s\n", u.CoverImage)
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.sessions.Refresh(ctx); err != nil {
		a.dropIfExpired(err)
		return err
	}
	fmt.Fprintln(a.out, "Session refreshed")
	return nil
}

// ChangePassword asks for the new password twice.
func (a *App) ChangePassword(ctx context.Context) error {
	oldPw, err := getPassword("Old password", a.out)
	if err != nil {
		return err
	}
	defer wipe(oldPw)

	newPw, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer wipe(newPw)

	again, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer wipe(again)

	if string(newPw) != string(again) {
		return errPasswordMismatch
	}

	if err := a.sessions.ChangePassword(ctx, oldPw, newPw); err != nil {
		a.dropIfExpired(err)
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.sessions.Logout(ctx)
	a.userName = ""
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) dropIfExpired(err error) {
	if errors.Is(err, client.ErrSessionExpired) {
		a.userName = ""
	}
}
