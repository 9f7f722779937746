package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dev-c-webd/tube-v/internal/common"
	"github.com/dev-c-webd/tube-v/internal/server/metrics"
	"github.com/dev-c-webd/tube-v/internal/server/models"
	"github.com/dev-c-webd/tube-v/internal/server/services"
	"github.com/gorilla/mux"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type loginResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

var errBadBody = common.NewError(common.ErrorValidation, "invalid request body")

// maxJSONBody caps every JSON request body.
const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}

	avatar, err := s.saveUpload(r, "avatar")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cover, err := s.saveUpload(r, "coverImage")
	defer removeAll(avatar, cover)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), services.RegisterInput{
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatar,
		CoverImagePath: cover,
	})
	s.metrics.AuthEvent(metrics.EventRegister, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, user, "User registered successfully")
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.sessions.Login(r.Context(), services.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	s.metrics.AuthEvent(metrics.EventLogin, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setAuthCookies(w, res.Tokens)
	writeData(w, http.StatusOK, loginResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// refreshToken reads the token from the cookie first, then from the body.
func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		token = c.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, r, errBadBody)
			return
		}
		token = req.RefreshToken
	}

	pair, err := s.sessions.Refresh(r.Context(), token)
	s.metrics.AuthEvent(metrics.EventRefresh, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setAuthCookies(w, pair)
	writeData(w, http.StatusOK, tokensResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, "Access token refreshed")
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.Logout(r.Context(), userFrom(r.Context()).ID)
	s.metrics.AuthEvent(metrics.EventLogout, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.clearAuthCookies(w)
	writeData(w, http.StatusOK, nil, "User logged out")
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	err := s.sessions.ChangePassword(r.Context(), userFrom(r.Context()).ID, services.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	s.metrics.AuthEvent(metrics.EventChangePassword, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, nil, "Password changed successfully")
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.CurrentUser(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, "User fetched successfully")
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.UpdateAccountDetails(r.Context(), userFrom(r.Context()).ID, req.FullName, req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, "Account details updated successfully")
}

func (s *Server) updateAvatar(w http.ResponseWriter, r *http.Request) {
	s.updateImage(w, r, "avatar", s.users.UpdateAvatar, "Avatar image updated successfully")
}

func (s *Server) updateCoverImage(w http.ResponseWriter, r *http.Request) {
	s.updateImage(w, r, "coverImage", s.users.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdater func(ctx context.Context, id, localPath string) (*models.User, error)

func (s *Server) updateImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdater, message string) {
	if err := s.parseMultipart(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}

	path, err := s.saveUpload(r, field)
	defer removeAll(path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := update(r.Context(), userFrom(r.Context()).ID, path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, message)
}

func (s *Server) channelProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.ChannelProfile(r.Context(), mux.Vars(r)["username"], userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, profile, "User channel fetched successfully")
}

func (s *Server) watchHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.users.WatchHistory(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items, "Watch history fetched successfully")
}
