package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dev-c-webd/tube-v/internal/common"
	"github.com/dev-c-webd/tube-v/internal/server/auth"
)

func (s *Server) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
	}
}

func (s *Server) setAuthCookies(w http.ResponseWriter, pair *auth.TokenPair) {
	http.SetCookie(w, s.cookie(common.AccessTokenCookieName, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, s.cookie(common.RefreshTokenCookieName, pair.RefreshToken, pair.RefreshExpiresAt))
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		c := s.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

// accessTokenFrom prefers the cookie over the Authorization header.
func accessTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
