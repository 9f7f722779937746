package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	apiPrefix             = "/api/v1/users"
	msgInvalidAccessToken = "invalid access token"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// HTTPClient talks to the REST API with bearer tokens. An authorized call
// that fails with 401 is retried once after a refresh.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	mu      sync.Mutex
	tokens  Tokens
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *HTTPClient) SetTokens(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
}

func (c *HTTPClient) Register(ctx context.Context, r RegisterRequest) (*User, error) {
	body, contentType, err := registerForm(r)
	if err != nil {
		return nil, err
	}

	var u User
	if err := c.do(ctx, http.MethodPost, "/register", contentType, body, "", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login accepts either a username or an email as identifier.
func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*User, error) {
	payload := map[string]string{"password": password}
	if strings.Contains(identifier, "@") {
		payload["email"] = identifier
	} else {
		payload["username"] = identifier
	}

	var res struct {
		User *User `json:"user"`
		Tokens
	}
	if err := c.doJSON(ctx, http.MethodPost, "/login", payload, "", &res); err != nil {
		return nil, err
	}
	c.SetTokens(res.Tokens)
	return res.User, nil
}

func (c *HTTPClient) Refresh(ctx context.Context) error {
	rt := c.Tokens().RefreshToken
	if rt == "" {
		return ErrNotLoggedIn
	}

	var res Tokens
	if err := c.doJSON(ctx, http.MethodPost, "/refresh-token", map[string]string{"refreshToken": rt}, "", &res); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return err
	}
	c.SetTokens(res)
	return nil
}

// Logout always forgets the local tokens, even when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.authorized(ctx, http.MethodPost, "/logout", nil, nil)
	c.SetTokens(Tokens{})
	return err
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.authorized(ctx, http.MethodGet, "/current-user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.authorized(ctx, http.MethodPost, "/change-password",
		map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) authorized(ctx context.Context, method, path string, payload, out any) error {
	if c.Tokens().AccessToken == "" {
		return ErrNotLoggedIn
	}

	err := c.doJSON(ctx, method, path, payload, c.Tokens().AccessToken, out)
	if !accessRejected(err) || c.Tokens().RefreshToken == "" {
		return err
	}

	if rerr := c.Refresh(ctx); rerr != nil {
		return rerr
	}
	return c.doJSON(ctx, method, path, payload, c.Tokens().AccessToken, out)
}

// accessRejected reports a 401 caused by the access token itself, as opposed
// to a domain check such as a wrong old password.
func accessRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusUnauthorized &&
		apiErr.Message == msgInvalidAccessToken
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, payload any, token string, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, token, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body io.Reader, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func registerForm(r RegisterRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range [][2]string{
		{"fullName", r.FullName},
		{"email", r.Email},
		{"username", r.Username},
		{"password", r.Password},
	} {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for field, path := range map[string]string{"avatar": r.AvatarPath, "coverImage": r.CoverImagePath} {
		if path == "" {
			continue
		}
		if err := attachFile(mw, field, path); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func attachFile(mw *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	w, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
