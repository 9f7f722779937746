// Package rest serves the public JSON API under /api/v1/users.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dev-c-webd/tube-v/internal/logging"
	"github.com/dev-c-webd/tube-v/internal/server/auth"
	"github.com/dev-c-webd/tube-v/internal/server/metrics"
	"github.com/dev-c-webd/tube-v/internal/server/models"
	"github.com/dev-c-webd/tube-v/internal/server/services"
	"github.com/gorilla/mux"
)

type SessionService interface {
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	Refresh(ctx context.Context, token string) (*auth.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID string, in services.ChangePasswordInput) error
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	CurrentUser(ctx context.Context, id string) (*models.User, error)
	UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, localPath string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, id, localPath string) (*models.User, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id string) ([]*models.WatchedVideo, error)
}

// Options holds the HTTP-facing settings.
type Options struct {
	Address                string
	CookieSecure           bool
	CORSOrigin             string
	UploadDir              string
	MaxUploadSize          int64
	AuthRateLimitPerMinute int
}

type Server struct {
	opts     Options
	logger   logging.Logger
	metrics  *metrics.Metrics
	sessions SessionService
	users    UserService
	limiter  *ipRateLimiter
	handler  http.Handler
}

func NewServer(opts Options, l logging.Logger, m *metrics.Metrics, ss SessionService, us UserService) *Server {
	s := &Server{
		opts:     opts,
		logger:   l.With("module", "rest_server"),
		metrics:  m,
		sessions: ss,
		users:    us,
	}
	if opts.AuthRateLimitPerMinute > 0 {
		s.limiter = newIPRateLimiter(opts.AuthRateLimitPerMinute)
	}
	s.handler = s.cors(s.routes())
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.observe)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1/users").Subrouter()

	api.Handle("/register", s.rateLimit(http.HandlerFunc(s.register))).Methods(http.MethodPost)
	api.Handle("/login", s.rateLimit(http.HandlerFunc(s.login))).Methods(http.MethodPost)
	api.Handle("/refresh-token", s.rateLimit(http.HandlerFunc(s.refreshToken))).Methods(http.MethodPost)

	api.Handle("/logout", s.requireAuth(s.logout)).Methods(http.MethodPost)
	api.Handle("/change-password", s.requireAuth(s.changePassword)).Methods(http.MethodPost)
	api.Handle("/current-user", s.requireAuth(s.currentUser)).Methods(http.MethodGet)
	api.Handle("/update-account", s.requireAuth(s.updateAccount)).Methods(http.MethodPatch)
	api.Handle("/avatar", s.requireAuth(s.updateAvatar)).Methods(http.MethodPatch)
	api.Handle("/cover-image", s.requireAuth(s.updateCoverImage)).Methods(http.MethodPatch)
	api.Handle("/c/{username}", s.requireAuth(s.channelProfile)).Methods(http.MethodGet)
	api.Handle("/history", s.requireAuth(s.watchHistory)).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}
