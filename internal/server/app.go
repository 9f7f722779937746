// Package server wires configuration, storage, services and transports into a
// runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dev-c-webd/tube-v/internal/filex"
	"github.com/dev-c-webd/tube-v/internal/logging"
	"github.com/dev-c-webd/tube-v/internal/server/auth"
	"github.com/dev-c-webd/tube-v/internal/server/config"
	"github.com/dev-c-webd/tube-v/internal/server/metrics"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/repomanager"
	"github.com/dev-c-webd/tube-v/internal/server/rest"
	"github.com/dev-c-webd/tube-v/internal/server/services"
	"github.com/dev-c-webd/tube-v/internal/server/storage"

	gs "github.com/dev-c-webd/tube-v/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newUploader = func(ctx context.Context, opts storage.Options) (services.MediaUploader, error) {
		return storage.NewUploader(ctx, opts)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	rest   *rest.Server
	grpc   *gs.GRPCServer
}

// NewApp connects to the database, applies migrations and builds every
// service. The caller owns the returned App and must call Run or Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	uploader, err := newUploader(ctx, storage.Options{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		PublicURL:    c.S3PublicURL,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	uploadDir, err := filex.EnsureDir(c.UploadDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("upload dir: %w", err)
	}

	issuer := auth.NewTokenIssuer(c.AccessTokenSecret, c.RefreshTokenSecret,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)

	sessions := services.NewSessionService(db, rm, issuer)
	users := services.NewUserService(db, rm, uploader)

	rs := rest.NewServer(rest.Options{
		Address:                c.EndpointAddrHTTP,
		CookieSecure:           c.CookieSecure,
		CORSOrigin:             c.CORSOrigin,
		UploadDir:              uploadDir,
		MaxUploadSize:          c.MaxUploadSize,
		AuthRateLimitPerMinute: c.AuthRateLimitPerMinute,
	}, logger, metrics.New(), sessions, users)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		rest:   rs,
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or either
// server fails; a failure in one stops the other.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	for name, run := range map[string]func(context.Context) error{
		"http": app.rest.Run,
		"grpc": app.grpc.Run,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "server", name, "error", err)
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "close db", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) Close() error {
	return app.db.Close()
}
