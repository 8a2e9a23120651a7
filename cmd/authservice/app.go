package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/nkiryanov/authservice/internal/db"
	"github.com/nkiryanov/authservice/internal/handlers"
	"github.com/nkiryanov/authservice/internal/logger"
	"github.com/nkiryanov/authservice/internal/repository/postgres"
	"github.com/nkiryanov/authservice/internal/repository/redis"
	"github.com/nkiryanov/authservice/internal/service/auth"
	"github.com/nkiryanov/authservice/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/authservice/internal/service/mailer"
	"github.com/nkiryanov/authservice/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	pool   *pgxpool.Pool
	redis  *goredis.Client
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Create token manager first: it checks secrets and algorithm before any connection made
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:   c.SecretKey,
		Alg:         c.Algorithm,
		AccessTTL:   time.Duration(c.AccessLasting) * time.Second,
		RefreshTTL:  time.Duration(c.RefreshLasting) * time.Second,
		AdminSecret: c.AdminSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	rdb, err := db.ConnectRedis(ctx, c.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
	}

	app := &ServerApp{ListenAddr: c.ListenAddr, logger: l, pool: pool, redis: rdb}

	sender, err := newSender(ctx, c, l)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating mailer. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)
	codes := redis.NewCodeStore(rdb)

	// Initialize services
	authService, err := auth.NewService(auth.Config{}, tokenManager, storage, l)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService, err := user.NewService(user.Config{}, tokenManager, storage, codes, sender, l)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating user service. Err: %w", err)
	}

	checks := map[string]handlers.HealthCheck{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	app.Handler = handlers.NewRouter(authService, userService, checks, l)
	return app, nil
}

// Send emails with SES if region configured, only log them otherwise
func newSender(ctx context.Context, c *Config, l logger.Logger) (mailer.Sender, error) {
	if c.AWSRegion == "" {
		l.Warn("AWS region not set, emails will be logged and not delivered")
		return mailer.LogSender{Logger: l}, nil
	}

	return mailer.NewSESSender(ctx, mailer.SESConfig{
		Region:          c.AWSRegion,
		Endpoint:        c.AWSEndpoint,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
		From:            c.EmailFrom,
	})
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

// Close connections to database and redis
func (s *ServerApp) Close() {
	if err := s.redis.Close(); err != nil {
		s.logger.Warn("error while closing redis client", "error", err)
	}
	s.pool.Close()
}
