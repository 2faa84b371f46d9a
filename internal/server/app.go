// Package server wires storage, services and transports together and runs
// the HTTP API and the gRPC health endpoint until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/cryptox"
	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/config"
	"github.com/dmitrijs2005/linkkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/linkkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/linkkeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	redis       *redis.Client
	tokens      *auth.TokenManager
	userService *services.UserService
	linkService *services.ShareLinkService
}

// NewLogger builds the process logger: JSON outside development, text otherwise.
func NewLogger(c *config.Config) (logging.Logger, error) {
	return logging.New(logging.Options{Level: c.LogLevel, JSON: !c.IsDevelopment()})
}

// OpenRepositories connects the configured storage backend and brings its
// schema up to date.
func OpenRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	var m repomanager.RepositoryManager

	switch c.StorageType {
	case config.StorageMemory:
		m = repomanager.NewInMemoryRepositoryManager()
	default:
		pm, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		m = pm
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}

// NewTokenManager builds the token engine from the configured secrets and TTLs.
func NewTokenManager(c *config.Config) (*auth.TokenManager, error) {
	return auth.NewTokenManager(
		[]byte(c.AccessSecretKey),
		[]byte(c.RefreshSecretKey),
		c.AccessTokenValidityDuration,
		c.RefreshTokenValidityDuration,
	)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := NewLogger(c)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos, err := OpenRepositories(ctx, c)
	if err != nil {
		return nil, err
	}

	tokens, err := NewTokenManager(c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("token manager init error: %w", err)
	}

	app := &App{config: c, logger: logger, repos: repos, tokens: tokens}

	opts := []services.Option{services.WithLogger(logger)}
	if c.RedisAddr != "" && c.LoginMaxAttempts > 0 {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})

		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := app.redis.Ping(pctx).Err(); err != nil {
			logger.Warn(ctx, "redis unavailable, login throttle will fail open", "addr", c.RedisAddr, "error", err)
		}
		cancel()

		opts = append(opts, services.WithLoginThrottle(ratelimit.NewLoginLimiter(app.redis, c.LoginMaxAttempts, c.LoginWindow)))
	}

	app.userService = services.NewUserService(repos, tokens, cryptox.NewHasher(cryptox.DefaultParams()), opts...)
	app.linkService = services.NewShareLinkService(repos, c.FrontendURL, opts...)

	if c.AdminUsername != "" {
		u, created, err := app.userService.EnsureAdmin(ctx, c.AdminUsername, c.AdminEmail, c.AdminPassword)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("admin bootstrap error: %w", err)
		}
		logger.Info(ctx, "bootstrap admin ready", "username", u.Username, "created", created)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(httpapi.Options{
		Users:       app.userService,
		Links:       app.linkService,
		Tokens:      app.tokens,
		Logger:      app.logger,
		FrontendURL: app.config.FrontendURL,
		Development: app.config.IsDevelopment(),
	})

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, router)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.repos, app.config.HealthProbeInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or one of
// the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err)
		}
	}
	if err := app.repos.Close(); err != nil {
		app.logger.Warn(ctx, "storage close error", "error", err)
	}
}
