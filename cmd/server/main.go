// Command server runs the KING SOCIAL web backend: the auth session manager
// wired to the remote auth service, and the profile CRUD routes behind the
// auth guard.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kingsocial/authkit/modules/profiles"
	"github.com/kingsocial/authkit/pkg/config"
	"github.com/kingsocial/authkit/pkg/httpserver"
	"github.com/kingsocial/authkit/pkg/logger"
	"github.com/kingsocial/authkit/pkg/pg"
	"github.com/kingsocial/authkit/pkg/redis"
	"github.com/kingsocial/authkit/pkg/session"
	"github.com/kingsocial/authkit/pkg/transport"
	"github.com/kingsocial/authkit/pkg/transport/redisstore"
)

type appConfig struct {
	Auth   transport.Config
	PG     pg.Config
	Redis  redis.Config
	Log    logger.Config
	HTTP   httpserver.Config
	Issuer string `env:"MFA_ISSUER" envDefault:"KING SOCIAL"`

	SessionKey string `env:"SESSION_STORE_KEY" envDefault:"authkit:session"`
	SignInPath string `env:"SIGNIN_PATH" envDefault:"/signin"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, cfg.PG); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	store, err := redisstore.New(redisClient, cfg.SessionKey, redisstore.WithTTL(cfg.Auth.StoreTTL))
	if err != nil {
		return err
	}

	authClient, err := transport.New(cfg.Auth,
		transport.WithSessionStore(store),
		transport.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer authClient.Close()

	manager := session.New(authClient,
		session.WithLogger(log),
		session.WithIssuer(cfg.Issuer),
	)
	if err := manager.Start(ctx); err != nil {
		// A failed initial fetch records an error state; the server can still
		// serve sign-in traffic.
		log.Warn("initial session resolution failed", slog.Any("error", err))
	}
	defer manager.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Method("GET", "/healthz", httpserver.HealthHandler(map[string]httpserver.HealthFunc{
		"postgres": pg.Healthcheck(pool),
		"redis":    redis.Healthcheck(redisClient),
	}))
	r.Mount("/profiles", profiles.NewRouter(
		profiles.NewStorage(pool),
		manager,
		profiles.WithLogger(log),
	))

	srv := httpserver.New(cfg.HTTP, r, httpserver.WithLogger(log))
	return srv.Run(ctx)
}
