package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/microblog/internal/auth"
	"github.com/example/microblog/internal/config"
	"github.com/example/microblog/internal/handlers"
	"github.com/example/microblog/internal/platform/db"
	"github.com/example/microblog/internal/platform/httpserver"
	"github.com/example/microblog/internal/platform/logging"
	"github.com/example/microblog/internal/platform/natsconn"
	"github.com/example/microblog/internal/platform/run"
	"github.com/example/microblog/internal/publisher"
	"github.com/example/microblog/internal/ratelimit"
	"github.com/example/microblog/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.App.LogLevel, "microblog")
	if err != nil {
		panic(err)
	}
	users, posts, ready, closeStores := initStores(log, cfg)

	// run.Exit skips deferred calls, so cleanup is explicit on every path.
	shutdown := func() {
		if closeStores != nil {
			closeStores()
		}
		_ = log.Sync()
	}

	limiter, err := ratelimit.New(cfg.Redis.DSN, cfg.RateLimit.Max, cfg.RateLimit.Window, cfg.App.IsProd())
	if err != nil {
		log.Error("rate limiter", zap.Error(err))
		shutdown()
		run.Exit(1)
	}
	log.Info("rate limiter initialised",
		zap.Bool("redis", cfg.Redis.DSN != ""),
		zap.Int("max", cfg.RateLimit.Max),
		zap.Duration("window", cfg.RateLimit.Window),
	)

	pub, err := publisher.New(natsconn.Options{
		URL:           cfg.NATS.URL,
		MaxReconnects: cfg.NATS.MaxReconnects,
		ReconnectWait: cfg.NATS.ReconnectWait,
	}, log)
	if err != nil {
		if cfg.App.IsProd() {
			log.Error("NATS is required in production", zap.Error(err))
			shutdown()
			run.Exit(1)
		}
		log.Warn("NATS unavailable, feed invalidation events will not be published", zap.Error(err))
		pub, _ = publisher.New(natsconn.Options{}, log) // stub
	}

	verifier := auth.SessionVerifier{Secret: []byte(cfg.Session.JWTSecret)}
	webhook := handlers.NewWebhookHandler(cfg.Webhook.SigningSecret, log, users, pub)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: ready})

	r.Post("/v1/clerk/webhook", webhook.ServeHTTP)

	// Feed and profile reads are public; posting requires a session.
	r.Get("/v1/posts", handlers.ListPosts(posts, users, cfg.Feed.Limit, log))
	r.Get("/v1/posts/{post_id}", handlers.GetPost(posts, users, log))
	r.Get("/v1/users/{user_id}/posts", handlers.ListPostsByAuthor(posts, users, log))
	r.Get("/v1/users/by-username/{username}", handlers.GetUserByUsername(users, log))
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(verifier))
		r.Post("/v1/posts", handlers.CreatePost(posts, limiter, pub, log))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: "microblog", Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	shutdown()
	run.Exit(code)
}

// initStores selects the persistence backend. In production
// (APP_ENV=production) a working Postgres connection is required and the
// process terminates otherwise.
func initStores(log *zap.Logger, cfg config.Config) (store.UserStore, store.PostStore, func() error, func()) {
	if cfg.DB.URL == "" {
		if cfg.App.IsProd() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		return store.NewInMemoryUserStore(), store.NewInMemoryPostStore(), nil, nil
	}

	pool, err := db.Open(context.Background(), cfg.DB.URL)
	if err != nil {
		if cfg.App.IsProd() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory stores", zap.Error(err))
		return store.NewInMemoryUserStore(), store.NewInMemoryPostStore(), nil, nil
	}

	log.Info("stores: postgres")
	ready := func() error { return pool.Ping(context.Background()) }
	return store.NewPostgresUserStore(pool), store.NewPostgresPostStore(pool), ready, pool.Close
}
