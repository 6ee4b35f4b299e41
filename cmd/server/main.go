package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/migrations"
	"github.com/dmitrymomot/identity/modules/account"
	"github.com/dmitrymomot/identity/pkg/auth"
	"github.com/dmitrymomot/identity/pkg/chat"
	"github.com/dmitrymomot/identity/pkg/clientip"
	"github.com/dmitrymomot/identity/pkg/config"
	"github.com/dmitrymomot/identity/pkg/cookie"
	"github.com/dmitrymomot/identity/pkg/environment"
	"github.com/dmitrymomot/identity/pkg/httpserver"
	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/pg"
	"github.com/dmitrymomot/identity/pkg/ratelimiter"
	"github.com/dmitrymomot/identity/pkg/redis"
	"github.com/dmitrymomot/identity/pkg/requestid"
	"github.com/dmitrymomot/identity/pkg/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}
	env := environment.Parse(app.Env)
	ctx = environment.WithContext(ctx, env)

	logOpts := []logger.Option{
		logger.WithEnvironment(env, app.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), environment.LoggerExtractor()),
	}
	if app.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
			return fmt.Errorf("parse LOG_LEVEL: %w", err)
		}
		logOpts = append(logOpts, logger.WithLevel(level))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	// Storage
	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
		return err
	}

	checks := []httpserver.Check{{Name: "postgres", Probe: pg.Healthcheck(pool)}}

	var sessCfg session.Config
	if err := config.Load(&sessCfg); err != nil {
		return err
	}
	secure := sessCfg.SecureCookies || env.IsProduction()

	// Redis backs sessions and sign-in throttling when SESSION_STORE=redis.
	var redisClient *goredis.Client
	if sessCfg.Store == "redis" {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		redisClient, err = redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		checks = append(checks, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(redisClient)})
	}

	var sessStore session.Store
	switch sessCfg.Store {
	case "redis":
		sessStore = session.NewRedisStore(redisClient)
	case "memory":
		sessStore = session.NewMemoryStore()
	default:
		sessStore = session.NewPostgresStore(pool)
	}

	// Sessions and cookies
	var cookieCfg cookie.Config
	if err := config.Load(&cookieCfg); err != nil {
		return err
	}
	cookieCfg.Secure = cookieCfg.Secure || secure
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	sessions := session.NewFromConfig(sessCfg,
		session.WithStore(sessStore),
		session.WithCookieManager(cookies),
		session.WithSecureCookies(secure),
		session.WithLogger(log),
	)
	sessions.StartCleanup(ctx)

	users := auth.NewPostgresUserStore(pool)

	// Downstream chat identity
	var (
		registrar auth.Registrar
		tokens    account.TokenIssuer
	)
	if app.ChatEnabled {
		var chatCfg chat.Config
		if err := config.Load(&chatCfg); err != nil {
			return err
		}
		client, err := chat.New(chatCfg, chat.WithLogger(log))
		if err != nil {
			return err
		}
		registrar = auth.NewChatRegistrar(client)
		tokens = client
	}

	var accountCfg account.Config
	if err := config.Load(&accountCfg); err != nil {
		return err
	}
	accountCfg.SecureCookies = secure

	deps := account.Deps{
		Passwords: auth.NewPasswordService(users, sessions, auth.WithPasswordLogger(log)),
		Resolver:  auth.NewResolver(users, sessions, auth.WithResolverLogger(log)),
		Sessions:  sessions,
		Cookies:   cookies,
		Tokens:    tokens,
	}

	if app.SignInLimit {
		var limitCfg ratelimiter.Config
		if err := config.Load(&limitCfg); err != nil {
			return err
		}
		var limitStore ratelimiter.Store
		if redisClient != nil {
			limitStore = ratelimiter.NewRedisStore(redisClient)
		} else {
			mem := ratelimiter.NewMemoryStore()
			mem.StartCleanup(ctx, limitCfg.RefillInterval)
			limitStore = mem
		}
		deps.SignInLimiter, err = ratelimiter.NewBucket(limitStore, limitCfg)
		if err != nil {
			return err
		}
	}

	if app.GoogleEnabled {
		var googleCfg auth.GoogleOAuthConfig
		if err := config.Load(&googleCfg); err != nil {
			return err
		}
		adapter, err := auth.NewGoogleAdapter(ctx, googleCfg)
		if err != nil {
			return err
		}
		if u, err := url.Parse(googleCfg.RedirectURL); err == nil && u.Path != "" {
			accountCfg.CallbackPath = u.Path
		}
		deps.Federation = auth.NewFederationService(users, sessions, adapter, registrar,
			auth.WithExchangeTimeout(googleCfg.ExchangeTimeout),
			auth.WithFederationLogger(log),
		)
	}

	accounts := account.New(accountCfg, deps,
		account.WithLogger(log),
		account.WithErrorHandler(handler.NewErrorHandler(log)),
	)

	// HTTP
	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		environment.Middleware(env),
		clientip.New(clientip.WithTrustedProxies(app.TrustedProxies...)).Middleware,
	)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, app.HealthTimeout, checks...))
	r.Mount("/", accounts.Handle())

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	log.InfoContext(ctx, "starting",
		slog.String("session_store", sessCfg.Store),
		slog.Bool("google", deps.Federation != nil),
		slog.Bool("chat", registrar != nil),
	)
	return srv.Run(ctx, r)
}
