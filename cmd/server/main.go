package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-manager/internal/config"
	"github.com/iliyamo/movie-manager/internal/database"
	"github.com/iliyamo/movie-manager/internal/handler"
	"github.com/iliyamo/movie-manager/internal/middleware"
	"github.com/iliyamo/movie-manager/internal/queue"
	"github.com/iliyamo/movie-manager/internal/repository"
	"github.com/iliyamo/movie-manager/internal/router"
	"github.com/iliyamo/movie-manager/internal/service"
	"github.com/iliyamo/movie-manager/internal/store"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("read .env")
	}
	cfg := config.Load()
	setupLogging(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Params{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	}

	storeCfg := config.LoadStoreConfig()
	provider := newProvider(storeCfg, db, rdb)

	var (
		events    handler.EventEmitter
		publisher *service.Publisher
	)
	evCfg := config.LoadEventsConfig()
	if evCfg.Enabled {
		publisher = service.NewPublisher(evCfg.URL, evCfg.Queue)
		events = publisher
	}
	if evCfg.Consumer {
		consumer := &queue.Consumer{URL: evCfg.URL, Queue: evCfg.Queue, LogDir: evCfg.LogDir}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("movie consumer stopped")
			}
		}()
	}

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	users := repository.NewUserRepo(db)
	authH := handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db))
	movieH := handler.NewMovieHandler(provider, events, cache)

	e := newEcho()
	guards := router.Guards{
		JWTSecret: cfg.JWTSecret,
		Active:    handler.ActiveUser(users),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     cache.Middleware(),
	}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, guards)
	router.RegisterAPI(e, authH, movieH, guards)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", storeCfg.Backend).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	provider.Close()
	if publisher != nil {
		publisher.Wait()
	}
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if env == "dev" {
		level = zerolog.DebugLevel
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if lv, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lv != zerolog.NoLevel {
		level = lv
	}
	zerolog.SetGlobalLevel(level)
}

func newProvider(c config.StoreConfig, db *sql.DB, rdb *redis.Client) *store.Provider {
	if c.Backend == config.BackendJSON {
		log.Info().Str("dir", c.DataDir).Msg("movies stored in JSON files")
		return store.NewJSONProvider(c.DataDir)
	}
	opts := store.RemoteOptions{Timeout: c.RemoteTimeout}
	switch c.RemoteBackend {
	case config.RemoteMySQL:
		log.Info().Msg("movies stored in MySQL documents")
		return store.NewRemoteProvider(repository.NewMovieDocumentRepo(db).Collection, opts, c.LoadWait)
	default:
		if rdb == nil {
			log.Fatal().Msg("REMOTE_BACKEND=redis needs a reachable Redis")
		}
		log.Info().Str("prefix", c.RemotePrefix).Msg("movies stored in Redis documents")
		return store.NewRemoteProvider(func(uid uint64) store.DocumentCollection {
			return store.NewRedisCollection(rdb, c.RemotePrefix, uid)
		}, opts, c.LoadWait)
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return xid.New().String() },
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http_request")
			return nil
		},
	}))
	return e
}
