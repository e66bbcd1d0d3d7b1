package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/saa-academy/portal/internal/api"
	"github.com/saa-academy/portal/internal/core/ports"
	"github.com/saa-academy/portal/internal/core/service"
	"github.com/saa-academy/portal/internal/infrastructure/backend"
	"github.com/saa-academy/portal/internal/infrastructure/config"
	mongodb "github.com/saa-academy/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/saa-academy/portal/internal/infrastructure/db/redis"
	"github.com/saa-academy/portal/internal/infrastructure/queue"
	"github.com/saa-academy/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "portal"})
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Service: "portal", Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	if err := cfg.ValidatePortal(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		PoolSize:  cfg.Redis.PoolSize,
		OpTimeout: cfg.Session.LoadTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	var (
		audit ports.AuditRecorder = queue.Discard{}
		db    *mongo.Database
	)
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "academy-portal",
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Warn().Err(err).Msg("mongo unavailable, audit trail disabled")
	} else {
		defer client.Disconnect(context.Background())
		dispatcher := queue.NewDispatcher(cfg.Audit.Workers, mongodb.NewAuditRepository(db), log)
		dispatcher.Start(ctx)
		audit = dispatcher
	}

	sessions := service.NewSessionService(
		redisdb.NewIdentityStore(rdb, cfg.Session.TTL),
		backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout),
		cfg.Session.LoadTimeout,
		log,
	)

	e, err := api.NewRouter(api.PortalDeps{
		Config:   cfg,
		Sessions: sessions,
		Audit:    audit,
		Mongo:    db,
		Redis:    rdb,
		Log:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.URL).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("portal stopped")
		os.Exit(1)
	}
	log.Info().Msg("portal stopped")
}
