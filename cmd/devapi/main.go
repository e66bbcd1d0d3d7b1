package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saa-academy/portal/internal/api"
	"github.com/saa-academy/portal/internal/core/service"
	"github.com/saa-academy/portal/internal/infrastructure/config"
	mongodb "github.com/saa-academy/portal/internal/infrastructure/db/mongo"
	"github.com/saa-academy/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "devapi"})
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Service: "devapi", Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	if err := cfg.ValidateDevAPI(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "academy-devapi",
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer client.Disconnect(context.Background())

	accounts := mongodb.NewAccountRepository(db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure account indexes")
	}

	e := api.NewDevAPIRouter(
		service.NewAccountService(accounts, cfg.DevAPI.JWTSecret, cfg.DevAPI.TokenTTL),
		db,
		cfg.DevAPI.JWTSecret,
		log,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.DevAPI.Port).Msg("devapi listening")
		if err := e.Start(":" + cfg.DevAPI.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error().Err(err).Msg("devapi stopped")
		os.Exit(1)
	}
	log.Info().Msg("devapi stopped")
}
