package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/cache"
	"github.com/oggyb/blinder/internal/config"
	"github.com/oggyb/blinder/internal/db"
	"github.com/oggyb/blinder/internal/logger"
	"github.com/oggyb/blinder/internal/observability"
	"github.com/oggyb/blinder/internal/router"
	"github.com/oggyb/blinder/internal/server"
	"github.com/oggyb/blinder/internal/service/explore"
	"github.com/oggyb/blinder/internal/service/match"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFrom(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "err", err)
		}
	}()

	database, err := db.NewDB(cfg)
	if err != nil {
		return err
	}

	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		return err
	}

	appCtx := app.New(database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	grpcSrv := server.NewGRPCServer(log,
		explore.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
	)
	httpSrv := server.NewHTTPServer(cfg, router.New(cfg, appCtx, router.NewServices(appCtx)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		return server.ServeGRPC(gctx, cfg, grpcSrv)
	})
	g.Go(func() error {
		log.Info("starting HTTP server", "addr", httpSrv.Addr)
		return server.ServeHTTP(gctx, httpSrv)
	})

	err = g.Wait()
	log.Info("shutdown complete")
	return err
}
