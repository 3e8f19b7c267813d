package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"physician-service/internal/app"
	"physician-service/internal/core/config"
	"physician-service/internal/core/logger"
	"physician-service/internal/core/server"
	"physician-service/internal/transport/graphql"
	"physician-service/internal/transport/http/handler"
	"physician-service/internal/transport/http/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "physician api:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	log, flush := app.NewLogger(cfg)
	defer flush()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	a, cleanup, err := app.New(cfg, log)
	defer cleanup()
	if err != nil {
		log.Error("bootstrap failed", zap.Error(err))
		return err
	}

	// 模块注册：REST 挂 /api，GraphQL 挂 /graphql
	router.Register(handler.NewPhysicianHandler(a.Read, a.Write, log.Named("rest")))
	router.Register(graphql.NewModule(graphql.NewResolver(a.Read, a.Write, log.Named("graphql"))))
	r := router.NewAPIEngine(log, app.Limits(cfg))

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		log,
	)

	baseURL := server.BaseURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("physician api starting",
		zap.String("addr", addr),
		zap.String("rest", baseURL+"/api"),
		zap.String("graphql", baseURL+"/graphql"),
		zap.String("health", baseURL+"/health"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("physician api stopped with error", zap.Error(err))
		return err
	}
	log.Info("physician api stopped gracefully")
	return nil
}
