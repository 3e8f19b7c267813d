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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"physician-service/internal/app"
	"physician-service/internal/core/config"
	"physician-service/internal/core/server"
	"physician-service/internal/transport/http/handler"
	"physician-service/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "admin",
		Short:        "Physician service administration",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap 读取配置并装配依赖
func bootstrap(cmd *cobra.Command) (*app.App, func(), error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, func() {}, err
	}
	log, flush := app.NewLogger(cfg)
	a, cleanup, err := app.New(cfg, log)
	return a, func() { cleanup(); flush() }, err
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the admin server (health, readiness, metrics, physician list)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			defer cleanup()
			if err != nil {
				return err
			}
			log := a.Log
			cfg := a.Cfg

			router.Register(handler.NewPhysicianHandler(a.Read, a.Write, log.Named("admin")))
			r := router.NewAdminEngine(log, a.Checks())

			addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
			srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second, log)

			baseURL := server.BaseURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
			log.Info("admin api starting",
				zap.String("addr", addr),
				zap.String("health", baseURL+"/health"),
				zap.String("ready", baseURL+"/ready"),
				zap.String("metrics", baseURL+"/metrics"),
				zap.String("admin_v1", baseURL+"/admin/v1"),
			)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			select {
			case err := <-errCh:
				if err != nil {
					log.Error("admin api start FAILED", zap.Error(err))
					return err
				}
			case <-ctx.Done():
			}

			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
			log.Info("admin api stopped gracefully")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample physicians (existing emails are skipped)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			defer cleanup()
			if err != nil {
				return err
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			n, err := app.Seed(ctx, a.Write, a.Log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d physicians\n", n)
			return nil
		},
	}
	cmd.Flags().Duration("timeout", 30*time.Second, "Overall timeout for seeding")
	return cmd
}
