package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"physician-service/internal/core/cache"
	"physician-service/internal/core/config"
	"physician-service/internal/core/database"
	"physician-service/internal/core/logger"
	"physician-service/internal/domain"
	"physician-service/internal/feature/physician"
	"physician-service/internal/repo"
	"physician-service/internal/service"
	"physician-service/internal/transport/http/router"
)

// App 两个可执行文件共用的依赖装配结果
type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB     // memory 驱动时为 nil
	Cache *cache.Cache // 未配置 redis 时为 nil
	Repo  domain.PhysicianRepository
	Read  *service.ReadService
	Write *service.WriteService
}

// New 按配置打开存储与缓存并组装服务；返回的 cleanup 负责关闭连接
func New(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	a := &App{Cfg: cfg, Log: log}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DB.Driver == "memory" {
		a.Repo = repo.NewMemoryPhysicianRepo()
		log.Warn("using in-memory physician store, data is lost on exit")
	} else {
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.DB.Driver,
			DSN:                cfg.DB.DSN,
			Username:           cfg.DB.Username,
			Password:           cfg.DB.Password,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
			LogLevel:           cfg.DB.LogLevel,
			SlowThresholdMs:    cfg.DB.SlowThresholdMs,
			LogWriter:          logger.ToWriter(log.Named("gorm"), zapcore.WarnLevel),
			Log:                log,
		})
		if err != nil {
			return nil, cleanup, fmt.Errorf("open db: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		log.Info("database connected", zap.String("driver", cfg.DB.Driver))

		if cfg.DB.AutoMigrate {
			if err := db.AutoMigrate(physician.Models()...); err != nil {
				return nil, cleanup, fmt.Errorf("automigrate: %w", err)
			}
			log.Info("automigrate done")
		}
		a.DB = db
		a.Repo = repo.NewPhysicianRepo(db)
	}

	t := service.Timeouts{Short: cfg.Timeouts.Short(), Long: cfg.Timeouts.Long()}
	var readOpts []service.ReadOption
	var writeOpts []service.WriteOption
	if cfg.Redis.Addr != "" {
		a.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		closers = append(closers, func() { _ = a.Cache.Close() })
		ttl := time.Duration(cfg.Redis.TTLSec) * time.Second
		readOpts = append(readOpts, service.WithCache(a.Cache, ttl))
		writeOpts = append(writeOpts, service.WithCacheEviction(a.Cache))
		log.Info("physician cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", ttl))
	}

	a.Read = service.NewReadService(a.Repo, service.NewQueryBuilder(), t, log.Named("read"), readOpts...)
	a.Write = service.NewWriteService(a.Repo, service.NewValidator(), t, log.Named("write"), writeOpts...)
	return a, cleanup, nil
}

// Checks 就绪探针依赖
func (a *App) Checks() map[string]router.Check {
	checks := map[string]router.Check{}
	if a.DB != nil {
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if a.Cache != nil {
		checks["redis"] = a.Cache.Ping
	}
	return checks
}

// Limits 配置 -> 路由入口保护参数
func Limits(cfg *config.Config) router.Limits {
	return router.Limits{
		RatePerSec:     cfg.Limits.RatePerSec,
		Burst:          cfg.Limits.Burst,
		MaxConcurrent:  cfg.Limits.MaxConcurrent,
		MaxBodyBytes:   cfg.Limits.MaxBodyBytes,
		RequestTimeout: time.Duration(cfg.Limits.RequestTimeoutMs) * time.Millisecond,
	}
}

// NewLogger 按配置构建 zap（可选文件切割）
func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	l, closer := logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON,
		cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
	return l.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env)), closer
}
