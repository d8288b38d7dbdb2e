package cli

import (
	"context"

	"go.uber.org/zap"

	"hr-lms/backend/config"
	"hr-lms/backend/internal/repository"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/database"
	applogger "hr-lms/backend/pkg/logger"
	"hr-lms/backend/pkg/redis"
)

// Runtime 命令执行所需的依赖
type Runtime struct {
	Engine     service.DerivationEngine
	Dispatcher service.NeedDispatcher
	Close      func()
}

// RuntimeOpener 按全局参数装配 Runtime
type RuntimeOpener func(ctx context.Context, opts *RootOptions) (*Runtime, error)

// OpenRuntime 加载配置、连接数据库并执行迁移，Redis 可选
func OpenRuntime(ctx context.Context, opts *RootOptions) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	} else if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	cfg.Log.Format = "console"

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		sqlDB.Close()
		return nil, err
	}

	// Redis 仅用于缓存最近一次重建报告，连接失败不影响命令执行
	var reports service.RebuildReportStore
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，重建报告将不会缓存", zap.Error(err))
	} else {
		reports = rdb
	}

	svc := service.NewService(cfg, repository.NewRepository(db), reports, nil, logger)

	return &Runtime{
		Engine:     svc.Engine,
		Dispatcher: svc.Dispatcher,
		Close: func() {
			if rdb != nil {
				rdb.Close()
			}
			sqlDB.Close()
			logger.Sync()
		},
	}, nil
}

func openOrExit(ctx context.Context, opts *RootOptions, open RuntimeOpener) (*Runtime, error) {
	rt, err := open(ctx, opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "初始化失败", err)
	}
	return rt, nil
}
