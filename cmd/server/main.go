package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gso-office/backend/config"
	"gso-office/backend/internal/api/handler"
	"gso-office/backend/internal/api/router"
	"gso-office/backend/internal/repository"
	"gso-office/backend/internal/service"
	"gso-office/backend/internal/worker"
	"gso-office/backend/pkg/database"
	"gso-office/backend/pkg/jwt"
	applogger "gso-office/backend/pkg/logger"
	"gso-office/backend/pkg/redis"
	"gso-office/backend/pkg/summarizer"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.App.Location().String()),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level == "debug", logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：未配置或连接失败时降级运行）
	var rdb *redis.Client
	var locker service.Locker
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，黑名单、限流与跨实例锁将不可用", zap.Error(err))
			rdb = nil
		} else {
			locker = rdb
		}
	}

	// 5. 后台任务池与文本生成客户端
	pool := worker.NewPool(&cfg.Worker, logger)
	pool.OnComplete(func(res worker.Result) {
		if res.Err != nil {
			logger.Warn("后台任务失败", zap.String("key", res.Key), zap.Duration("duration", res.Duration), zap.Error(res.Err))
			return
		}
		logger.Debug("后台任务完成", zap.String("key", res.Key), zap.Duration("duration", res.Duration))
	})
	summ := summarizer.NewClient(&cfg.Summarizer, logger)

	// 6. 初始化 JWT 校验器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, service.Deps{
		Summarizer: summ,
		Queue:      pool,
		Locker:     locker,
	}, logger)
	h := handler.NewHandler(svc, cfg.Server.MaxUploadSize)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	// 汇总预览会同步调用文本生成服务，写超时需覆盖其超时
	writeTimeout := 2 * cfg.Summarizer.Timeout
	if writeTimeout < 15*time.Second {
		writeTimeout = 15 * time.Second
	}
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待进行中的描述生成任务
	if err := pool.Shutdown(ctx); err != nil {
		logger.Warn("后台任务未在超时内结束", zap.Error(err))
	}

	// 关闭数据库连接
	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
