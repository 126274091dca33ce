package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"noticias/config"
	"noticias/internal/repository"
	"noticias/internal/service"
	"noticias/pkg/database"
	"noticias/pkg/logger"
)

func main() {
	rehash := flag.Bool("rehash", false, "将明文密码转换为 bcrypt 哈希")
	concurrency := flag.Int("concurrency", 4, "并行哈希的协程数")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger := logger.NewLoggerWithConfig(cfg.LogLevel, cfg.LogFile)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMySQLConnection(cfg.Database)
	if err != nil {
		logger.Fatal("无法链接到数据库", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.DB); err != nil {
		logger.Fatal("数据库迁移失败", err)
	}
	logger.Info("数据库迁移完成")

	if !*rehash {
		return
	}

	userRepo := repository.NewUserRepository(db, cfg.Database.QueryTimeout)
	migrator := service.NewCredentialMigrator(userRepo, logger, *concurrency)
	if _, err := migrator.Run(ctx); err != nil {
		logger.Fatal("凭据迁移失败", err)
	}
}
