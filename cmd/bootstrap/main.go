// Package main 初始化数据库结构、内置书目与管理员账户
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"bookhatch-api/internal/config"
	"bookhatch-api/internal/wire"
	"bookhatch-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	if cfg.Database.Driver != config.DriverPostgres {
		logger.Fatal(ctx, "bootstrap requires postgres", fmt.Errorf("database.driver is %q", cfg.Database.Driver))
	}

	deps, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize data layer", err)
	}
	defer cleanup()

	// 1. 表结构
	if err := deps.Store.PG.AutoMigrate(ctx); err != nil {
		logger.Fatal(ctx, "failed to migrate schema", err)
	}
	logger.Info(ctx, "schema migrated")

	// 2. 内置书目
	n, err := deps.Catalog.Seed(ctx)
	if err != nil {
		logger.Fatal(ctx, "failed to seed catalog", err)
	}
	logger.Info(ctx, "catalog seeded", "inserted", n)

	// 3. 管理员（可选）
	email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Info(ctx, "BOOTSTRAP_ADMIN_EMAIL not set, skipping admin user")
		return
	}
	created, err := deps.Accounts.EnsureAdmin(ctx, email, password)
	if err != nil {
		logger.Fatal(ctx, "failed to ensure admin user", err)
	}
	logger.Info(ctx, "admin user ready", "email", email, "created", created)
}
