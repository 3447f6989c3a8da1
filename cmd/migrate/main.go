package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"go-gin-contacts/internal/core/config"
	"go-gin-contacts/internal/core/logger"
	"go-gin-contacts/internal/migrations"
)

// 用法：migrate [-config path] up|down|status|version|redo|reset
func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "config file")
	timeout := flag.Duration("timeout", time.Minute, "migration timeout")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(*cfgPath)
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	if cfg.DB.Driver != "postgres" {
		log.Fatal("migrations only support postgres", zap.String("driver", cfg.DB.Driver))
	}
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	db, err := sql.Open("pgx", cfg.DB.DSN)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(zap.NewStdLog(log))
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose dialect", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := goose.RunContext(ctx, command, db, ".", flag.Args()[min(1, flag.NArg()):]...); err != nil {
		log.Fatal("migrate failed", zap.String("command", command), zap.Error(err))
	}
	log.Info("migrate done", zap.String("command", command))
}
