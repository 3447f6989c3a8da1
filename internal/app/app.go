package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-contacts/internal/core/auth"
	"go-gin-contacts/internal/core/cache"
	"go-gin-contacts/internal/core/config"
	"go-gin-contacts/internal/core/database"
	"go-gin-contacts/internal/core/mail"
	"go-gin-contacts/internal/core/ratelimit"
	"go-gin-contacts/internal/core/storage"
	"go-gin-contacts/internal/repo"
	"go-gin-contacts/internal/service"
	"go-gin-contacts/internal/transport/http/router"
)

// App 两个进程（用户端/管理端）共用的依赖
type App struct {
	Deps  router.Deps
	DB    *gorm.DB
	Redis *redis.Client
}

func NewJWTer(c config.JWT) *auth.JWTer {
	return &auth.JWTer{
		Secret:     []byte(c.Secret),
		Issuer:     c.Issuer,
		TTL:        time.Duration(c.AccessTokenTTLMin) * time.Minute,
		RefreshTTL: time.Duration(c.RefreshTokenTTLDay) * 24 * time.Hour,
		EmailTTL:   time.Duration(c.EmailTokenTTLHour) * time.Hour,
	}
}

func OpenDB(c config.DB) (*gorm.DB, error) {
	return database.NewGorm(database.Opts{
		Driver:             c.Driver,
		DSN:                c.DSN,
		Username:           c.Username,
		Password:           c.Password,
		MaxOpenConns:       c.MaxOpenConns,
		MaxIdleConns:       c.MaxIdleConns,
		ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
		LogLevel:           c.LogLevel,
	})
}

// New 连接 DB/Redis 并组装依赖；redis/smtp/s3 未配置时降级
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
		log.Info("automigrate done")
	}

	a := &App{DB: db}
	opts := service.Options{CacheTTL: time.Duration(cfg.Redis.UserCacheTTLSec) * time.Second}
	var limiter *ratelimit.Limiter

	if cfg.Redis.Addr != "" {
		a.Redis = cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		c := cache.New(a.Redis, cfg.App.Name+":")
		if err := c.Ping(ctx); err != nil {
			log.Warn("redis unreachable, cache and shared ratelimit may degrade", zap.Error(err))
		}
		opts.Cache = c
		limiter = ratelimit.New(a.Redis, cfg.App.Name+":ratelimit:", cfg.RateLimit.Times,
			time.Duration(cfg.RateLimit.Seconds)*time.Second)
	} else {
		log.Warn("redis not configured, user cache disabled")
	}

	if cfg.Mail.Host != "" {
		opts.Mailer = mail.NewSMTP(cfg.Mail, cfg.App.BaseURL, log)
	}

	if cfg.S3.Bucket != "" {
		store, err := storage.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		opts.Store = store
	} else {
		log.Warn("s3 not configured, avatar upload disabled")
	}

	jwter := NewJWTer(cfg.JWT)
	userRepo := repo.NewUserRepo(db)
	a.Deps = router.Deps{
		Log:      log,
		Cfg:      cfg,
		JWT:      jwter,
		Users:    service.NewUserService(userRepo, jwter, log, opts),
		UserRepo: userRepo,
		Contacts: repo.NewContactRepo(db),
		Limiter:  limiter,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
