package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-contacts/internal/core/auth"
	"go-gin-contacts/internal/core/config"
	"go-gin-contacts/internal/core/ratelimit"
	"go-gin-contacts/internal/core/server"
	"go-gin-contacts/internal/domain"
	"go-gin-contacts/internal/service"
	"go-gin-contacts/internal/transport/http/handler"
	mdw "go-gin-contacts/internal/transport/http/middleware"
)

type Deps struct {
	Log      *zap.Logger
	Cfg      *config.Config
	JWT      *auth.JWTer
	Users    *service.UserService
	UserRepo domain.UserRepository
	Contacts domain.ContactRepository
	Limiter  *ratelimit.Limiter // 为空时按进程内限速
	Ping     func(ctx context.Context) error
}

func common(d Deps) []gin.HandlerFunc {
	rl := d.Cfg.RateLimit
	return []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(rl.RPS), rl.Burst),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16 << 20),
		mdw.Timeout(10 * time.Second),
		mdw.Metrics(),
	}
}

func health(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	}
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{
		AllowOrigins:   d.Cfg.CORS.AllowOrigins,
		TrustedProxies: d.Cfg.App.HTTP.TrustedProxies,
	})
	r.Use(common(d)...)
	r.Use(mdw.AccessLog(d.Log))

	r.GET("/health", health(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	rl := d.Cfg.RateLimit
	public := api.Group("")
	if rl.AuthRPS > 0 {
		public.Use(mdw.RateLimitPerIP(rate.Limit(rl.AuthRPS), max(1, rl.AuthBurst)))
	}
	handler.NewAuthHandler(d.Users).Mount(public)

	// 鉴权分组（userId/user/role 由中间件写入）
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, d.Users, d.Log, ""))

	guard := mdw.RouteLimit(d.Limiter, rl.Times, time.Duration(rl.Seconds)*time.Second, d.Log)
	handler.NewUserHandler(d.Users).Mount(authed, guard)
	handler.NewContactHandler(d.Contacts).Mount(authed, guard)

	return r
}
