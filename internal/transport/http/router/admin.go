package router

import (
	"github.com/gin-gonic/gin"

	"go-gin-contacts/internal/core/server"
	"go-gin-contacts/internal/domain"
	"go-gin-contacts/internal/transport/http/handler"
	mdw "go-gin-contacts/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{
		AllowOrigins:   d.Cfg.CORS.AllowOrigins,
		SkipLogPaths:   []string{"/health"},
		TrustedProxies: d.Cfg.App.HTTP.TrustedProxies,
	})
	r.Use(common(d)...)
	r.Use(mdw.Recovery(d.Log))

	r.GET("/health", health(d))

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, d.Users, d.Log, domain.RoleAdmin))
	handler.NewAdminHandler(d.UserRepo, d.Contacts).Mount(admin)

	return r
}
