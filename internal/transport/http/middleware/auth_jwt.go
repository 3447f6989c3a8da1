package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-contacts/internal/core/auth"
	"go-gin-contacts/internal/domain"
	resp "go-gin-contacts/internal/transport/http/response"
)

// UserLoader 按 id 取用户（service.UserService 带 redis 缓存）
type UserLoader interface {
	CurrentUser(ctx context.Context, id uint) (*domain.User, error)
}

func AuthJWT(j *auth.JWTer, users UserLoader, l *zap.Logger, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.ParseScope(strings.TrimPrefix(ah, "Bearer "), auth.ScopeAccess)
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		uid, err := claims.UserID()
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		u, err := users.CurrentUser(c.Request.Context(), uid)
		if err != nil {
			l.Error("load current user failed", zap.Uint("user_id", uid), zap.Error(err))
			resp.Abort(c, resp.CodeServerError, "")
			return
		}
		if u == nil {
			resp.Abort(c, resp.CodeUnauthorized, "user not found")
			return
		}
		if requireRole != "" && u.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set("claims", claims)
		c.Set("userId", u.ID)
		c.Set("role", u.Role)
		c.Set("user", u)
		c.Next()
	}
}
