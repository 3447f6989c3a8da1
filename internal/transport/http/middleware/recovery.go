package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "go-gin-contacts/internal/transport/http/response"
)

// Recovery panic 转 500 信封，ginzap.RecoveryWithZap 之外的兜底（admin 引擎使用）
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered", zap.Any("panic", rec), zap.String("path", c.Request.URL.Path))
				resp.Abort(c, resp.CodeServerError, "internal error")
			}
		}()
		c.Next()
	}
}
