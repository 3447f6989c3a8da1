package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	AllowOrigins []string // 为空则放开所有来源
	SkipLogPaths []string // 非空时挂 ginzap 请求日志，并跳过这些路径
	// TrustedProxies 可信代理 IP/CIDR；为空时不信任 X-Forwarded-For，ClientIP 取连接地址
	TrustedProxies []string
}

func NewRouter(l *zap.Logger, o Options) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(o.TrustedProxies); err != nil {
		l.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", o.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	if o.SkipLogPaths != nil {
		r.Use(ginzap.GinzapWithConfig(l, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			SkipPaths:  o.SkipLogPaths,
		}))
	}
	r.Use(ginzap.RecoveryWithZap(l, true))
	r.Use(corsMiddleware(o.AllowOrigins))
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// Run 阻塞直到 ctx 结束，随后优雅关闭
func Run(ctx context.Context, srv *http.Server, l *zap.Logger, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		l.Info("http starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	l.Info("http shutting down", zap.String("addr", srv.Addr))
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(sctx)
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
