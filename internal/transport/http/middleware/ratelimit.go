package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-contacts/internal/core/ratelimit"
	resp "go-gin-contacts/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		rateLimited.WithLabelValues(routeOf(c), "global").Inc()
		resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}

// maxIPBuckets 进程内桶数量上限
const maxIPBuckets = 10000

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipBuckets 按 key 的令牌桶；空闲超过 idle 的桶会被清理（此时桶已回满，删掉不影响限速），
// 数量达到 max 时淘汰最久未访问的
type ipBuckets struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idle      time.Duration
	max       int
	now       func() time.Time
	lastSweep time.Time
	buckets   map[string]*ipBucket
}

func newIPBuckets(rps rate.Limit, burst int) *ipBuckets {
	idle := time.Minute
	if rps > 0 {
		idle = max(idle, time.Duration(float64(burst)/float64(rps)*float64(time.Second)))
	}
	return &ipBuckets{
		rps:     rps,
		burst:   burst,
		idle:    idle,
		max:     maxIPBuckets,
		now:     time.Now,
		buckets: make(map[string]*ipBucket),
	}
}

func (b *ipBuckets) allow(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if now.Sub(b.lastSweep) >= b.idle {
		b.sweep(now)
	}
	e, ok := b.buckets[key]
	if !ok {
		if len(b.buckets) >= b.max {
			b.sweep(now)
			if len(b.buckets) >= b.max {
				b.evictOldest()
			}
		}
		e = &ipBucket{lim: rate.NewLimiter(b.rps, b.burst)}
		b.buckets[key] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1)
}

func (b *ipBuckets) sweep(now time.Time) {
	for k, e := range b.buckets {
		if now.Sub(e.seen) >= b.idle {
			delete(b.buckets, k)
		}
	}
	b.lastSweep = now
}

func (b *ipBuckets) evictOldest() {
	var oldest string
	var at time.Time
	for k, e := range b.buckets {
		if oldest == "" || e.seen.Before(at) {
			oldest, at = k, e.seen
		}
	}
	delete(b.buckets, oldest)
}

// RateLimitPerIP 每 IP 限速（进程内）
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	b := newIPBuckets(rps, burst)
	return func(c *gin.Context) {
		if b.allow(c.ClientIP()) {
			c.Next()
			return
		}
		rateLimited.WithLabelValues(routeOf(c), "ip").Inc()
		resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}

// RouteLimit 单个路由按 IP 限速：times 次 / per，redis 共享计数；
// redis 出错时退回进程内限速
func RouteLimit(lim *ratelimit.Limiter, times int, per time.Duration, l *zap.Logger) gin.HandlerFunc {
	var fallback *ipBuckets
	if times > 0 && per > 0 {
		fallback = newIPBuckets(rate.Limit(float64(times)/per.Seconds()), times)
	}
	return func(c *gin.Context) {
		if fallback == nil {
			c.Next()
			return
		}
		key := c.Request.Method + ":" + routeOf(c) + ":" + c.ClientIP()
		ok, wait := true, per
		if lim == nil {
			ok = fallback.allow(key)
		} else {
			var err error
			ok, wait, err = lim.Allow(c.Request.Context(), key)
			if err != nil {
				l.Warn("redis ratelimit unavailable, using local limiter", zap.Error(err))
				ok, wait = fallback.allow(key), per
			}
		}
		if ok {
			c.Next()
			return
		}
		rateLimited.WithLabelValues(routeOf(c), "route").Inc()
		secs := int(wait.Seconds())
		if wait > time.Duration(secs)*time.Second {
			secs++
		}
		c.Header("Retry-After", strconv.Itoa(max(1, secs)))
		resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}
