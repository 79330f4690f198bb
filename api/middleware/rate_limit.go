/*
 * @module api/middleware/rate_limit
 * @description 上传限流中间件，依客户端地址与全局配额限制验证请求频率
 * @architecture 中间件模式 - HTTP请求拦截
 * @documentReference SPEC_FULL.md
 * @stateFlow 提取客户端地址 -> 限流检查 -> 写入限流响应头 -> 下一个处理器或 429
 * @rules 限流服务异常时放行请求并记录警告日志
 * @dependencies github.com/go-chi/render, service/rate_limiter
 * @refs api/routes.go, service/rate_limiter/redis_rate_limiter.go
 */

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"reportverify-service/service/rate_limiter"
)

// RateLimitChecker 限流检查器
type RateLimitChecker interface {
	CheckRateLimit(ctx context.Context, rules []rate_limiter.RateLimitRule) (*rate_limiter.RateLimitResult, error)
}

// RateLimitConfig 限流中间件配置
type RateLimitConfig struct {
	Window       time.Duration
	MaxPerClient int
	MaxGlobal    int
}

// RateLimit 创建限流中间件
func RateLimit(checker RateLimitChecker, cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rules := rate_limiter.UploadRules(clientID(r), cfg.Window, cfg.MaxPerClient, cfg.MaxGlobal)
			result, err := checker.CheckRateLimit(r.Context(), rules)
			if err != nil {
				slog.Warn("限流检查失败，放行请求", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			if result.Limit >= 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))
			}

			if !result.Allowed {
				if wait := result.ResetAt - time.Now().Unix(); wait > 0 {
					w.Header().Set("Retry-After", strconv.FormatInt(wait, 10))
				}
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, map[string]interface{}{
					"status": http.StatusTooManyRequests,
					"msg":    result.Message,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientID 取得客户端地址，RemoteAddr 由 chi RealIP 中间件改写
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
