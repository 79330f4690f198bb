/*
 * @module service/rate_limiter/redis_rate_limiter
 * @description 基于Redis的分布式限流服务，限制报表上传验证的请求频率，支持全局与客户端两层限流
 * @architecture 工具层 - 提供分布式限流能力
 * @documentReference SPEC_FULL.md
 * @stateFlow 检查限流规则 -> Redis计数 -> 判断是否超限
 * @rules 使用Redis INCR和EXPIRE实现固定窗口限流，检查与计数在同一个Lua脚本中原子完成
 * @dependencies github.com/go-redis/redis/v8
 * @refs api/middleware/rate_limit.go, main.go
 */

package rate_limiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-redis/redis/v8"
)

// 限流类型
const (
	LimitTypeGlobal = "global"
	LimitTypeClient = "client"
)

// RateLimitResult 限流检查结果
type RateLimitResult struct {
	Allowed       bool   `json:"allowed"`    // 是否允许请求
	Limit         int    `json:"limit"`      // 限制数量
	Remaining     int    `json:"remaining"`  // 剩余数量
	ResetAt       int64  `json:"reset_at"`   // 重置时间（Unix时间戳）
	RateLimitType string `json:"limit_type"` // 限流类型：global/client
	Message       string `json:"message"`    // 提示信息
}

// RateLimitRule 限流规则
type RateLimitRule struct {
	Type        string        // global/client
	TargetID    string        // 客户端标识，全局时为空
	TimeWindow  time.Duration // 时间窗口，以秒为最小单位
	MaxRequests int           // 最大请求数
}

// UsageStats 限流计数快照
type UsageStats struct {
	Type      string `json:"type"`
	TargetID  string `json:"target_id"`
	Current   int    `json:"current"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	TTL       int    `json:"ttl_seconds"`
}

// Options Redis连接配置
type Options struct {
	Addr     string
	Password string
	DB       int
}

// ErrInvalidRule 限流规则无效
var ErrInvalidRule = errors.New("限流规则无效")

// limitScript 原子性限流检查脚本
var limitScript = redis.NewScript(`
	local key = KEYS[1]
	local max_requests = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = redis.call('GET', key)
	if current == false then
		current = 0
	else
		current = tonumber(current)
	end

	if current >= max_requests then
		local ttl = redis.call('TTL', key)
		if ttl < 0 then
			ttl = window
		end
		return {0, current, max_requests, ttl}
	end

	local new_count = redis.call('INCR', key)
	if new_count == 1 then
		redis.call('EXPIRE', key, window)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	return {1, new_count, max_requests, ttl}
`)

// RedisRateLimiter Redis限流器
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRateLimiter 创建Redis限流器并测试连接
func NewRedisRateLimiter(ctx context.Context, opts Options) (*RedisRateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	slog.Info("Redis限流器初始化成功", "redis_addr", opts.Addr, "redis_db", opts.DB)
	return NewWithClient(client), nil
}

// NewWithClient 使用既有Redis客户端创建限流器
func NewWithClient(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: "reportverify:rate_limit",
		now:    time.Now,
	}
}

// UploadRules 上传验证的限流规则，clientID 为空时只使用全局规则
func UploadRules(clientID string, window time.Duration, maxPerClient, maxGlobal int) []RateLimitRule {
	var rules []RateLimitRule
	if maxGlobal > 0 {
		rules = append(rules, RateLimitRule{Type: LimitTypeGlobal, TimeWindow: window, MaxRequests: maxGlobal})
	}
	if clientID != "" && maxPerClient > 0 {
		rules = append(rules, RateLimitRule{Type: LimitTypeClient, TargetID: clientID, TimeWindow: window, MaxRequests: maxPerClient})
	}
	return rules
}

// CheckRateLimit 检查是否超过限流（按优先级检查：客户端 -> 全局）
func (r *RedisRateLimiter) CheckRateLimit(ctx context.Context, rules []RateLimitRule) (*RateLimitResult, error) {
	sortedRules := sortRulesByPriority(rules)

	var strictest *RateLimitResult
	for _, rule := range sortedRules {
		result, err := r.checkSingleRule(ctx, rule)
		if err != nil {
			return nil, err
		}
		if !result.Allowed {
			return result, nil
		}
		if strictest == nil || result.Remaining < strictest.Remaining {
			strictest = result
		}
	}

	if strictest != nil {
		return strictest, nil
	}

	return &RateLimitResult{
		Allowed:       true,
		Limit:         -1,
		Remaining:     -1,
		RateLimitType: "none",
		Message:       "无限流规则",
	}, nil
}

// checkSingleRule 检查单个限流规则
func (r *RedisRateLimiter) checkSingleRule(ctx context.Context, rule RateLimitRule) (*RateLimitResult, error) {
	window, err := windowSeconds(rule)
	if err != nil {
		return nil, err
	}
	key := r.buildRateLimitKey(rule.Type, rule.TargetID, window)

	result, err := limitScript.Run(ctx, r.client, []string{key}, rule.MaxRequests, window).Result()
	if err != nil {
		return nil, fmt.Errorf("限流检查失败: %w", err)
	}

	results, ok := result.([]interface{})
	if !ok || len(results) != 4 {
		return nil, fmt.Errorf("限流检查失败: 非预期的脚本返回值 %v", result)
	}
	allowed := results[0].(int64) == 1
	currentCount := int(results[1].(int64))
	maxRequests := int(results[2].(int64))
	ttl := int(results[3].(int64))

	remaining := maxRequests - currentCount
	if remaining < 0 {
		remaining = 0
	}

	message := "允许请求"
	if !allowed {
		message = fmt.Sprintf("超过%s限流限制", getRateLimitTypeName(rule.Type))
	}

	return &RateLimitResult{
		Allowed:       allowed,
		Limit:         maxRequests,
		Remaining:     remaining,
		ResetAt:       r.now().Add(time.Duration(ttl) * time.Second).Unix(),
		RateLimitType: rule.Type,
		Message:       message,
	}, nil
}

// windowSeconds 校验规则并返回窗口秒数
func windowSeconds(rule RateLimitRule) (int64, error) {
	window := int64(rule.TimeWindow / time.Second)
	if window <= 0 {
		return 0, fmt.Errorf("%w: 时间窗口至少 1 秒: %v", ErrInvalidRule, rule.TimeWindow)
	}
	if rule.MaxRequests <= 0 {
		return 0, fmt.Errorf("%w: 最大请求数必须大于 0: %d", ErrInvalidRule, rule.MaxRequests)
	}
	return window, nil
}

// buildRateLimitKey 构造限流Key，窗口编号随时间推进
func (r *RedisRateLimiter) buildRateLimitKey(limitType, targetID string, window int64) string {
	currentWindow := r.now().Unix() / window

	if limitType == LimitTypeGlobal {
		return fmt.Sprintf("%s:%s:%d", r.prefix, limitType, currentWindow)
	}
	return fmt.Sprintf("%s:%s:%s:%d", r.prefix, limitType, targetID, currentWindow)
}

// sortRulesByPriority 按优先级排序规则：client > global
func sortRulesByPriority(rules []RateLimitRule) []RateLimitRule {
	priorityMap := map[string]int{
		LimitTypeClient: 2,
		LimitTypeGlobal: 1,
	}

	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b RateLimitRule) int {
		return priorityMap[b.Type] - priorityMap[a.Type]
	})
	return sorted
}

// getRateLimitTypeName 获取限流类型名称
func getRateLimitTypeName(limitType string) string {
	switch limitType {
	case LimitTypeGlobal:
		return "全局"
	case LimitTypeClient:
		return "客户端"
	default:
		return "未知"
	}
}

// Ping 检查Redis连接
func (r *RedisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close 关闭Redis客户端
func (r *RedisRateLimiter) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// GetStats 获取限流统计信息
func (r *RedisRateLimiter) GetStats(ctx context.Context, rule RateLimitRule) (*UsageStats, error) {
	window, err := windowSeconds(rule)
	if err != nil {
		return nil, err
	}
	key := r.buildRateLimitKey(rule.Type, rule.TargetID, window)

	current, err := r.client.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	remaining := rule.MaxRequests - current
	if remaining < 0 {
		remaining = 0
	}

	return &UsageStats{
		Type:      rule.Type,
		TargetID:  rule.TargetID,
		Current:   current,
		Limit:     rule.MaxRequests,
		Remaining: remaining,
		TTL:       int(ttl.Seconds()),
	}, nil
}

// ResetRateLimit 重置限流计数（仅用于测试或管理）
func (r *RedisRateLimiter) ResetRateLimit(ctx context.Context, rule RateLimitRule) error {
	window, err := windowSeconds(rule)
	if err != nil {
		return err
	}
	return r.client.Del(ctx, r.buildRateLimitKey(rule.Type, rule.TargetID, window)).Err()
}
