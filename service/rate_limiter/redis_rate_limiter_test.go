/*
 * @module service/rate_limiter/redis_rate_limiter_test
 * @description Redis限流器单元测试，Redis不可用时跳过依赖Redis的测试
 * @architecture 测试层
 * @documentReference SPEC_FULL.md
 */

package rate_limiter

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis 设置测试用Redis环境，每个测试使用独立的Key前缀
func setupTestRedis(t *testing.T) *RedisRateLimiter {
	t.Helper()
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	limiter, err := NewRedisRateLimiter(context.Background(), Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err != nil {
		t.Skipf("Redis不可用，跳过测试: %v", err)
	}
	limiter.prefix = "reportverify:test:" + uuid.NewString()
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := limiter.client.Keys(ctx, limiter.prefix+":*").Result()
		if len(keys) > 0 {
			limiter.client.Del(ctx, keys...)
		}
		limiter.Close()
	})
	return limiter
}

func TestCheckRateLimit_SingleRule_Success(t *testing.T) {
	limiter := setupTestRedis(t)

	rule := RateLimitRule{Type: LimitTypeGlobal, TimeWindow: time.Minute, MaxRequests: 10}
	result, err := limiter.checkSingleRule(context.Background(), rule)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "第一次请求应该被允许")
	assert.Equal(t, 10, result.Limit)
	assert.Equal(t, 9, result.Remaining)
	assert.Equal(t, LimitTypeGlobal, result.RateLimitType)
}

func TestCheckRateLimit_SingleRule_RateLimited(t *testing.T) {
	limiter := setupTestRedis(t)
	ctx := context.Background()

	rule := RateLimitRule{Type: LimitTypeClient, TargetID: "10.0.0.1", TimeWindow: 10 * time.Second, MaxRequests: 5}
	for i := 0; i < 5; i++ {
		result, err := limiter.checkSingleRule(ctx, rule)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "第%d次请求应该被允许", i+1)
		assert.Equal(t, 5-i-1, result.Remaining)
	}

	result, err := limiter.checkSingleRule(ctx, rule)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "第6次请求应该被限流")
	assert.Equal(t, 0, result.Remaining)
	assert.Contains(t, result.Message, "客户端限流限制")
}

func TestCheckRateLimit_MultipleRules_Priority(t *testing.T) {
	limiter := setupTestRedis(t)
	ctx := context.Background()
	rules := UploadRules("10.0.0.2", time.Minute, 3, 100)

	for i := 0; i < 3; i++ {
		result, err := limiter.CheckRateLimit(ctx, rules)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, LimitTypeClient, result.RateLimitType, "剩余数较少的客户端规则应作为返回结果")
	}

	result, err := limiter.CheckRateLimit(ctx, rules)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, LimitTypeClient, result.RateLimitType, "应该是客户端层触发限流")

	// 被客户端层拒绝的请求不消耗全局配额
	stats, err := limiter.GetStats(ctx, rules[0])
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Current)
}

func TestCheckRateLimit_NoRules(t *testing.T) {
	limiter := NewWithClient(nil)

	result, err := limiter.CheckRateLimit(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, "none", result.RateLimitType)
	assert.Equal(t, -1, result.Limit)
}

func TestCheckRateLimit_InvalidRule(t *testing.T) {
	limiter := NewWithClient(nil)
	ctx := context.Background()

	_, err := limiter.CheckRateLimit(ctx, []RateLimitRule{{Type: LimitTypeGlobal, TimeWindow: 500 * time.Millisecond, MaxRequests: 1}})
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = limiter.CheckRateLimit(ctx, []RateLimitRule{{Type: LimitTypeGlobal, TimeWindow: time.Second}})
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestCheckRateLimit_NextWindow(t *testing.T) {
	limiter := setupTestRedis(t)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return base }

	rule := RateLimitRule{Type: LimitTypeClient, TargetID: "10.0.0.3", TimeWindow: 2 * time.Second, MaxRequests: 3}
	for i := 0; i < 3; i++ {
		_, err := limiter.checkSingleRule(ctx, rule)
		require.NoError(t, err)
	}
	result, err := limiter.checkSingleRule(ctx, rule)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	// 进入下一个窗口后重新计数
	limiter.now = func() time.Time { return base.Add(2 * time.Second) }
	result, err = limiter.checkSingleRule(ctx, rule)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "窗口推进后应该允许请求")
	assert.Equal(t, 2, result.Remaining)
}

func TestGetStatsAndReset(t *testing.T) {
	limiter := setupTestRedis(t)
	ctx := context.Background()
	rule := RateLimitRule{Type: LimitTypeClient, TargetID: "10.0.0.4", TimeWindow: time.Minute, MaxRequests: 10}

	for i := 0; i < 4; i++ {
		_, err := limiter.checkSingleRule(ctx, rule)
		require.NoError(t, err)
	}

	stats, err := limiter.GetStats(ctx, rule)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Current)
	assert.Equal(t, 6, stats.Remaining)
	assert.Positive(t, stats.TTL)

	require.NoError(t, limiter.ResetRateLimit(ctx, rule))
	stats, err = limiter.GetStats(ctx, rule)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Current)
}

func TestConcurrentRateLimitCheck(t *testing.T) {
	limiter := setupTestRedis(t)
	ctx := context.Background()
	rule := RateLimitRule{Type: LimitTypeGlobal, TimeWindow: time.Minute, MaxRequests: 50}

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				result, err := limiter.checkSingleRule(ctx, rule)
				if err == nil && result.Allowed {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowed.Load(), "并发请求下允许数量应等于限制数")
}

func TestUploadRules(t *testing.T) {
	tests := []struct {
		name      string
		clientID  string
		perClient int
		global    int
		wantTypes []string
	}{
		{name: "全局与客户端", clientID: "ip", perClient: 5, global: 100, wantTypes: []string{LimitTypeGlobal, LimitTypeClient}},
		{name: "只有客户端", clientID: "ip", perClient: 5, wantTypes: []string{LimitTypeClient}},
		{name: "缺少客户端标识", perClient: 5, global: 100, wantTypes: []string{LimitTypeGlobal}},
		{name: "没有规则", clientID: "ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := UploadRules(tt.clientID, time.Minute, tt.perClient, tt.global)
			var types []string
			for _, r := range rules {
				types = append(types, r.Type)
			}
			assert.Equal(t, tt.wantTypes, types)
		})
	}
}

func TestSortRulesByPriority(t *testing.T) {
	rules := []RateLimitRule{
		{Type: LimitTypeGlobal},
		{Type: LimitTypeClient, TargetID: "a"},
		{Type: LimitTypeClient, TargetID: "b"},
	}

	sorted := sortRulesByPriority(rules)
	assert.Equal(t, LimitTypeClient, sorted[0].Type)
	assert.Equal(t, "a", sorted[0].TargetID, "相同优先级保持原顺序")
	assert.Equal(t, "b", sorted[1].TargetID)
	assert.Equal(t, LimitTypeGlobal, sorted[2].Type)
	assert.Equal(t, LimitTypeGlobal, rules[0].Type, "不修改输入")
}

func TestBuildRateLimitKey(t *testing.T) {
	limiter := NewWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}))
	defer limiter.Close()
	limiter.now = func() time.Time { return time.Unix(120, 0) }

	assert.Equal(t, "reportverify:rate_limit:global:2", limiter.buildRateLimitKey(LimitTypeGlobal, "", 60))
	assert.Equal(t, "reportverify:rate_limit:client:10.0.0.1:2", limiter.buildRateLimitKey(LimitTypeClient, "10.0.0.1", 60))
}

func BenchmarkCheckRateLimit(b *testing.B) {
	limiter, err := NewRedisRateLimiter(context.Background(), Options{Addr: "localhost:6379"})
	if err != nil {
		b.Skipf("Redis不可用: %v", err)
	}
	defer limiter.Close()
	limiter.prefix = "reportverify:bench:" + uuid.NewString()

	rule := RateLimitRule{Type: LimitTypeGlobal, TimeWindow: time.Minute, MaxRequests: b.N + 1}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = limiter.checkSingleRule(ctx, rule)
	}
}
