/*
 * @module service/init
 * @description 服务初始化模块，负责报表规范、指标、事件发布与限流器等全局依赖的建立
 * @architecture 分层架构 - 服务层
 * @documentReference SPEC_FULL.md
 * @stateFlow 应用启动时执行初始化流程，关闭时释放外部连接
 * @rules
 *   - Redis、Kafka、MQTT 连接失败时降级运行并记录警告，不阻止服务启动
 *   - 报表规范与指标初始化失败时返回错误
 * @dependencies github.com/prometheus/client_golang, service/config, service/event, service/rate_limiter
 * @refs main.go, api/routes.go
 */

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"reportverify-service/service/config"
	"reportverify-service/service/event"
	"reportverify-service/service/meta"
	"reportverify-service/service/metrics"
	"reportverify-service/service/rate_limiter"
)

// 事件发布队列配置
const (
	eventQueueSize      = 256
	eventPublishTimeout = 10 * time.Second
)

var (
	GlobalConfig      *config.Config
	GlobalRegistry    *meta.Registry
	GlobalMetrics     *metrics.Metrics
	GlobalPublisher   event.Publisher = event.NopPublisher{}
	GlobalRateLimiter *rate_limiter.RedisRateLimiter
)

// Init 初始化全局服务
func Init(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) error {
	GlobalConfig = cfg
	GlobalRegistry = meta.DefaultRegistry()

	m, err := metrics.NewMetrics(reg)
	if err != nil {
		return err
	}
	GlobalMetrics = m
	if err := metrics.RegisterBuildInfo(reg); err != nil {
		return err
	}

	initPublisher(cfg)
	initRateLimiter(ctx, cfg)

	slog.Info("服务初始化完成",
		"report_types", len(GlobalRegistry.Types()),
		"rate_limit", GlobalRateLimiter != nil)
	return nil
}

// initPublisher 初始化验证事件发布
func initPublisher(cfg *config.Config) {
	pub, err := event.New(event.Options{
		KafkaBrokers: cfg.Kafka.Brokers,
		KafkaTopic:   cfg.Kafka.Topic,
		MQTTBroker:   cfg.MQTT.Broker,
		MQTTTopic:    cfg.MQTT.Topic,
		MQTTClientID: cfg.MQTT.ClientID,
		MQTTQoS:      cfg.MQTT.QoS,
	}, slog.Default())
	if err != nil {
		slog.Warn("部分事件发布目标初始化失败", "error", err)
	}
	if _, nop := pub.(event.NopPublisher); nop {
		GlobalPublisher = pub
		return
	}
	GlobalPublisher = event.NewAsyncPublisher(pub, eventQueueSize, eventPublishTimeout, slog.Default())
}

// initRateLimiter 初始化上传限流器
func initRateLimiter(ctx context.Context, cfg *config.Config) {
	if !cfg.RateLimit.Enabled {
		return
	}
	limiter, err := rate_limiter.NewRedisRateLimiter(ctx, rate_limiter.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Warn("Redis限流器初始化失败，停用上传限流", "error", err)
		return
	}
	GlobalRateLimiter = limiter
}

// 依赖状态
const (
	DependencyOK       = "ok"
	DependencyDisabled = "disabled"
)

// readyTimeout 就绪检查中单一依赖的超时时间
const readyTimeout = 2 * time.Second

// CheckDependencies 检查外部依赖的连接状态，未启用的依赖标记为 disabled
func CheckDependencies(ctx context.Context) map[string]string {
	status := map[string]string{"redis": DependencyDisabled}
	if GlobalRateLimiter != nil {
		pingCtx, cancel := context.WithTimeout(ctx, readyTimeout)
		defer cancel()
		if err := GlobalRateLimiter.Ping(pingCtx); err != nil {
			status["redis"] = err.Error()
		} else {
			status["redis"] = DependencyOK
		}
	}

	status["events"] = DependencyDisabled
	if _, nop := GlobalPublisher.(event.NopPublisher); !nop && GlobalPublisher != nil {
		status["events"] = DependencyOK
	}
	return status
}

// Shutdown 关闭外部连接
func Shutdown() error {
	var errs []error
	if GlobalPublisher != nil {
		errs = append(errs, GlobalPublisher.Close())
	}
	if GlobalRateLimiter != nil {
		errs = append(errs, GlobalRateLimiter.Close())
	}
	return errors.Join(errs...)
}
