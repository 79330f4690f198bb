/*
 * @module service/config/config_manager
 * @description 配置加载器，负责读取 YAML 配置文件、套用环境变量覆盖与配置校验
 * @architecture 分层架构 - 基础设施层
 * @documentReference SPEC_FULL.md
 * @stateFlow 默认值 -> 配置文件 -> 环境变量覆盖 -> 配置校验
 * @rules
 *   - 环境变量优先于配置文件，配置文件优先于默认值
 *   - 环境变量格式错误时返回错误，不静默忽略
 * @dependencies gopkg.in/yaml.v3, github.com/spf13/cast
 * @refs main.go, cmd/reportverify
 */

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// 默认配置值
const (
	DefaultPort              = 80
	DefaultLogLevel          = "info"
	DefaultCoverageThreshold = 0.7
	DefaultStreamDelay       = 40 * time.Millisecond
	DefaultMaxUploadMB       = 32
	DefaultRateLimitWindow   = time.Minute
	DefaultRateLimitMax      = 30
	DefaultRedisHost         = "localhost"
	DefaultRedisPort         = 6379
	DefaultKafkaTopic        = "report-verification"
	DefaultMQTTTopic         = "reportverify/runs"
	DefaultMQTTClientID      = "reportverify-service"
)

// Config 应用配置
type Config struct {
	Server       ServerConfig       `json:"server" yaml:"server"`
	Logging      LoggingConfig      `json:"logging" yaml:"logging"`
	Verification VerificationConfig `json:"verification" yaml:"verification"`
	RateLimit    RateLimitConfig    `json:"rate_limit" yaml:"rate_limit"`
	Redis        RedisConfig        `json:"redis" yaml:"redis"`
	Kafka        KafkaConfig        `json:"kafka" yaml:"kafka"`
	MQTT         MQTTConfig         `json:"mqtt" yaml:"mqtt"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int    `json:"port" yaml:"port"`
	BaseContext string `json:"base_context" yaml:"base_context"`
	MaxUploadMB int64  `json:"max_upload_mb" yaml:"max_upload_mb"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// VerificationConfig 验证配置
type VerificationConfig struct {
	CoverageThreshold float64       `json:"coverage_threshold" yaml:"coverage_threshold"`
	Interactive       bool          `json:"interactive" yaml:"interactive"`
	StreamDelay       time.Duration `json:"stream_delay" yaml:"stream_delay"`
}

// RateLimitConfig 上传限流配置
type RateLimitConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Window  time.Duration `json:"window" yaml:"window"`
	Max     int           `json:"max" yaml:"max"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Password string `json:"-" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// KafkaConfig Kafka配置，Brokers 为空表示不发布
type KafkaConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

// MQTTConfig MQTT配置，Broker 为空表示不发布
type MQTTConfig struct {
	Broker   string `json:"broker" yaml:"broker"`
	Topic    string `json:"topic" yaml:"topic"`
	ClientID string `json:"client_id" yaml:"client_id"`
	QoS      byte   `json:"qos" yaml:"qos"`
}

// Addr Redis连接地址
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel 转换为 slog 日志级别
func (c LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// MaxUploadBytes 上传大小上限（字节）
func (c ServerConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        DefaultPort,
			MaxUploadMB: DefaultMaxUploadMB,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel},
		Verification: VerificationConfig{
			CoverageThreshold: DefaultCoverageThreshold,
			StreamDelay:       DefaultStreamDelay,
		},
		RateLimit: RateLimitConfig{
			Window: DefaultRateLimitWindow,
			Max:    DefaultRateLimitMax,
		},
		Redis: RedisConfig{
			Host: DefaultRedisHost,
			Port: DefaultRedisPort,
		},
		Kafka: KafkaConfig{Topic: DefaultKafkaTopic},
		MQTT: MQTTConfig{
			Topic:    DefaultMQTTTopic,
			ClientID: DefaultMQTTClientID,
		},
	}
}

// Load 加载配置，path 为空时使用 CONFIG_FILE 环境变量，两者皆空则只使用默认值与环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile 读取 YAML 配置文件
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}
	return nil
}

// envOverride 单个环境变量覆盖
type envOverride struct {
	key   string
	apply func(value string) error
}

// applyEnvironmentOverrides 套用环境变量覆盖
func (c *Config) applyEnvironmentOverrides() error {
	overrides := []envOverride{
		{"LISTEN_PORT", func(v string) (err error) { c.Server.Port, err = cast.ToIntE(v); return }},
		{"BASE_CONTEXT", func(v string) error { c.Server.BaseContext = v; return nil }},
		{"MAX_UPLOAD_MB", func(v string) (err error) { c.Server.MaxUploadMB, err = cast.ToInt64E(v); return }},
		{"LOG_LEVEL", func(v string) error { c.Logging.Level = strings.ToLower(v); return nil }},
		{"COVERAGE_THRESHOLD", func(v string) (err error) {
			c.Verification.CoverageThreshold, err = cast.ToFloat64E(v)
			return
		}},
		{"INTERACTIVE", func(v string) (err error) { c.Verification.Interactive, err = cast.ToBoolE(v); return }},
		{"STREAM_DELAY_MS", func(v string) error {
			ms, err := cast.ToIntE(v)
			c.Verification.StreamDelay = time.Duration(ms) * time.Millisecond
			return err
		}},
		{"RATE_LIMIT_ENABLED", func(v string) (err error) { c.RateLimit.Enabled, err = cast.ToBoolE(v); return }},
		{"RATE_LIMIT_WINDOW", func(v string) (err error) { c.RateLimit.Window, err = cast.ToDurationE(v); return }},
		{"RATE_LIMIT_MAX", func(v string) (err error) { c.RateLimit.Max, err = cast.ToIntE(v); return }},
		{"REDIS_HOST", func(v string) error { c.Redis.Host = v; return nil }},
		{"REDIS_PORT", func(v string) (err error) { c.Redis.Port, err = cast.ToIntE(v); return }},
		{"REDIS_PASSWORD", func(v string) error { c.Redis.Password = v; return nil }},
		{"REDIS_DB", func(v string) (err error) { c.Redis.DB, err = cast.ToIntE(v); return }},
		{"KAFKA_BROKERS", func(v string) error { c.Kafka.Brokers = splitList(v); return nil }},
		{"KAFKA_TOPIC", func(v string) error { c.Kafka.Topic = v; return nil }},
		{"MQTT_BROKER", func(v string) error { c.MQTT.Broker = v; return nil }},
		{"MQTT_TOPIC", func(v string) error { c.MQTT.Topic = v; return nil }},
		{"MQTT_CLIENT_ID", func(v string) error { c.MQTT.ClientID = v; return nil }},
	}

	var errs []error
	for _, o := range overrides {
		v, ok := os.LookupEnv(o.key)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(v); err != nil {
			errs = append(errs, fmt.Errorf("环境变量 %s 格式错误: %w", o.key, err))
		}
	}
	return errors.Join(errs...)
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("监听端口无效: %d", c.Server.Port))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("上传大小上限必须大于 0: %d", c.Server.MaxUploadMB))
	}
	if c.Server.BaseContext != "" && !strings.HasPrefix(c.Server.BaseContext, "/") {
		errs = append(errs, fmt.Errorf("BASE_CONTEXT 必须以 / 开头: %q", c.Server.BaseContext))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("日志级别无效: %q", c.Logging.Level))
	}
	if t := c.Verification.CoverageThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("覆盖率门槛必须介于 0 与 1 之间: %v", t))
	}
	if c.Verification.StreamDelay < 0 {
		errs = append(errs, fmt.Errorf("推送延迟不能为负数: %v", c.Verification.StreamDelay))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Window <= 0 {
			errs = append(errs, fmt.Errorf("限流窗口必须大于 0: %v", c.RateLimit.Window))
		}
		if c.RateLimit.Max <= 0 {
			errs = append(errs, fmt.Errorf("限流上限必须大于 0: %d", c.RateLimit.Max))
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("已配置 Kafka brokers 但缺少 topic"))
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		errs = append(errs, errors.New("已配置 MQTT broker 但缺少 topic"))
	}
	if c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("MQTT QoS 无效: %d", c.MQTT.QoS))
	}
	if len(errs) > 0 {
		return fmt.Errorf("配置校验失败: %w", errors.Join(errs...))
	}
	return nil
}

// splitList 拆分逗号分隔的列表
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
