/*
 * @module service/config/config_service
 * @description 配置项列表，供配置查询接口展示当前生效的配置
 * @architecture 分层架构 - 基础设施层
 * @documentReference SPEC_FULL.md
 * @stateFlow Config -> 配置项列表
 * @rules 密码类配置只显示是否已设置，不输出原值
 * @dependencies github.com/spf13/cast
 * @refs api/controllers/config_controller.go
 */

package config

import (
	"strings"

	"github.com/spf13/cast"
)

// Item 配置项
type Item struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
	ValueType   string `json:"value_type"`
}

// redacted 已设置的密码类配置显示值
const redacted = "******"

// Items 返回当前生效的配置项
func (c *Config) Items() []Item {
	password := ""
	if c.Redis.Password != "" {
		password = redacted
	}
	return []Item{
		item("LISTEN_PORT", c.Server.Port, "服务监听端口", "int"),
		item("BASE_CONTEXT", c.Server.BaseContext, "路由前缀", "string"),
		item("MAX_UPLOAD_MB", c.Server.MaxUploadMB, "单次上传大小上限（MB）", "int"),
		item("LOG_LEVEL", c.Logging.Level, "日志级别", "string"),
		item("COVERAGE_THRESHOLD", c.Verification.CoverageThreshold, "分类覆盖率门槛", "float"),
		item("INTERACTIVE", c.Verification.Interactive, "互动模式（逐条延迟推送发现）", "bool"),
		item("STREAM_DELAY_MS", c.Verification.StreamDelay.Milliseconds(), "互动模式推送延迟（毫秒）", "int"),
		item("RATE_LIMIT_ENABLED", c.RateLimit.Enabled, "是否启用上传限流", "bool"),
		item("RATE_LIMIT_WINDOW", c.RateLimit.Window.String(), "限流窗口", "duration"),
		item("RATE_LIMIT_MAX", c.RateLimit.Max, "限流窗口内最大请求数", "int"),
		item("REDIS_HOST", c.Redis.Host, "Redis 主机", "string"),
		item("REDIS_PORT", c.Redis.Port, "Redis 端口", "int"),
		item("REDIS_PASSWORD", password, "Redis 密码", "string"),
		item("REDIS_DB", c.Redis.DB, "Redis 数据库编号", "int"),
		item("KAFKA_BROKERS", strings.Join(c.Kafka.Brokers, ","), "Kafka brokers", "string"),
		item("KAFKA_TOPIC", c.Kafka.Topic, "验证结果 Kafka topic", "string"),
		item("MQTT_BROKER", c.MQTT.Broker, "MQTT broker", "string"),
		item("MQTT_TOPIC", c.MQTT.Topic, "验证结果 MQTT topic", "string"),
		item("MQTT_CLIENT_ID", c.MQTT.ClientID, "MQTT client id", "string"),
	}
}

func item(key string, value any, description, valueType string) Item {
	return Item{Key: key, Value: cast.ToString(value), Description: description, ValueType: valueType}
}
