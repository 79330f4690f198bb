/*
 * @module service/event/mqtt_publisher
 * @description MQTT 验证事件发布者
 * @architecture 消息发布者
 * @documentReference SPEC_FULL.md
 * @stateFlow RunSummary -> JSON -> MQTT topic
 * @rules 连接断线时由客户端自动重连；发布等待 broker 确认或 ctx 结束
 * @dependencies github.com/eclipse/paho.mqtt.golang
 * @refs service/event/event_service.go
 */

package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOptions MQTT 发布者配置
type MQTTOptions struct {
	Broker         string
	Topic          string
	ClientID       string
	QoS            byte
	ConnectTimeout time.Duration
}

// MQTTPublisher MQTT 发布者
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	logger *slog.Logger
}

// NewMQTTPublisher 创建 MQTT 发布者并连接 broker
func NewMQTTPublisher(opts MQTTOptions, logger *slog.Logger) (*MQTTPublisher, error) {
	if opts.Broker == "" {
		return nil, errors.New("mqtt broker 不能为空")
	}
	if opts.Topic == "" {
		return nil, errors.New("mqtt topic 不能为空")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetCleanSession(true)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	clientOpts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("MQTT发布者已连接到broker", "broker", opts.Broker)
	})
	clientOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT连接中断", "broker", opts.Broker, "error", err)
	})

	client := mqtt.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		return nil, fmt.Errorf("MQTT连接超时: %s", opts.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("MQTT连接失败: %w", err)
	}

	return newMQTTPublisher(client, opts.Topic, opts.QoS, logger), nil
}

func newMQTTPublisher(client mqtt.Client, topic string, qos byte, logger *slog.Logger) *MQTTPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTPublisher{client: client, topic: topic, qos: qos, logger: logger}
}

// Publish 发布验证事件
func (p *MQTTPublisher) Publish(ctx context.Context, summary *RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return marshalError(err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("发布MQTT消息失败: %w", ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("发布MQTT消息失败: %w", err)
	}

	p.logger.Debug("消息已发布到主题", "topic", p.topic, "qos", p.qos, "run_id", summary.RunID)
	return nil
}

// Close 断开连接，等待 250ms 让消息发送完成
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
