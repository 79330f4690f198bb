/*
 * @module service/event/kafka_publisher
 * @description Kafka 验证事件发布者
 * @architecture 消息队列生产者
 * @documentReference SPEC_FULL.md
 * @stateFlow RunSummary -> JSON -> kafka.Message -> topic
 * @rules 以 run_id 作为消息 key，同一批次的事件落在同一分区
 * @dependencies github.com/segmentio/kafka-go
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

	"github.com/segmentio/kafka-go"
)

// messageWriter kafka.Writer 的最小接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher Kafka 发布者
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher 创建 Kafka 发布者
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers 不能为空")
	}
	if topic == "" {
		return nil, errors.New("kafka topic 不能为空")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	p := newKafkaPublisher(writer, topic, logger)
	p.logger.Info("Kafka发布者已创建", "brokers", brokers, "topic", topic)
	return p, nil
}

func newKafkaPublisher(writer messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// Publish 发布验证事件
func (p *KafkaPublisher) Publish(ctx context.Context, summary *RunSummary) error {
	value, err := json.Marshal(summary)
	if err != nil {
		return marshalError(err)
	}

	msg := kafka.Message{
		Key:   []byte(summary.RunID),
		Value: value,
		Time:  summary.GeneratedAt,
		Headers: []kafka.Header{
			{Key: "report_type", Value: []byte(summary.ReportType)},
			{Key: "source", Value: []byte(summary.Source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("发送Kafka消息失败: %w", err)
	}

	p.logger.Debug("消息已发送到topic", "topic", p.topic, "key", summary.RunID)
	return nil
}

// Close 关闭生产者
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("关闭Kafka生产者失败: %w", err)
	}
	return nil
}
