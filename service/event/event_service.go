/*
 * @module service/event/event_service
 * @description 验证事件发布服务，将每次验证的摘要发布到 Kafka 与 MQTT
 * @architecture 事件驱动架构 - 发布者接口 + 异步队列
 * @documentReference SPEC_FULL.md
 * @stateFlow 验证完成 -> RunSummary -> 异步队列 -> 各发布者
 * @rules
 *   - 发布失败只记录日志，不影响验证结果
 *   - 队列已满时丢弃事件并记录警告
 * @dependencies log/slog
 * @refs service/event/kafka_publisher.go, service/event/mqtt_publisher.go, service/report/event.go
 */

package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrQueueFull 事件队列已满
	ErrQueueFull = errors.New("事件队列已满")
	// ErrPublisherClosed 发布者已关闭
	ErrPublisherClosed = errors.New("发布者已关闭")
)

// RunSummary 验证批次摘要事件
type RunSummary struct {
	RunID             string    `json:"run_id"`
	ReportType        string    `json:"report_type"`
	FileName          string    `json:"file_name,omitempty"`
	Source            string    `json:"source"`
	Rows              int       `json:"rows"`
	Steps             int       `json:"steps"`
	Warnings          int       `json:"warnings"`
	Notices           int       `json:"notices"`
	EmptyCells        int       `json:"empty_cells"`
	Duplicates        int       `json:"duplicates"`
	MissingCategories int       `json:"missing_categories"`
	CoveragePassed    *bool     `json:"coverage_passed"`
	Error             string    `json:"error,omitempty"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, summary *RunSummary) error
	Close() error
}

// NopPublisher 不发布任何事件
type NopPublisher struct{}

// Publish 实现 Publisher
func (NopPublisher) Publish(context.Context, *RunSummary) error { return nil }

// Close 实现 Publisher
func (NopPublisher) Close() error { return nil }

// MultiPublisher 依序发布到多个发布者
type MultiPublisher []Publisher

// Publish 发布到全部发布者，汇总错误
func (m MultiPublisher) Publish(ctx context.Context, summary *RunSummary) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close 关闭全部发布者
func (m MultiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options 发布者配置
type Options struct {
	KafkaBrokers []string
	KafkaTopic   string
	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTQoS      byte
}

// New 依配置创建发布者，未配置任何目标时返回 NopPublisher；
// 部分目标失败时返回其余可用的发布者与错误
func New(opts Options, logger *slog.Logger) (Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		publishers MultiPublisher
		errs       []error
	)
	if len(opts.KafkaBrokers) > 0 {
		p, err := NewKafkaPublisher(opts.KafkaBrokers, opts.KafkaTopic, logger)
		if err != nil {
			errs = append(errs, err)
		} else {
			publishers = append(publishers, p)
		}
	}
	if opts.MQTTBroker != "" {
		p, err := NewMQTTPublisher(MQTTOptions{
			Broker:   opts.MQTTBroker,
			Topic:    opts.MQTTTopic,
			ClientID: opts.MQTTClientID,
			QoS:      opts.MQTTQoS,
		}, logger)
		if err != nil {
			errs = append(errs, err)
		} else {
			publishers = append(publishers, p)
		}
	}

	var pub Publisher = NopPublisher{}
	switch len(publishers) {
	case 0:
	case 1:
		pub = publishers[0]
	default:
		pub = publishers
	}
	return pub, errors.Join(errs...)
}

// AsyncPublisher 以缓冲队列在背景发布事件
type AsyncPublisher struct {
	next    Publisher
	queue   chan *RunSummary
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncPublisher 创建异步发布者并启动事件处理器
func NewAsyncPublisher(next Publisher, size int, timeout time.Duration, logger *slog.Logger) *AsyncPublisher {
	if size <= 0 {
		size = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &AsyncPublisher{
		next:    next,
		queue:   make(chan *RunSummary, size),
		timeout: timeout,
		logger:  logger,
	}
	p.wg.Add(1)
	go p.startEventProcessor()
	return p
}

// Publish 将事件放入队列，不等待发布完成
func (p *AsyncPublisher) Publish(_ context.Context, summary *RunSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- summary:
		return nil
	default:
		p.logger.Warn("事件队列已满，跳过发送", "run_id", summary.RunID)
		return ErrQueueFull
	}
}

// Close 停止接收事件，发布完队列中的事件后关闭下游发布者
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.next.Close()
}

// startEventProcessor 事件处理器
func (p *AsyncPublisher) startEventProcessor() {
	defer p.wg.Done()
	for summary := range p.queue {
		ctx := context.Background()
		var cancel context.CancelFunc = func() {}
		if p.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
		}
		if err := p.next.Publish(ctx, summary); err != nil {
			p.logger.Error("发布验证事件失败", "run_id", summary.RunID, "error", err)
		} else {
			p.logger.Debug("验证事件已发布", "run_id", summary.RunID, "report_type", summary.ReportType)
		}
		cancel()
	}
}

// marshalError 包装序列化错误
func marshalError(err error) error {
	return fmt.Errorf("序列化验证事件失败: %w", err)
}
