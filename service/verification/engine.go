/*
 * @module service/verification/engine
 * @description 验证引擎，依报表规范的步骤清单依序执行检查并累积结果
 * @architecture 调度表模式 - 步骤标识对应检查函数，由单一循环依报表规范执行
 * @documentReference SPEC_FULL.md
 * @stateFlow 报表 + 报表种类 -> 查询报表规范 -> 逐步执行检查 -> 推送发现 -> Report
 * @rules
 *   - 每次验证建立独立的引擎，不共享可变状态
 *   - 非互动模式不做任何延迟
 *   - 资料品质问题写入结果，只有输入与配置问题返回错误
 * @dependencies log/slog, github.com/google/uuid
 * @refs service/meta/report_schema.go, service/classification/index.go
 */

package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reportverify-service/service/classification"
	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// DefaultStreamDelay 互动模式下每条发现之间的延迟
const DefaultStreamDelay = 40 * time.Millisecond

// StepObserver 步骤执行观察者，用于指标采集
type StepObserver interface {
	ObserveStep(reportType meta.ReportType, step meta.CheckStep, duration time.Duration, findings []Finding)
}

// stepFunc 检查步骤函数
type stepFunc func(e *Engine, table *tabular.Table, schema *meta.Schema) (CheckResult, error)

// steps 步骤调度表
var steps = map[meta.CheckStep]stepFunc{
	meta.StepColumnAssertion: func(_ *Engine, t *tabular.Table, s *meta.Schema) (CheckResult, error) {
		return CheckColumns(t, s), nil
	},
	meta.StepNullAnalysis: func(_ *Engine, t *tabular.Table, s *meta.Schema) (CheckResult, error) {
		return AnalyzeNulls(t, s)
	},
	meta.StepDuplicateAnalysis: func(_ *Engine, t *tabular.Table, s *meta.Schema) (CheckResult, error) {
		return AnalyzeDuplicates(t, s)
	},
	meta.StepSearchVolumeCheck: func(_ *Engine, t *tabular.Table, _ *meta.Schema) (CheckResult, error) {
		return CheckSearchVolume(t), nil
	},
	meta.StepClassificationCheck: func(e *Engine, t *tabular.Table, s *meta.Schema) (CheckResult, error) {
		if s.PartitionColumn != "" {
			return CheckClassificationPartitioned(t, e.index, s.ClassificationMode, s.PartitionColumn)
		}
		return CheckClassification(t, e.index, s.ClassificationMode)
	},
	meta.StepCategoryCoverage: func(e *Engine, t *tabular.Table, s *meta.Schema) (CheckResult, error) {
		res := CheckCoverage(t, e.index, s.CoverageLevel)
		if !res.Skipped {
			res.Stats = CoverageStatistics(t, e.index, e.coverageThreshold)
		}
		return res, nil
	},
	meta.StepRankVerification: func(_ *Engine, t *tabular.Table, s *meta.Schema) (CheckResult, error) {
		return VerifyRanks(t, s), nil
	},
	meta.StepExtendClassCheck: func(_ *Engine, t *tabular.Table, s *meta.Schema) (CheckResult, error) {
		return CheckExtendClasses(t, s), nil
	},
	meta.StepDecimalCheck: func(_ *Engine, t *tabular.Table, _ *meta.Schema) (CheckResult, error) {
		return CheckDecimals(t), nil
	},
}

// Engine 验证引擎
type Engine struct {
	index             *classification.Index
	registry          *meta.Registry
	logger            *slog.Logger
	sink              FindingSink
	observer          StepObserver
	interactive       bool
	streamDelay       time.Duration
	coverageThreshold float64
	runID             string
	fileName          string
}

// Option 引擎配置选项
type Option func(*Engine)

// WithInteractive 设置互动模式，互动模式下逐条延迟推送发现
func WithInteractive(interactive bool) Option {
	return func(e *Engine) { e.interactive = interactive }
}

// WithStreamDelay 设置互动模式的推送延迟
func WithStreamDelay(d time.Duration) Option {
	return func(e *Engine) { e.streamDelay = d }
}

// WithSink 设置发现接收器
func WithSink(sink FindingSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithRegistry 设置报表规范注册表
func WithRegistry(r *meta.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver 设置步骤观察者
func WithObserver(o StepObserver) Option {
	return func(e *Engine) { e.observer = o }
}

// WithCoverageThreshold 设置覆盖率门槛
func WithCoverageThreshold(threshold float64) Option {
	return func(e *Engine) { e.coverageThreshold = threshold }
}

// WithRunID 设置验证批次标识
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// WithFileName 设置报表档名
func WithFileName(name string) Option {
	return func(e *Engine) { e.fileName = name }
}

// NewEngine 创建验证引擎
func NewEngine(index *classification.Index, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, fmt.Errorf("%w: 分类表", ErrMissingRequiredInput)
	}
	e := &Engine{
		index:             index,
		registry:          meta.DefaultRegistry(),
		logger:            slog.Default(),
		sink:              nopSink{},
		streamDelay:       DefaultStreamDelay,
		coverageThreshold: DefaultCoverageThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = uuid.New().String()
	}
	return e, nil
}

// RunID 返回验证批次标识
func (e *Engine) RunID() string {
	return e.runID
}

// Verify 依报表种类执行全部检查步骤
func (e *Engine) Verify(ctx context.Context, table *tabular.Table, reportType meta.ReportType) (*Report, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: 报表", ErrMissingRequiredInput)
	}
	schema, err := e.registry.Lookup(reportType)
	if err != nil {
		return nil, err
	}

	fileName := e.fileName
	if fileName == "" {
		fileName = table.Name
	}
	report := NewReport(e.runID, reportType, fileName, table.Len())
	log := e.logger.With("run_id", e.runID, "report_type", reportType)
	log.Info("开始验证报表", "rows", table.Len(), "steps", len(schema.Steps))

	for _, step := range schema.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		fn, ok := steps[step]
		if !ok {
			return report, fmt.Errorf("%w: 未注册的检查步骤 %s", ErrInvalidArgument, step)
		}

		start := time.Now()
		result, err := fn(e, table, schema)
		duration := time.Since(start)
		if err != nil {
			log.Error("检查步骤失败", "step", step, "error", err)
			return report, fmt.Errorf("执行检查步骤 %s 失败: %w", step, err)
		}

		findings := result.Findings()
		log.Debug("检查步骤完成", "step", step, "duration", duration, "findings", len(findings))
		if e.observer != nil {
			e.observer.ObserveStep(reportType, step, duration, findings)
		}

		report = report.With(result)
		if err := e.emit(ctx, findings); err != nil {
			return report, err
		}
	}

	log.Info("报表验证完成", "duration", time.Since(report.StartedAt))
	return report, nil
}

// emit 推送发现，互动模式下逐条延迟
func (e *Engine) emit(ctx context.Context, findings []Finding) error {
	for _, f := range findings {
		if err := e.sink.Emit(ctx, f); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("推送检查发现失败: %w", err)
		}
		if !e.interactive || e.streamDelay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.streamDelay):
		}
	}
	return nil
}
