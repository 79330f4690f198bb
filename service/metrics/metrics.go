/*
 * @module service/metrics/metrics
 * @description Prometheus 指标：验证批次、步骤耗时、检查发现与档名比对层级
 * @architecture 观察者 - 实现 verification.StepObserver
 * @documentReference SPEC_FULL.md
 * @stateFlow 验证引擎回调 -> 指标更新 -> /metrics
 * @rules 标签只使用报表种类、步骤、等级等有限集合，不使用档名或批次标识
 * @dependencies github.com/prometheus/client_golang, github.com/prometheus/common/version
 * @refs service/verification/engine.go, main.go
 */

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"

	"reportverify-service/service/meta"
	"reportverify-service/service/verification"
)

const namespace = "reportverify"

// 验证批次结果
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Metrics 验证服务指标
type Metrics struct {
	runs         *prometheus.CounterVec
	rows         *prometheus.HistogramVec
	stepDuration *prometheus.HistogramVec
	findings     *prometheus.CounterVec
	matches      *prometheus.CounterVec
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "验证批次数量",
		}, []string{"report_type", "outcome"}),
		rows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_rows",
			Help:      "验证报表的资料列数",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}, []string{"report_type"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "检查步骤耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report_type", "step"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "检查发现数量",
		}, []string{"report_type", "step", "level"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filename_matches_total",
			Help:      "档名比对层级分布",
		}, []string{"tier"}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.rows, m.stepDuration, m.findings, m.matches} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RegisterBuildInfo 注册建置版本指标，重复注册时忽略
func RegisterBuildInfo(reg prometheus.Registerer) error {
	err := reg.Register(version.NewCollector(namespace))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}

// ObserveStep 实现 verification.StepObserver
func (m *Metrics) ObserveStep(reportType meta.ReportType, step meta.CheckStep, duration time.Duration, findings []verification.Finding) {
	rt, st := string(reportType), string(step)
	m.stepDuration.WithLabelValues(rt, st).Observe(duration.Seconds())
	for _, f := range findings {
		m.findings.WithLabelValues(rt, st, string(f.Level)).Inc()
	}
}

// ObserveRun 记录一次验证批次
func (m *Metrics) ObserveRun(reportType meta.ReportType, rows int, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailed
	}
	m.runs.WithLabelValues(string(reportType), outcome).Inc()
	m.rows.WithLabelValues(string(reportType)).Observe(float64(rows))
}

// ObserveMatch 记录档名比对层级
func (m *Metrics) ObserveMatch(tier string) {
	m.matches.WithLabelValues(tier).Inc()
}
