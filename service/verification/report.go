/*
 * @module service/verification/report
 * @description 验证结果容器，检查结果以不可变方式累积
 * @architecture 不可变值对象 - With 返回新的 Report，原 Report 不变
 * @documentReference SPEC_FULL.md
 * @stateFlow 空 Report -> With(步骤结果) -> ... -> 完整 Report
 * @rules 结果顺序与步骤执行顺序一致
 * @dependencies service/meta
 * @refs service/verification/engine.go, service/report/aggregator.go
 */

package verification

import (
	"time"

	"reportverify-service/service/meta"
)

// CheckResult 单一检查步骤的结果
type CheckResult interface {
	Step() meta.CheckStep
	Findings() []Finding
}

// Report 一次验证的结果
type Report struct {
	RunID      string          `json:"run_id"`
	ReportType meta.ReportType `json:"report_type"`
	FileName   string          `json:"file_name,omitempty"`
	Rows       int             `json:"rows"`
	StartedAt  time.Time       `json:"started_at"`

	results []CheckResult
}

// NewReport 创建空的验证结果
func NewReport(runID string, reportType meta.ReportType, fileName string, rows int) *Report {
	return &Report{
		RunID:      runID,
		ReportType: reportType,
		FileName:   fileName,
		Rows:       rows,
		StartedAt:  time.Now(),
	}
}

// With 返回追加了结果的新 Report
func (r *Report) With(result CheckResult) *Report {
	next := *r
	next.results = make([]CheckResult, len(r.results), len(r.results)+1)
	copy(next.results, r.results)
	next.results = append(next.results, result)
	return &next
}

// Results 返回全部检查结果
func (r *Report) Results() []CheckResult {
	out := make([]CheckResult, len(r.results))
	copy(out, r.results)
	return out
}

// Result 返回指定步骤的结果
func (r *Report) Result(step meta.CheckStep) (CheckResult, bool) {
	for _, res := range r.results {
		if res.Step() == step {
			return res, true
		}
	}
	return nil, false
}

// Findings 返回全部检查发现
func (r *Report) Findings() []Finding {
	var out []Finding
	for _, res := range r.results {
		out = append(out, res.Findings()...)
	}
	return out
}

// CountFindings 统计指定等级的发现数量
func (r *Report) CountFindings(levels ...Level) int {
	want := make(map[Level]bool, len(levels))
	for _, l := range levels {
		want[l] = true
	}
	n := 0
	for _, f := range r.Findings() {
		if want[f.Level] {
			n++
		}
	}
	return n
}

// ResultOf 以类型取出检查结果
func ResultOf[T CheckResult](r *Report) (T, bool) {
	for _, res := range r.results {
		if v, ok := res.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
