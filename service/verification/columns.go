/*
 * @module service/verification/columns
 * @description 栏位检测与空值分析
 * @architecture 纯函数检查步骤
 * @documentReference SPEC_FULL.md
 * @stateFlow 报表 + 报表规范 -> 缺失栏位 / 各栏位空值数量与比例
 * @rules
 *   - 空值比例以资料列数为分母，资料列数为 0 时返回 ErrDivisionByZero
 *   - 报表不存在的必要栏位视为整栏空值
 * @dependencies service/tabular, service/meta
 * @refs service/verification/engine.go
 */

package verification

import (
	"fmt"
	"strconv"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// ColumnResult 栏位检测结果
type ColumnResult struct {
	Missing []string `json:"missing"`
	Passed  bool     `json:"passed"`
}

// Step 实现 CheckResult
func (r *ColumnResult) Step() meta.CheckStep { return meta.StepColumnAssertion }

// Findings 实现 CheckResult
func (r *ColumnResult) Findings() []Finding {
	if r.Passed {
		return []Finding{finding(r.Step(), LevelPass, "✅ 没有缺失重要栏位")}
	}
	out := make([]Finding, 0, len(r.Missing))
	for _, col := range r.Missing {
		out = append(out, finding(r.Step(), LevelWarning, "⚠️ missing column: %s", col))
	}
	return out
}

// CheckColumns 检查报表是否缺少必要栏位
func CheckColumns(table *tabular.Table, schema *meta.Schema) *ColumnResult {
	missing := table.MissingColumns(schema.RequiredColumns...)
	if missing == nil {
		missing = []string{}
	}
	return &ColumnResult{Missing: missing, Passed: len(missing) == 0}
}

// NullStat 单一栏位的空值统计
type NullStat struct {
	Column     string  `json:"column"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
	Percent    string  `json:"percent"`
	Absent     bool    `json:"absent,omitempty"`
}

// NullResult 空值分析结果
type NullResult struct {
	Total   int        `json:"total"`
	Columns []NullStat `json:"columns"`
}

// Step 实现 CheckResult
func (r *NullResult) Step() meta.CheckStep { return meta.StepNullAnalysis }

// Findings 实现 CheckResult
func (r *NullResult) Findings() []Finding {
	table := &FindingTable{Headers: []string{"column", "count", "proportion"}}
	for _, s := range r.Columns {
		table.Rows = append(table.Rows, []string{s.Column, strconv.Itoa(s.Count), s.Percent})
	}
	summary := finding(r.Step(), LevelInfo, "🔆 各栏位空值分布")
	summary.Table = table
	return []Finding{
		finding(r.Step(), LevelInfo, "📊 总列数：%d", r.Total),
		summary,
	}
}

// AnalyzeNulls 计算各必要栏位的空值数量与比例
func AnalyzeNulls(table *tabular.Table, schema *meta.Schema) (*NullResult, error) {
	total := table.Len()
	if total == 0 {
		return nil, fmt.Errorf("空值分析: %w", ErrDivisionByZero)
	}

	result := &NullResult{Total: total, Columns: make([]NullStat, 0, len(schema.RequiredColumns))}
	for _, col := range schema.RequiredColumns {
		stat := NullStat{Column: col, Absent: !table.HasColumn(col)}
		for r := 0; r < total; r++ {
			if table.IsNull(r, col) {
				stat.Count++
			}
		}
		stat.Proportion = float64(stat.Count) / float64(total)
		stat.Percent = formatPercent(stat.Proportion)
		result.Columns = append(result.Columns, stat)
	}
	return result, nil
}
