/*
 * @module service/verification/coverage
 * @description 分类覆盖率检查：分类表中的每个分类是否至少出现在报表中一次，以及各层级覆盖率统计
 * @architecture 纯函数检查步骤
 * @documentReference SPEC_FULL.md
 * @stateFlow 报表 + 分类索引 -> 每个分类的出现次数 -> 缺失分类 -> 覆盖率统计与门槛判定
 * @rules
 *   - 以分类索引中的分类为准逐一计数，而非报表中出现的分类
 *   - 以各组成栏位完全相等比对，不使用底线拼接字串
 *   - 报表缺少分类栏位时略过检查，不产生表格，缺失清单为空
 * @dependencies service/tabular, service/classification
 * @refs service/verification/engine.go, service/report/aggregator.go
 */

package verification

import (
	"strconv"
	"strings"

	"reportverify-service/service/classification"
	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// DefaultCoverageThreshold 覆盖率门槛默认值
const DefaultCoverageThreshold = 0.7

// CoverageRow 单一分类的出现次数
type CoverageRow struct {
	Key   string `json:"category"`
	Count int    `json:"count"`
}

// LevelCoverage 单一层级的覆盖率
type LevelCoverage struct {
	Level   string  `json:"level"`
	Name    string  `json:"name"`
	Covered int     `json:"covered"`
	Total   int     `json:"total"`
	Ratio   float64 `json:"ratio"`
}

// CoverageStats 覆盖率统计
type CoverageStats struct {
	Levels    []LevelCoverage `json:"levels"`
	Threshold float64         `json:"threshold"`
	Passed    bool            `json:"passed"`
}

// CoverageResult 分类覆盖率检查结果
type CoverageResult struct {
	Level          meta.ClassificationMode `json:"level"`
	Rows           []CoverageRow           `json:"result,omitempty"`
	Missing        []string                `json:"missing"`
	Skipped        bool                    `json:"skipped,omitempty"`
	MissingColumns []string                `json:"missing_columns,omitempty"`
	Stats          *CoverageStats          `json:"stats,omitempty"`
}

// Step 实现 CheckResult
func (r *CoverageResult) Step() meta.CheckStep { return meta.StepCategoryCoverage }

// Findings 实现 CheckResult
func (r *CoverageResult) Findings() []Finding {
	if r.Skipped {
		return []Finding{
			finding(r.Step(), LevelWarning, "⚠️ 资料缺少必要的分类栏位: %s", formatList(r.MissingColumns)),
			finding(r.Step(), LevelWarning, "无法进行分类覆盖率检查"),
		}
	}

	zero := ZeroCountKeys(r.Rows)
	table := &FindingTable{Headers: []string{"category", "count"}}
	for i, row := range r.Rows {
		table.Rows = append(table.Rows, []string{row.Key, strconv.Itoa(row.Count)})
		if zero[row.Key] {
			table.Highlight = append(table.Highlight, i)
		}
	}
	summary := finding(r.Step(), LevelInfo, "🔔 分类覆盖率检查结果（共 %d 个分类，缺失 %d 个）：", len(r.Rows), len(r.Missing))
	summary.Table = table
	out := []Finding{summary}

	if r.Stats != nil {
		for _, lv := range r.Stats.Levels {
			out = append(out, finding(r.Step(), LevelInfo, "- %s覆盖率：%d/%d (%s)", lv.Name, lv.Covered, lv.Total, formatPercent(lv.Ratio)))
		}
		if r.Stats.Passed {
			out = append(out, finding(r.Step(), LevelPass, "✅ 分类覆盖率达到门槛 %s", formatPercent(r.Stats.Threshold)))
		} else {
			out = append(out, finding(r.Step(), LevelWarning, "⚠️ 分类覆盖率未达门槛 %s", formatPercent(r.Stats.Threshold)))
		}
	}
	return out
}

// CheckCoverage 逐一计算分类索引中每个分类在报表中的出现次数
func CheckCoverage(table *tabular.Table, index *classification.Index, level meta.ClassificationMode) *CoverageResult {
	if level != meta.ModeSubcategory {
		level = meta.ModeFurtherSubcategory
	}
	result := &CoverageResult{Level: level, Missing: []string{}}

	cols := classification.Columns(level)
	if missing := table.MissingColumns(cols...); len(missing) > 0 {
		result.Skipped = true
		result.MissingColumns = missing
		return result
	}

	counts := make(map[string]int)
	parts := make([]string, len(cols))
	for r := 0; r < table.Len(); r++ {
		if table.AnyNull(r, cols...) {
			continue
		}
		for i, c := range cols {
			parts[i] = table.String(r, c)
		}
		counts[tupleKey(parts)]++
	}

	entries := index.Entries(level)
	result.Rows = make([]CoverageRow, 0, len(entries))
	for _, e := range entries {
		n := counts[tupleKey(e.Parts)]
		result.Rows = append(result.Rows, CoverageRow{Key: e.Key, Count: n})
		if n == 0 {
			result.Missing = append(result.Missing, e.Key)
		}
	}
	return result
}

// ZeroCountKeys 返回出现次数为 0 的分类，供呈现端强调显示
func ZeroCountKeys(rows []CoverageRow) map[string]bool {
	out := make(map[string]bool)
	for _, row := range rows {
		if row.Count == 0 {
			out[row.Key] = true
		}
	}
	return out
}

// coverageLevels 覆盖率统计的层级
var coverageLevels = []struct {
	column string
	name   string
}{
	{meta.ColumnCategory, "大分类"},
	{meta.ColumnSubcategory, "中分类"},
	{meta.ColumnFurtherSubcategory, "小分类"},
}

// CoverageStatistics 计算各层级分类值在报表中的覆盖率并与门槛比较
func CoverageStatistics(table *tabular.Table, index *classification.Index, threshold float64) *CoverageStats {
	stats := &CoverageStats{Threshold: threshold, Passed: true}
	totals := index.Stats()
	for _, lv := range coverageLevels {
		present := make(map[string]struct{})
		if table.HasColumn(lv.column) {
			for r := 0; r < table.Len(); r++ {
				if !table.IsNull(r, lv.column) {
					present[table.String(r, lv.column)] = struct{}{}
				}
			}
		}

		values := index.Values(lv.column)
		cov := LevelCoverage{Level: lv.column, Name: lv.name, Total: totals.Count(lv.column)}
		for _, v := range values {
			if _, ok := present[v]; ok {
				cov.Covered++
			}
		}
		if cov.Total > 0 {
			cov.Ratio = float64(cov.Covered) / float64(cov.Total)
		}
		if cov.Ratio < threshold {
			stats.Passed = false
		}
		stats.Levels = append(stats.Levels, cov)
	}
	return stats
}

func tupleKey(parts []string) string {
	return strings.Join(parts, "\x1f")
}
