/*
 * @module service/verification/classification_check
 * @description 分类组合验证：检查报表中的分类组合是否存在于分类表
 * @architecture 纯函数检查步骤，按粒度（三层、两层、混合）分派
 * @documentReference SPEC_FULL.md
 * @stateFlow 报表 + 分类索引 + 粒度 -> 不存在的分类组合所在列 -> 数量与比例
 * @rules
 *   - 组成栏位任一为空的资料列不参与检查
 *   - 列识别码取 id 栏位，缺少 id 栏位时改用 references_id；两者皆无时只计数不列出
 *   - 混合粒度依 stats_type 拆分资料后分别检查再合并
 *   - 比例以全部资料列数为分母，四舍五入至两位小数
 * @dependencies service/tabular, service/classification, github.com/spf13/cast
 * @refs service/verification/engine.go
 */

package verification

import (
	"fmt"
	"math"

	"github.com/spf13/cast"

	"reportverify-service/service/classification"
	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// ClassificationResult 分类组合验证结果
type ClassificationResult struct {
	Mode           meta.ClassificationMode `json:"mode"`
	Label          string                  `json:"label,omitempty"`
	Total          int                     `json:"total"`
	Count          int                     `json:"count"`
	IDs            []string                `json:"ids"`
	Percent        float64                 `json:"percent"`
	Skipped        bool                    `json:"skipped,omitempty"`
	MissingColumns []string                `json:"missing_columns,omitempty"`
	Partitions     []*ClassificationResult `json:"partitions,omitempty"`
}

// Step 实现 CheckResult
func (r *ClassificationResult) Step() meta.CheckStep { return meta.StepClassificationCheck }

// Findings 实现 CheckResult
func (r *ClassificationResult) Findings() []Finding {
	if len(r.Partitions) > 0 {
		var out []Finding
		for _, p := range r.Partitions {
			out = append(out, p.Findings()...)
		}
		return out
	}

	prefix := ""
	if r.Label != "" {
		prefix = "(" + r.Label + ") "
	}
	switch {
	case r.Skipped && len(r.MissingColumns) > 0:
		return []Finding{finding(r.Step(), LevelWarning, "⚠️ %s缺少分类栏位 %s，无法检查分类组合", prefix, formatList(r.MissingColumns))}
	case r.Skipped:
		return []Finding{finding(r.Step(), LevelInfo, "🔆 %s没有资料列，略过分类组合检查", prefix)}
	}
	level := LevelPass
	if r.Count > 0 {
		level = LevelNotice
	}
	return []Finding{finding(r.Step(), level, "🔔 %s共有 %d 笔资料的分类组合不存在于分类资料表中，占总资料的 %.2f%%", prefix, r.Count, r.Percent)}
}

// CheckClassification 以指定粒度检查分类组合
func CheckClassification(table *tabular.Table, index *classification.Index, mode meta.ClassificationMode) (*ClassificationResult, error) {
	total := table.Len()
	if total == 0 {
		return nil, fmt.Errorf("分类组合验证: %w", ErrDivisionByZero)
	}

	result := &ClassificationResult{Mode: mode, Total: total, IDs: []string{}}
	required, err := classificationColumns(mode)
	if err != nil {
		return nil, err
	}
	if missing := table.MissingColumns(required...); len(missing) > 0 {
		result.Skipped = true
		result.MissingColumns = missing
		return result, nil
	}

	idColumn := rowIDColumn(table)
	for r := 0; r < total; r++ {
		level, ok := rowLevel(table, r, mode)
		if !ok {
			continue
		}
		cols := classification.Columns(level)
		if table.AnyNull(r, cols...) {
			continue
		}
		if inIndex(table, r, index, level) {
			continue
		}
		result.Count++
		if idColumn != "" && !table.IsNull(r, idColumn) {
			result.IDs = append(result.IDs, table.String(r, idColumn))
		}
	}
	result.Percent = roundPercent(result.Count, total)
	return result, nil
}

// CheckClassificationPartitioned 依布林栏位拆分资料后分别检查分类组合
func CheckClassificationPartitioned(table *tabular.Table, index *classification.Index, mode meta.ClassificationMode, column string) (*ClassificationResult, error) {
	total := table.Len()
	if total == 0 {
		return nil, fmt.Errorf("分类组合验证: %w", ErrDivisionByZero)
	}

	result := &ClassificationResult{Mode: mode, Total: total, IDs: []string{}}
	if !table.HasColumn(column) {
		result.Skipped = true
		result.MissingColumns = []string{column}
		return result, nil
	}

	for _, want := range []bool{true, false} {
		part := table.Filter(func(r int) bool {
			v, err := cast.ToBoolE(table.String(r, column))
			return err == nil && v == want
		})
		label := fmt.Sprintf("%s = %v", column, want)
		if part.Len() == 0 {
			result.Partitions = append(result.Partitions, &ClassificationResult{Mode: mode, Label: label, IDs: []string{}, Skipped: true})
			continue
		}
		sub, err := CheckClassification(part, index, mode)
		if err != nil {
			return nil, err
		}
		sub.Label = label
		result.Partitions = append(result.Partitions, sub)
		result.Count += sub.Count
		result.IDs = append(result.IDs, sub.IDs...)
	}
	result.Percent = roundPercent(result.Count, total)
	return result, nil
}

// classificationColumns 返回粒度所需的栏位
func classificationColumns(mode meta.ClassificationMode) ([]string, error) {
	switch mode {
	case meta.ModeFurtherSubcategory, meta.ModeSubcategory:
		return classification.Columns(mode), nil
	case meta.ModeMixed:
		return append(classification.Columns(meta.ModeFurtherSubcategory), meta.ColumnStatsType), nil
	default:
		return nil, fmt.Errorf("%w: 未知的分类检查粒度 %q", ErrInvalidArgument, mode)
	}
}

// rowLevel 返回资料列适用的分类粒度
func rowLevel(table *tabular.Table, r int, mode meta.ClassificationMode) (meta.ClassificationMode, bool) {
	if mode != meta.ModeMixed {
		return mode, true
	}
	switch meta.ClassificationMode(table.String(r, meta.ColumnStatsType)) {
	case meta.ModeFurtherSubcategory:
		return meta.ModeFurtherSubcategory, true
	case meta.ModeSubcategory:
		return meta.ModeSubcategory, true
	}
	return "", false
}

// inIndex 判断资料列的分类组合是否存在于分类索引
func inIndex(table *tabular.Table, r int, index *classification.Index, level meta.ClassificationMode) bool {
	c := table.String(r, meta.ColumnCategory)
	s := table.String(r, meta.ColumnSubcategory)
	if level == meta.ModeSubcategory {
		return index.HasSubcategory(c, s)
	}
	return index.HasFurtherSubcategory(c, s, table.String(r, meta.ColumnFurtherSubcategory))
}

// rowIDColumn 返回列识别码栏位
func rowIDColumn(table *tabular.Table) string {
	switch {
	case table.HasColumn(meta.ColumnID):
		return meta.ColumnID
	case table.HasColumn(meta.ColumnReferencesID):
		return meta.ColumnReferencesID
	}
	return ""
}

// roundPercent 计算百分比并四舍五入至两位小数
func roundPercent(count, total int) float64 {
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
