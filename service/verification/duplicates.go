/*
 * @module service/verification/duplicates
 * @description 重复值检测，仅适用于 products 与 products_extend 报表
 * @architecture 纯函数检查步骤
 * @documentReference SPEC_FULL.md
 * @stateFlow 报表 + 判定栏位 -> 逐列组合键 -> 重复列的 id
 * @rules
 *   - 第一次出现的组合键不列入重复清单
 *   - 空值与空值视为相同
 *   - 其他报表种类返回 ErrInvalidArgument
 * @dependencies service/tabular, service/meta
 * @refs service/verification/engine.go, service/report/export.go
 */

package verification

import (
	"fmt"
	"strings"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// nullKeyPart 组合键中空值的占位符
const nullKeyPart = "\x00null"

// DuplicateResult 重复值检测结果
type DuplicateResult struct {
	ReportType     meta.ReportType `json:"report_type"`
	Key            []string        `json:"key"`
	IDs            []string        `json:"ids"`
	Count          int             `json:"count"`
	Skipped        bool            `json:"skipped,omitempty"`
	MissingColumns []string        `json:"missing_columns,omitempty"`
}

// Step 实现 CheckResult
func (r *DuplicateResult) Step() meta.CheckStep { return meta.StepDuplicateAnalysis }

// Findings 实现 CheckResult
func (r *DuplicateResult) Findings() []Finding {
	if r.Skipped {
		return []Finding{finding(r.Step(), LevelWarning, "⚠️ 缺少重复值判定栏位 %s，无法检查重复列", formatList(r.MissingColumns))}
	}
	if r.Count > 0 {
		name := "Products"
		if r.ReportType == meta.ReportProductsExtend {
			name = "Products Extend"
		}
		return []Finding{finding(r.Step(), LevelNotice, "🔔 %s 有重复值，共 %d 列。", name, r.Count)}
	}
	if r.ReportType == meta.ReportProductsExtend {
		return []Finding{finding(r.Step(), LevelPass, "✅ 没有重复的产品扩增属性资料")}
	}
	return []Finding{finding(r.Step(), LevelPass, "✅ 没有重复的产品资料")}
}

// AnalyzeDuplicates 依报表规范的判定栏位找出重复列
func AnalyzeDuplicates(table *tabular.Table, schema *meta.Schema) (*DuplicateResult, error) {
	if schema.Type != meta.ReportProducts && schema.Type != meta.ReportProductsExtend {
		return nil, fmt.Errorf("%w: 重复值检测不适用于 %s", ErrInvalidArgument, schema.Type)
	}
	if len(schema.DuplicateKey) == 0 {
		return nil, fmt.Errorf("%w: %s 未配置重复值判定栏位", ErrInvalidArgument, schema.Type)
	}

	result := &DuplicateResult{ReportType: schema.Type, Key: schema.DuplicateKey, IDs: []string{}}
	if missing := table.MissingColumns(append(append([]string{}, schema.DuplicateKey...), meta.ColumnID)...); len(missing) > 0 {
		result.Skipped = true
		result.MissingColumns = missing
		return result, nil
	}

	seen := make(map[string]struct{}, table.Len())
	parts := make([]string, len(schema.DuplicateKey))
	for r := 0; r < table.Len(); r++ {
		for i, col := range schema.DuplicateKey {
			if table.IsNull(r, col) {
				parts[i] = nullKeyPart
			} else {
				parts[i] = table.String(r, col)
			}
		}
		key := strings.Join(parts, "\x1f")
		if _, dup := seen[key]; dup {
			result.IDs = append(result.IDs, table.String(r, meta.ColumnID))
			continue
		}
		seen[key] = struct{}{}
	}
	result.Count = len(result.IDs)
	return result, nil
}
