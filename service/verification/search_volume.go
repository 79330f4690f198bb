/*
 * @module service/verification/search_volume
 * @description keyword 报表的搜索量检测
 * @architecture 纯函数检查步骤
 * @documentReference SPEC_FULL.md
 * @stateFlow 报表 -> search_volume 为 0 或空值的列数
 * @rules 空值、空白、0 与 0.0 皆视为 0
 * @dependencies github.com/spf13/cast
 * @refs service/verification/engine.go
 */

package verification

import (
	"strings"

	"github.com/spf13/cast"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// SearchVolumeResult 搜索量检测结果
type SearchVolumeResult struct {
	ZeroRows int  `json:"zero_rows"`
	Skipped  bool `json:"skipped,omitempty"`
}

// Step 实现 CheckResult
func (r *SearchVolumeResult) Step() meta.CheckStep { return meta.StepSearchVolumeCheck }

// Findings 实现 CheckResult
func (r *SearchVolumeResult) Findings() []Finding {
	switch {
	case r.Skipped:
		return []Finding{finding(r.Step(), LevelWarning, "⚠️ 缺少 search_volume 栏位，无法检查搜索量")}
	case r.ZeroRows == 0:
		return []Finding{finding(r.Step(), LevelPass, "✅ 没有 search_volume 为 0 或空值的资料")}
	}
	return []Finding{finding(r.Step(), LevelNotice, "🔔 共有 %d 列之 search_volume 为 0 或空值！", r.ZeroRows)}
}

// CheckSearchVolume 统计 search_volume 为 0 或空值的列数
func CheckSearchVolume(table *tabular.Table) *SearchVolumeResult {
	if !table.HasColumn(meta.ColumnSearchVolume) {
		return &SearchVolumeResult{Skipped: true}
	}
	result := &SearchVolumeResult{}
	for r := 0; r < table.Len(); r++ {
		if isZeroVolume(table, r) {
			result.ZeroRows++
		}
	}
	return result
}

func isZeroVolume(table *tabular.Table, r int) bool {
	if table.IsNull(r, meta.ColumnSearchVolume) {
		return true
	}
	s := strings.TrimSpace(table.String(r, meta.ColumnSearchVolume))
	switch s {
	case "", "0", "0.0":
		return true
	}
	f, err := cast.ToFloat64E(s)
	return err == nil && f == 0
}
