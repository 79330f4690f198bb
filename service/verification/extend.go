/*
 * @module service/verification/extend
 * @description 扩充属性检测：扩充属性词汇是否出现，以及各 extend_class 下 extend_subclass / extend_unit 的空值比例
 * @architecture 纯函数检查步骤
 * @documentReference SPEC_FULL.md
 * @stateFlow 报表 + 扩充属性词汇 -> 出现 / 缺少 / 词汇外的属性 -> 分组空值统计
 * @rules
 *   - 分组依 extend_class 排序，extend_class 为空的资料列不分组
 *   - extend_unit 只在 products_extend 报表统计
 *   - 留言类报表不做分组空值统计
 * @dependencies service/tabular, service/meta
 * @refs service/meta/report_schema.go
 */

package verification

import (
	"sort"
	"strconv"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// ExtendGroupStat 单一 extend_class 的空值统计
type ExtendGroupStat struct {
	Class           string `json:"extend_class"`
	Rows            int    `json:"rows"`
	SubclassNulls   int    `json:"subclass_nulls"`
	SubclassPercent string `json:"subclass_percent"`
	UnitNulls       int    `json:"unit_nulls"`
	UnitPercent     string `json:"unit_percent"`
}

// ExtendResult 扩充属性检测结果
type ExtendResult struct {
	Present       []string          `json:"present"`
	Absent        []string          `json:"absent"`
	Unexpected    []string          `json:"unexpected"`
	Groups        []ExtendGroupStat `json:"groups,omitempty"`
	UnitChecked   bool              `json:"unit_checked,omitempty"`
	GroupsSkipped bool              `json:"groups_skipped,omitempty"`
	Skipped       bool              `json:"skipped,omitempty"`
}

// Step 实现 CheckResult
func (r *ExtendResult) Step() meta.CheckStep { return meta.StepExtendClassCheck }

// Findings 实现 CheckResult
func (r *ExtendResult) Findings() []Finding {
	if r.Skipped {
		return []Finding{finding(r.Step(), LevelWarning, "⚠️ 缺少 extend_class 栏位，无法检查扩充属性")}
	}

	status := &FindingTable{Headers: []string{"extend_class", "是否出现在资料表中"}}
	absent := make(map[string]bool, len(r.Absent))
	for _, c := range r.Absent {
		absent[c] = true
	}
	for _, c := range append(append([]string{}, r.Present...), r.Absent...) {
		mark := "✅"
		if absent[c] {
			mark = "❌"
		}
		status.Rows = append(status.Rows, []string{c, mark})
	}
	level := LevelPass
	if len(r.Absent) > 0 {
		level = LevelNotice
	}
	head := finding(r.Step(), level, "🔆 扩充属性出现状况（缺少 %d 个）", len(r.Absent))
	head.Table = status
	out := []Finding{head}

	if len(r.Unexpected) > 0 {
		out = append(out, finding(r.Step(), LevelNotice, "🔔 资料中有规范以外的扩充属性：%s", formatList(r.Unexpected)))
	}
	if r.GroupsSkipped {
		return out
	}

	headers := []string{"extend_class", "extend_subclass为空之列数", "extend_subclass为空比例"}
	if r.UnitChecked {
		headers = append(headers, "extend_unit为空之列数", "extend_unit为空比例")
	}
	groups := &FindingTable{Headers: headers}
	for _, g := range r.Groups {
		row := []string{g.Class, strconv.Itoa(g.SubclassNulls), g.SubclassPercent}
		if r.UnitChecked {
			row = append(row, strconv.Itoa(g.UnitNulls), g.UnitPercent)
		}
		groups.Rows = append(groups.Rows, row)
	}
	sub := finding(r.Step(), LevelInfo, "🔆 子扩充属性空值分析")
	sub.Table = groups
	return append(out, sub)
}

// CheckExtendClasses 检查扩充属性词汇与分组空值比例
func CheckExtendClasses(table *tabular.Table, schema *meta.Schema) *ExtendResult {
	result := &ExtendResult{Present: []string{}, Absent: []string{}, Unexpected: []string{}}
	if !table.HasColumn(meta.ColumnExtendClass) {
		result.Skipped = true
		return result
	}

	type group struct {
		rows, subclassNulls, unitNulls int
	}
	groups := make(map[string]*group)
	for r := 0; r < table.Len(); r++ {
		if table.IsNull(r, meta.ColumnExtendClass) {
			continue
		}
		class := table.String(r, meta.ColumnExtendClass)
		g, ok := groups[class]
		if !ok {
			g = &group{}
			groups[class] = g
		}
		g.rows++
		if table.IsNull(r, meta.ColumnExtendSubclass) {
			g.subclassNulls++
		}
		if table.IsNull(r, meta.ColumnExtendUnit) {
			g.unitNulls++
		}
	}

	vocabulary := make(map[string]struct{}, len(schema.ExtendVocabulary))
	for _, v := range schema.ExtendVocabulary {
		vocabulary[v] = struct{}{}
		if _, ok := groups[v]; ok {
			result.Present = append(result.Present, v)
		} else {
			result.Absent = append(result.Absent, v)
		}
	}

	classes := make([]string, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for _, c := range classes {
		if _, ok := vocabulary[c]; !ok {
			result.Unexpected = append(result.Unexpected, c)
		}
	}

	if schema.SkipExtendSubclassNulls {
		result.GroupsSkipped = true
		return result
	}
	result.UnitChecked = schema.ExtendUnitNulls
	for _, c := range classes {
		g := groups[c]
		stat := ExtendGroupStat{
			Class:           c,
			Rows:            g.rows,
			SubclassNulls:   g.subclassNulls,
			SubclassPercent: formatPercent(float64(g.subclassNulls) / float64(g.rows)),
		}
		if result.UnitChecked {
			stat.UnitNulls = g.unitNulls
			stat.UnitPercent = formatPercent(float64(g.unitNulls) / float64(g.rows))
		}
		result.Groups = append(result.Groups, stat)
	}
	return result
}
