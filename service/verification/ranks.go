/*
 * @module service/verification/ranks
 * @description 名次验证：列出名次栏位的实际值域与规范值域
 * @architecture 纯函数检查步骤
 * @documentReference SPEC_FULL.md
 * @stateFlow 报表 + 名次栏位规范 -> 不重复的实际名次 -> 与 1..N ∪ {999} 比较
 * @rules
 *   - 整数值的数字统一为整数字串（5.0 -> "5"），空值显示为 nan
 *   - 只转换十进位数字文字，底线分隔、十六进位等写法视为文字
 *   - 只报告差异，不判定失败
 * @dependencies github.com/spf13/cast
 * @refs service/meta/report_schema.go
 */

package verification

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// RankCheck 单一名次栏位的验证结果
type RankCheck struct {
	Role         string   `json:"role"`
	Name         string   `json:"name"`
	Column       string   `json:"column"`
	Count        int      `json:"count"`
	Observed     []string `json:"observed"`
	Expected     []int    `json:"expected"`
	Unexpected   []string `json:"unexpected"`
	MissingRanks []int    `json:"missing_ranks"`
	Skipped      bool     `json:"skipped,omitempty"`
}

// RankResult 名次验证结果
type RankResult struct {
	Roles []RankCheck `json:"roles"`
}

// Step 实现 CheckResult
func (r *RankResult) Step() meta.CheckStep { return meta.StepRankVerification }

// Findings 实现 CheckResult
func (r *RankResult) Findings() []Finding {
	var out []Finding
	for _, rc := range r.Roles {
		if rc.Skipped {
			out = append(out, finding(r.Step(), LevelWarning, "⚠️ %s：缺少栏位 %s", rc.Name, rc.Column))
			continue
		}
		expected := make([]string, len(rc.Expected))
		for i, n := range rc.Expected {
			expected[i] = strconv.Itoa(n)
		}
		level := LevelInfo
		if len(rc.Unexpected) > 0 {
			level = LevelNotice
		}
		out = append(out,
			finding(r.Step(), level, "🔔 %s (%s)", rc.Name, rc.Column),
			finding(r.Step(), level, "- 资料中的名次：%s", formatList(rc.Observed)),
			finding(r.Step(), level, "- 规范名次：{%s}", strings.Join(expected, ", ")),
		)
	}
	return out
}

// VerifyRanks 收集各名次栏位的实际值域并与规范比较
func VerifyRanks(table *tabular.Table, schema *meta.Schema) *RankResult {
	result := &RankResult{Roles: make([]RankCheck, 0, len(schema.RankRoles))}
	for _, role := range schema.RankRoles {
		rc := RankCheck{
			Role:         role.Role,
			Name:         role.Name,
			Column:       role.Column,
			Count:        role.Count,
			Expected:     ExpectedRanks(role.Count),
			Observed:     []string{},
			Unexpected:   []string{},
			MissingRanks: []int{},
		}
		if !table.HasColumn(role.Column) {
			rc.Skipped = true
			result.Roles = append(result.Roles, rc)
			continue
		}

		seen := make(map[string]struct{})
		for _, v := range table.Column(role.Column) {
			s := NormalizeRank(v)
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			rc.Observed = append(rc.Observed, s)
		}
		sort.Strings(rc.Observed)

		expected := make(map[string]struct{}, len(rc.Expected))
		for _, n := range rc.Expected {
			key := strconv.Itoa(n)
			expected[key] = struct{}{}
			if _, ok := seen[key]; !ok {
				rc.MissingRanks = append(rc.MissingRanks, n)
			}
		}
		for _, s := range rc.Observed {
			if _, ok := expected[s]; !ok {
				rc.Unexpected = append(rc.Unexpected, s)
			}
		}
		result.Roles = append(result.Roles, rc)
	}
	return result
}

// ExpectedRanks 返回规范名次 1..n 与保留值 999
func ExpectedRanks(n int) []int {
	out := make([]int, 0, n+1)
	for i := 1; i <= n; i++ {
		out = append(out, i)
	}
	return append(out, meta.RankSentinel)
}

// decimalText 十进位数字文字
var decimalText = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// NormalizeRank 将名次值转为字串，整数值的数字去除小数部分
func NormalizeRank(v tabular.Cell) string {
	if tabular.IsNull(v) {
		return "nan"
	}
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	default:
		s = cast.ToString(x)
	}
	if !decimalText.MatchString(s) {
		return tabular.FormatCell(v)
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return tabular.FormatCell(v)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
