/*
 * @module service/verification/decimal
 * @description 小数点位数验证：解析 extend_stats JSON，检查 ratio 与 avg_price 的小数位数
 * @architecture 纯函数检查步骤
 * @documentReference SPEC_FULL.md
 * @stateFlow extend_stats 字串 -> JSON 物件 -> 展平键值 -> 小数位数判定
 * @rules
 *   - 数字保留原始字面值，不经浮点转换
 *   - 小数超过 3 位、小数以 0 结尾分别计数
 *   - 无法解析的资料列计入 MalformedRows 并略过，不中断检查
 *   - 报表没有 extend_stats 栏位时标记为不适用
 * @dependencies encoding/json
 * @refs service/verification/engine.go
 */

package verification

import (
	"encoding/json"
	"fmt"
	"strings"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// DecimalFields 需要检查小数位数的栏位
var DecimalFields = []string{"ratio", "avg_price"}

// MaxDecimalDigits 允许的最大小数位数
const MaxDecimalDigits = 3

// DecimalFieldStat 单一栏位的小数位数统计
type DecimalFieldStat struct {
	Field        string `json:"field"`
	Present      bool   `json:"present"`
	Checked      int    `json:"checked"`
	ExceedsThree int    `json:"exceeds_three"`
	TrailingZero int    `json:"trailing_zero"`
}

// DecimalResult 小数点位数验证结果
type DecimalResult struct {
	NotApplicable bool               `json:"not_applicable,omitempty"`
	Fields        []DecimalFieldStat `json:"fields,omitempty"`
	MalformedRows []int              `json:"malformed_rows,omitempty"`
}

// Step 实现 CheckResult
func (r *DecimalResult) Step() meta.CheckStep { return meta.StepDecimalCheck }

// Findings 实现 CheckResult
func (r *DecimalResult) Findings() []Finding {
	if r.NotApplicable {
		return []Finding{finding(r.Step(), LevelPass, "✅ 没有 extend_stats 栏位")}
	}
	var out []Finding
	if n := len(r.MalformedRows); n > 0 {
		out = append(out, finding(r.Step(), LevelWarning, "⚠️ extend_stats: %d 列无法解析为 JSON 物件，已略过", n))
	}
	for _, f := range r.Fields {
		if f.ExceedsThree > 0 {
			out = append(out, finding(r.Step(), LevelNotice, "🔔 extend_stats -> %s: %d 列超过 %d 位小数", f.Field, f.ExceedsThree, MaxDecimalDigits))
		}
		if f.TrailingZero > 0 {
			out = append(out, finding(r.Step(), LevelNotice, "🔔 extend_stats -> %s: %d 列小数以 0 结尾", f.Field, f.TrailingZero))
		}
	}
	return append(out, finding(r.Step(), LevelPass, "✅ 检查完成"))
}

// CheckDecimals 检查 extend_stats 中 ratio 与 avg_price 的小数位数
func CheckDecimals(table *tabular.Table) *DecimalResult {
	if !table.HasColumn(meta.ColumnExtendStats) {
		return &DecimalResult{NotApplicable: true}
	}

	stats := make([]DecimalFieldStat, len(DecimalFields))
	for i, f := range DecimalFields {
		stats[i].Field = f
	}
	result := &DecimalResult{}

	for r := 0; r < table.Len(); r++ {
		if table.IsNull(r, meta.ColumnExtendStats) {
			continue
		}
		payload, err := ParseStatsPayload(table.String(r, meta.ColumnExtendStats))
		if err != nil {
			result.MalformedRows = append(result.MalformedRows, r)
			continue
		}
		for i, field := range DecimalFields {
			v, ok := payload[field]
			if !ok {
				continue
			}
			stats[i].Present = true
			if v == "" {
				continue
			}
			stats[i].Checked++
			exceeds, trailing := DecimalAnomalies(v)
			if exceeds {
				stats[i].ExceedsThree++
			}
			if trailing {
				stats[i].TrailingZero++
			}
		}
	}

	for _, s := range stats {
		if s.Present {
			result.Fields = append(result.Fields, s)
		}
	}
	return result
}

// ParseStatsPayload 解析 extend_stats 并以点号展平巢状键；null 值以空字串表示
func ParseStatsPayload(raw string) (map[string]string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStatsPayload, err)
	}
	if obj == nil {
		return nil, ErrMalformedStatsPayload
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: 含有多余内容", ErrMalformedStatsPayload)
	}

	out := make(map[string]string)
	flatten("", obj, out)
	return out, nil
}

func flatten(prefix string, obj map[string]any, out map[string]string) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := v.(type) {
		case map[string]any:
			flatten(key, x, out)
		case nil:
			out[key] = ""
		case json.Number:
			out[key] = x.String()
		case string:
			out[key] = x
		default:
			out[key] = fmt.Sprint(x)
		}
	}
}

// DecimalAnomalies 判定数值字串是否超过 3 位小数、小数是否以 0 结尾
func DecimalAnomalies(value string) (exceedsThree, trailingZero bool) {
	parts := strings.Split(strings.TrimSpace(value), ".")
	if len(parts) < 2 {
		return false, false
	}
	frac := parts[1]
	return len(frac) > MaxDecimalDigits, frac != "" && strings.HasSuffix(frac, "0")
}
