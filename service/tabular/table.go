/*
 * @module service/tabular/table
 * @description 表格数据模型，提供栏位索引、单元格访问、空值判定与行筛选
 * @architecture 数据模型层
 * @documentReference SPEC_FULL.md
 * @stateFlow 解码 -> 构建表格 -> 检查步骤只读访问
 * @rules 空值统一以 nil 表示；不存在的栏位视为空值；检查过程中不修改表格
 * @dependencies github.com/spf13/cast
 * @refs service/tabular/decode.go, service/verification
 */

package tabular

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Cell 单元格值，nil 表示空值
type Cell = any

// naValues 解析为空值的字符串
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// ParseCell 将原始字符串转换为单元格值
func ParseCell(raw string) Cell {
	if _, ok := naValues[raw]; ok {
		return nil
	}
	return raw
}

// IsNull 判断单元格是否为空值
func IsNull(v Cell) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// FormatCell 将单元格转换为字符串，空值返回空字符串
func FormatCell(v Cell) string {
	if IsNull(v) {
		return ""
	}
	return cast.ToString(v)
}

// Table 表格数据
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell

	index map[string]int
}

// New 创建表格，短行以空值补齐
func New(name string, columns []string, rows [][]Cell) *Table {
	t := &Table{
		Name:    name,
		Columns: columns,
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		// 重复栏位以第一次出现为准
		if _, exists := t.index[c]; !exists {
			t.index[c] = i
		}
	}
	for i, row := range t.Rows {
		if len(row) < len(columns) {
			padded := make([]Cell, len(columns))
			copy(padded, row)
			t.Rows[i] = padded
		}
	}
	return t
}

// FromRecords 以字符串记录创建表格，使用 ParseCell 识别空值
func FromRecords(name string, header []string, records [][]string) *Table {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = cleanHeader(h)
	}
	rows := make([][]Cell, 0, len(records))
	for _, rec := range records {
		row := make([]Cell, len(columns))
		for i := range columns {
			if i < len(rec) {
				row[i] = ParseCell(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return New(name, columns, rows)
}

// cleanHeader 去除栏位名称的 BOM 与首尾空白
func cleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.TrimSpace(h)
}

// Len 返回资料列数
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn 判断栏位是否存在
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// HasColumns 判断全部栏位是否存在
func (t *Table) HasColumns(cols ...string) bool {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return false
		}
	}
	return true
}

// MissingColumns 返回不存在的栏位，保持输入顺序
func (t *Table) MissingColumns(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// ColumnIndex 返回栏位位置
func (t *Table) ColumnIndex(col string) (int, bool) {
	i, ok := t.index[col]
	return i, ok
}

// Value 返回单元格值，栏位不存在时 ok 为 false
func (t *Table) Value(row int, col string) (Cell, bool) {
	i, ok := t.index[col]
	if !ok {
		return nil, false
	}
	return t.Rows[row][i], true
}

// IsNull 判断单元格是否为空值，栏位不存在视为空值
func (t *Table) IsNull(row int, col string) bool {
	v, ok := t.Value(row, col)
	return !ok || IsNull(v)
}

// AnyNull 判断任一栏位是否为空值
func (t *Table) AnyNull(row int, cols ...string) bool {
	for _, c := range cols {
		if t.IsNull(row, c) {
			return true
		}
	}
	return false
}

// String 返回单元格的字符串形式，空值返回空字符串
func (t *Table) String(row int, col string) string {
	v, _ := t.Value(row, col)
	return FormatCell(v)
}

// Column 返回整栏的值，栏位不存在时返回 nil
func (t *Table) Column(col string) []Cell {
	i, ok := t.index[col]
	if !ok {
		return nil
	}
	out := make([]Cell, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Filter 返回满足条件的资料列组成的新表格，列数据与原表格共享
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([][]Cell, 0, len(t.Rows))
	for r := range t.Rows {
		if keep(r) {
			rows = append(rows, t.Rows[r])
		}
	}
	return &Table{
		Name:    t.Name,
		Columns: t.Columns,
		Rows:    rows,
		index:   t.index,
	}
}
