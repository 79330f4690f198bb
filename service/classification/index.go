/*
 * @module service/classification/index
 * @description 分类索引，依分类表建立两层与三层分类组合键，提供成员判定与覆盖率检查所需的分类清单
 * @architecture 只读索引 - 每次验证建立一次，建立后不再修改
 * @documentReference SPEC_FULL.md
 * @stateFlow 分类表 -> 栏位校验 -> 组合键与分类清单 -> 只读查询
 * @rules
 *   - 组合键以底线连接：category_subcategory、category_subcategory_further_subcategory
 *   - 任一组成栏位为空的资料列不产生对应层级的组合键
 *   - 允许重复资料列，清单去重并保持首次出现顺序
 * @dependencies service/tabular, service/meta
 * @refs service/verification/classification_check.go, service/verification/coverage.go
 */

package classification

import (
	"errors"
	"fmt"
	"strings"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
)

// ErrMissingColumns 分类表缺少必要栏位
var ErrMissingColumns = errors.New("分类表缺少必要栏位")

// KeySeparator 组合键连接符
const KeySeparator = "_"

// Entry 分类组合
type Entry struct {
	Key   string   `json:"key"`
	Parts []string `json:"parts"`
}

// Stats 分类表各层级的不重复数量
type Stats struct {
	Categories           int `json:"categories"`
	Subcategories        int `json:"subcategories"`
	FurtherSubcategories int `json:"further_subcategories"`
}

// levelSet 单一层级的组合键集合
type levelSet struct {
	keys    map[string]struct{}
	tuples  map[string]struct{}
	entries []Entry
}

func newLevelSet() *levelSet {
	return &levelSet{
		keys:   make(map[string]struct{}),
		tuples: make(map[string]struct{}),
	}
}

func (s *levelSet) add(parts []string) {
	key := strings.Join(parts, KeySeparator)
	s.keys[key] = struct{}{}
	// 以不可见字元区分组成栏位，避免底线拼接造成的碰撞
	tuple := strings.Join(parts, "\x1f")
	if _, exists := s.tuples[tuple]; exists {
		return
	}
	s.tuples[tuple] = struct{}{}
	s.entries = append(s.entries, Entry{Key: key, Parts: parts})
}

// Index 分类索引
type Index struct {
	further *levelSet
	sub     *levelSet
	values  map[string][]string
	rows    int
}

// Columns 返回分类层级对应的组成栏位
func Columns(level meta.ClassificationMode) []string {
	if level == meta.ModeSubcategory {
		return []string{meta.ColumnCategory, meta.ColumnSubcategory}
	}
	return []string{meta.ColumnCategory, meta.ColumnSubcategory, meta.ColumnFurtherSubcategory}
}

// NewIndex 依分类表建立分类索引
func NewIndex(table *tabular.Table) (*Index, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: 分类表为空", ErrMissingColumns)
	}
	required := Columns(meta.ModeFurtherSubcategory)
	if missing := table.MissingColumns(required...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumns, missing)
	}

	idx := &Index{
		further: newLevelSet(),
		sub:     newLevelSet(),
		values:  make(map[string][]string, len(required)),
		rows:    table.Len(),
	}
	seen := make(map[string]map[string]struct{}, len(required))
	for _, col := range required {
		seen[col] = make(map[string]struct{})
	}

	for r := 0; r < table.Len(); r++ {
		for _, col := range required {
			if table.IsNull(r, col) {
				continue
			}
			v := table.String(r, col)
			if _, ok := seen[col][v]; !ok {
				seen[col][v] = struct{}{}
				idx.values[col] = append(idx.values[col], v)
			}
		}

		if table.AnyNull(r, meta.ColumnCategory, meta.ColumnSubcategory) {
			continue
		}
		c, s := table.String(r, meta.ColumnCategory), table.String(r, meta.ColumnSubcategory)
		idx.sub.add([]string{c, s})

		if table.IsNull(r, meta.ColumnFurtherSubcategory) {
			continue
		}
		idx.further.add([]string{c, s, table.String(r, meta.ColumnFurtherSubcategory)})
	}
	return idx, nil
}

func (i *Index) level(level meta.ClassificationMode) *levelSet {
	if level == meta.ModeSubcategory {
		return i.sub
	}
	return i.further
}

// HasFurtherSubcategory 判断三层分类组合是否存在
func (i *Index) HasFurtherSubcategory(category, subcategory, furtherSubcategory string) bool {
	return i.HasKey(meta.ModeFurtherSubcategory, strings.Join([]string{category, subcategory, furtherSubcategory}, KeySeparator))
}

// HasSubcategory 判断两层分类组合是否存在
func (i *Index) HasSubcategory(category, subcategory string) bool {
	return i.HasKey(meta.ModeSubcategory, category+KeySeparator+subcategory)
}

// HasKey 判断已连接的组合键是否存在
func (i *Index) HasKey(level meta.ClassificationMode, key string) bool {
	_, ok := i.level(level).keys[key]
	return ok
}

// FurtherSubcategoryKeys 返回全部三层组合键
func (i *Index) FurtherSubcategoryKeys() []string {
	return i.Keys(meta.ModeFurtherSubcategory)
}

// SubcategoryKeys 返回全部两层组合键
func (i *Index) SubcategoryKeys() []string {
	return i.Keys(meta.ModeSubcategory)
}

// Keys 返回指定层级的组合键
func (i *Index) Keys(level meta.ClassificationMode) []string {
	entries := i.level(level).entries
	out := make([]string, len(entries))
	for n, e := range entries {
		out[n] = e.Key
	}
	return out
}

// Entries 返回指定层级的分类组合
func (i *Index) Entries(level meta.ClassificationMode) []Entry {
	entries := i.level(level).entries
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Values 返回分类栏位的不重复值
func (i *Index) Values(column string) []string {
	v := i.values[column]
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Stats 返回各层级的不重复数量
func (i *Index) Stats() Stats {
	return Stats{
		Categories:           len(i.values[meta.ColumnCategory]),
		Subcategories:        len(i.values[meta.ColumnSubcategory]),
		FurtherSubcategories: len(i.values[meta.ColumnFurtherSubcategory]),
	}
}

// Count 返回指定分类栏位的不重复数量，非分类栏位返回 0
func (s Stats) Count(column string) int {
	switch column {
	case meta.ColumnCategory:
		return s.Categories
	case meta.ColumnSubcategory:
		return s.Subcategories
	case meta.ColumnFurtherSubcategory:
		return s.FurtherSubcategories
	default:
		return 0
	}
}

// Rows 返回分类表资料列数
func (i *Index) Rows() int {
	return i.rows
}
