/*
 * @module service/verification/checks_test
 * @description 各检查步骤的单元测试
 * @architecture 单元测试 - 表格驱动
 * @documentReference SPEC_FULL.md
 * @stateFlow 构造报表与分类索引 -> 执行检查 -> 验证结果
 * @rules 覆盖正常路径、空值、缺少栏位与错误场景
 * @dependencies github.com/stretchr/testify, testutil
 * @refs columns.go, duplicates.go, classification_check.go, coverage.go, ranks.go, extend.go, decimal.go, search_volume.go
 */

package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
	"reportverify-service/testutil"
)

func schemaOf(t *testing.T, rt meta.ReportType) *meta.Schema {
	t.Helper()
	s, err := meta.DefaultRegistry().Lookup(rt)
	require.NoError(t, err)
	return s
}

func TestCheckColumns(t *testing.T) {
	schema := &meta.Schema{RequiredColumns: []string{"id", "category", "brand"}}

	res := CheckColumns(testutil.NewTable([]string{"id", "category", "brand", "extra"}).Build(), schema)
	assert.True(t, res.Passed)
	assert.Empty(t, res.Missing)
	require.Len(t, res.Findings(), 1)
	assert.Equal(t, LevelPass, res.Findings()[0].Level)

	res = CheckColumns(testutil.NewTable([]string{"category"}).Build(), schema)
	assert.False(t, res.Passed)
	assert.Equal(t, []string{"id", "brand"}, res.Missing)
	findings := res.Findings()
	require.Len(t, findings, 2)
	assert.Equal(t, "⚠️ missing column: id", findings[0].Message)
	assert.Equal(t, LevelWarning, findings[1].Level)
}

func TestAnalyzeNulls(t *testing.T) {
	schema := &meta.Schema{RequiredColumns: []string{"id", "brand", "absent"}}
	table := testutil.NewTable([]string{"id", "brand"}).
		Row("1", "Acme").
		Row("2", nil).
		Row("3", nil).
		Row("4", "Beta").
		Build()

	res, err := AnalyzeNulls(table, schema)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Columns, 3)

	assert.Equal(t, NullStat{Column: "id", Count: 0, Proportion: 0, Percent: "0.00 %"}, res.Columns[0])
	assert.Equal(t, 2, res.Columns[1].Count)
	assert.Equal(t, "50.00 %", res.Columns[1].Percent)
	assert.True(t, res.Columns[2].Absent)
	assert.Equal(t, 4, res.Columns[2].Count)
	assert.Equal(t, "100.00 %", res.Columns[2].Percent)

	findings := res.Findings()
	require.Len(t, findings, 2)
	assert.Equal(t, "📊 总列数：4", findings[0].Message)
	require.NotNil(t, findings[1].Table)
	assert.Equal(t, []string{"brand", "2", "50.00 %"}, findings[1].Table.Rows[1])
}

func TestAnalyzeNulls_EmptyTable(t *testing.T) {
	schema := &meta.Schema{RequiredColumns: []string{"id"}}
	_, err := AnalyzeNulls(testutil.NewTable([]string{"id"}).Build(), schema)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestAnalyzeDuplicates_Products(t *testing.T) {
	table := testutil.NewTable([]string{"id", "source_product_id"}).
		Row("r1", "P1").
		Row("r2", "P1").
		Row("r3", "P2").
		Build()

	res, err := AnalyzeDuplicates(table, schemaOf(t, meta.ReportProducts))
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, res.IDs)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, LevelNotice, res.Findings()[0].Level)
}

func TestAnalyzeDuplicates_ProductsExtend(t *testing.T) {
	table := testutil.NewTable([]string{"id", "source_product_id", "extend_class", "extend_subclass", "extend_detail"}).
		Row("e1", "P1", "材質", nil, "木").
		Row("e2", "P1", "材質", nil, "木").
		Row("e3", "P1", "材質", "部件", "木").
		Row("e4", "P1", "色彩", nil, "木").
		Row("e5", "P1", "材質", nil, "木").
		Build()

	res, err := AnalyzeDuplicates(table, schemaOf(t, meta.ReportProductsExtend))
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e5"}, res.IDs)
}

func TestAnalyzeDuplicates_NoDuplicates(t *testing.T) {
	table := testutil.NewTable([]string{"id", "source_product_id"}).
		Row("r1", "P1").
		Row("r2", "P2").
		Build()

	res, err := AnalyzeDuplicates(table, schemaOf(t, meta.ReportProducts))
	require.NoError(t, err)
	assert.Empty(t, res.IDs)
	assert.Equal(t, "✅ 没有重复的产品资料", res.Findings()[0].Message)
}

func TestAnalyzeDuplicates_Errors(t *testing.T) {
	_, err := AnalyzeDuplicates(testutil.NewTable([]string{"id"}).Build(), schemaOf(t, meta.ReportChartBrand))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	res, err := AnalyzeDuplicates(testutil.NewTable([]string{"id"}).Row("r1").Build(), schemaOf(t, meta.ReportProducts))
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, []string{"source_product_id"}, res.MissingColumns)
}

func TestCheckClassification_FurtherSubcategory(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"id", "category", "subcategory", "further_subcategory"}).
		Row("a", "家電", "廚房家電", "電鍋").
		Row("b", "家電", "廚房家電", "烤箱").
		Row("c", "家電", nil, "烤箱").
		Row("d", "美妝", "保養", "乳液").
		Build()

	res, err := CheckClassification(table, idx, meta.ModeFurtherSubcategory)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"b"}, res.IDs)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 25.0, res.Percent)
	assert.Equal(t, "🔔 共有 1 笔资料的分类组合不存在于分类资料表中，占总资料的 25.00%", res.Findings()[0].Message)
}

func TestCheckClassification_IdentifierFallback(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	tests := []struct {
		name    string
		columns []string
		rows    [][]tabular.Cell
		count   int
		ids     []string
	}{
		{
			name:    "使用 references_id",
			columns: []string{"references_id", "category", "subcategory", "further_subcategory"},
			rows:    [][]tabular.Cell{{"ref-1", "x", "y", "z"}, {"ref-2", "家電", "廚房家電", "電鍋"}},
			count:   1,
			ids:     []string{"ref-1"},
		},
		{
			name:    "没有识别码栏位只计数",
			columns: []string{"category", "subcategory", "further_subcategory"},
			rows:    [][]tabular.Cell{{"x", "y", "z"}, {"x", "y", "w"}},
			count:   2,
			ids:     []string{},
		},
		{
			name:    "识别码为空只计数",
			columns: []string{"id", "category", "subcategory", "further_subcategory"},
			rows:    [][]tabular.Cell{{nil, "x", "y", "z"}, {"i2", "x", "y", "z"}},
			count:   2,
			ids:     []string{"i2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := tabular.New("report.csv", tt.columns, tt.rows)
			res, err := CheckClassification(table, idx, meta.ModeFurtherSubcategory)
			require.NoError(t, err)
			assert.Equal(t, tt.count, res.Count)
			assert.Equal(t, tt.ids, res.IDs)
		})
	}
}

func TestCheckClassification_Mixed(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"id", "category", "subcategory", "further_subcategory", "stats_type"}).
		Row("a", "家電", "廚房家電", "電鍋", "further_subcategory").
		Row("b", "家電", "廚房家電", "烤箱", "further_subcategory").
		Row("c", "家電", "廚房家電", nil, "subcategory").
		Row("d", "家電", "冷氣", nil, "subcategory").
		Row("e", "家電", "冷氣", "窗型", "other").
		Build()

	res, err := CheckClassification(table, idx, meta.ModeMixed)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d"}, res.IDs)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 40.0, res.Percent)
}

func TestCheckClassification_Subcategory(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"id", "category", "subcategory"}).
		Row("a", "家電", "生活家電").
		Row("b", "美妝", "彩妝").
		Row("c", "美妝", "保養").
		Build()

	res, err := CheckClassification(table, idx, meta.ModeSubcategory)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, res.IDs)
	assert.Equal(t, 33.33, res.Percent)
}

func TestCheckClassification_Errors(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	_, err := CheckClassification(testutil.NewTable([]string{"id"}).Build(), idx, meta.ModeFurtherSubcategory)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = CheckClassification(testutil.NewTable([]string{"id"}).Row("a").Build(), idx, "weird")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	res, err := CheckClassification(testutil.NewTable([]string{"id", "category"}).Row("a", "家電").Build(), idx, meta.ModeSubcategory)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, []string{"subcategory"}, res.MissingColumns)
}

func TestCheckClassificationPartitioned(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"category", "subcategory", "further_subcategory", "is_brand"}).
		Row("家電", "廚房家電", "電鍋", "True").
		Row("家電", "廚房家電", "烤箱", "True").
		Row("家電", "廚房家電", "烤箱", "False").
		Row("家電", "廚房家電", "電鍋", "0").
		Build()

	res, err := CheckClassificationPartitioned(table, idx, meta.ModeFurtherSubcategory, "is_brand")
	require.NoError(t, err)
	require.Len(t, res.Partitions, 2)
	assert.Equal(t, "is_brand = true", res.Partitions[0].Label)
	assert.Equal(t, 2, res.Partitions[0].Total)
	assert.Equal(t, 1, res.Partitions[0].Count)
	assert.Equal(t, 1, res.Partitions[1].Count)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 50.0, res.Percent)
	assert.Len(t, res.Findings(), 2)
}

func TestCheckClassificationPartitioned_EmptyPartition(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"category", "subcategory", "further_subcategory", "is_brand"}).
		Row("家電", "廚房家電", "電鍋", "1").
		Build()

	res, err := CheckClassificationPartitioned(table, idx, meta.ModeFurtherSubcategory, "is_brand")
	require.NoError(t, err)
	require.Len(t, res.Partitions, 2)
	assert.False(t, res.Partitions[0].Skipped)
	assert.True(t, res.Partitions[1].Skipped)
	assert.Equal(t, 0, res.Count)
}

func TestCheckCoverage_EndToEnd(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"id", "category", "subcategory", "further_subcategory"}).
		Row("1", "家電", "廚房家電", "電鍋").
		Row("2", "家電", "廚房家電", "電鍋").
		Row("3", "家電", "廚房家電", "氣炸鍋").
		Row("4", "美妝", "保養", "乳液").
		Row("5", "美妝", "保養", nil).
		Build()

	res := CheckCoverage(table, idx, meta.ModeFurtherSubcategory)
	assert.False(t, res.Skipped)
	require.Len(t, res.Rows, 4)
	assert.Equal(t, []string{"家電_生活家電_吸塵器"}, res.Missing)
	assert.Equal(t, CoverageRow{Key: "家電_廚房家電_電鍋", Count: 2}, res.Rows[0])

	zero := ZeroCountKeys(res.Rows)
	assert.Len(t, zero, 1)
	assert.True(t, zero["家電_生活家電_吸塵器"])

	findings := res.Findings()
	require.NotEmpty(t, findings)
	require.NotNil(t, findings[0].Table)
	assert.Equal(t, []int{2}, findings[0].Table.Highlight)
}

func TestCheckCoverage_FullCoverage(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	b := testutil.NewTable([]string{"category", "subcategory", "further_subcategory"})
	for _, e := range f.DefaultEntries() {
		b.Row(e[0], e[1], e[2])
	}

	res := CheckCoverage(b.Build(), idx, meta.ModeFurtherSubcategory)
	assert.Empty(t, res.Missing)
	assert.Empty(t, ZeroCountKeys(res.Rows))
}

func TestCheckCoverage_Subcategory(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"category", "subcategory"}).
		Row("家電", "廚房家電").
		Build()

	res := CheckCoverage(table, idx, meta.ModeSubcategory)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, []string{"家電_生活家電", "美妝_保養"}, res.Missing)
}

func TestCheckCoverage_MissingColumns(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"id", "category"}).Row("1", "家電").Build()

	res := CheckCoverage(table, idx, meta.ModeFurtherSubcategory)
	assert.True(t, res.Skipped)
	assert.Empty(t, res.Missing)
	assert.Nil(t, res.Rows)
	assert.Equal(t, []string{"subcategory", "further_subcategory"}, res.MissingColumns)
}

func TestCoverageStatistics(t *testing.T) {
	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)

	table := testutil.NewTable([]string{"category", "subcategory", "further_subcategory"}).
		Row("家電", "廚房家電", "電鍋").
		Row("家電", "廚房家電", "氣炸鍋").
		Row("美妝", "保養", "乳液").
		Build()

	stats := CoverageStatistics(table, idx, 0.7)
	require.Len(t, stats.Levels, 3)
	assert.Equal(t, 2, stats.Levels[0].Covered)
	assert.Equal(t, 1.0, stats.Levels[0].Ratio)
	assert.Equal(t, 2, stats.Levels[1].Covered)
	assert.Equal(t, 3, stats.Levels[1].Total)
	assert.Equal(t, 3, stats.Levels[2].Covered)
	assert.Equal(t, 0.75, stats.Levels[2].Ratio)
	assert.False(t, stats.Passed)

	totals := idx.Stats()
	for _, lv := range stats.Levels {
		assert.Equal(t, totals.Count(lv.Level), lv.Total, lv.Level)
	}

	stats = CoverageStatistics(table, idx, 0.6)
	assert.True(t, stats.Passed)
}

func TestVerifyRanks(t *testing.T) {
	schema := &meta.Schema{RankRoles: []meta.RankRole{
		{Role: "brand", Name: "品牌排名", Column: "brand_rank", Count: 3},
		{Role: "factor_stats", Name: "因素统计排名", Column: "extend_detail_rank", Count: 2},
	}}
	table := testutil.NewTable([]string{"brand_rank"}).
		Row("1").
		Row("2").
		Row(2.0).
		Row("999").
		Build()

	res := VerifyRanks(table, schema)
	require.Len(t, res.Roles, 2)

	brand := res.Roles[0]
	assert.Equal(t, []string{"1", "2", "999"}, brand.Observed)
	assert.Equal(t, []int{1, 2, 3, 999}, brand.Expected)
	assert.Empty(t, brand.Unexpected)
	assert.Equal(t, []int{3}, brand.MissingRanks)

	assert.True(t, res.Roles[1].Skipped)
	assert.Len(t, res.Findings(), 4)
}

func TestNormalizeRank(t *testing.T) {
	tests := []struct {
		name     string
		value    tabular.Cell
		expected string
	}{
		{"整数字串", "5", "5"},
		{"浮点整数字串", "5.0", "5"},
		{"浮点数", 3.0, "3"},
		{"整数", 7, "7"},
		{"非整数", "2.5", "2.5"},
		{"文字", "N/R", "N/R"},
		{"空值", nil, "nan"},
		{"前后空白", " 10 ", "10"},
		{"底线分隔视为文字", "1_0", "1_0"},
		{"十六进位视为文字", "0x10", "0x10"},
		{"科学记号", "1e2", "100"},
		{"无穷大视为文字", "inf", "inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRank(tt.value))
		})
	}
}

func TestVerifyRanks_Unexpected(t *testing.T) {
	schema := &meta.Schema{RankRoles: []meta.RankRole{{Role: "brand", Name: "品牌排名", Column: "brand_rank", Count: 2}}}
	table := testutil.NewTable([]string{"brand_rank"}).Row("1").Row("10").Row(nil).Build()

	res := VerifyRanks(table, schema)
	assert.Equal(t, []string{"1", "10", "nan"}, res.Roles[0].Observed)
	assert.Equal(t, []string{"10", "nan"}, res.Roles[0].Unexpected)
	assert.Equal(t, []int{2, 999}, res.Roles[0].MissingRanks)
}

func TestCheckExtendClasses(t *testing.T) {
	schema := &meta.Schema{
		Type:             meta.ReportProductsExtend,
		ExtendVocabulary: []string{"材質", "色彩", "尺寸"},
		ExtendUnitNulls:  true,
	}
	table := testutil.NewTable([]string{"extend_class", "extend_subclass", "extend_unit"}).
		Row("色彩", nil, "cm").
		Row("材質", "部件", nil).
		Row("材質", nil, nil).
		Row("其他", "x", "kg").
		Row(nil, nil, nil).
		Build()

	res := CheckExtendClasses(table, schema)
	assert.Equal(t, []string{"材質", "色彩"}, res.Present)
	assert.Equal(t, []string{"尺寸"}, res.Absent)
	assert.Equal(t, []string{"其他"}, res.Unexpected)
	assert.True(t, res.UnitChecked)
	require.Len(t, res.Groups, 3)

	// 分组依 extend_class 排序
	assert.Equal(t, "其他", res.Groups[0].Class)
	material := res.Groups[1]
	assert.Equal(t, "材質", material.Class)
	assert.Equal(t, 2, material.Rows)
	assert.Equal(t, 1, material.SubclassNulls)
	assert.Equal(t, "50.00 %", material.SubclassPercent)
	assert.Equal(t, 2, material.UnitNulls)
	assert.Equal(t, "100.00 %", material.UnitPercent)

	findings := res.Findings()
	require.Len(t, findings, 3)
	assert.Equal(t, LevelNotice, findings[0].Level)
	assert.Len(t, findings[2].Table.Headers, 5)
}

func TestCheckExtendClasses_SkipGroups(t *testing.T) {
	table := testutil.NewTable([]string{"extend_class"}).Row("正面留言因素").Build()

	res := CheckExtendClasses(table, schemaOf(t, meta.ReportChartBrandCommentCounts))
	assert.True(t, res.GroupsSkipped)
	assert.Empty(t, res.Groups)
	assert.Equal(t, []string{"負面留言因素"}, res.Absent)

	res = CheckExtendClasses(testutil.NewTable([]string{"id"}).Build(), schemaOf(t, meta.ReportChartOthers))
	assert.True(t, res.Skipped)
}

func TestCheckExtendClasses_NoUnitForCharts(t *testing.T) {
	table := testutil.NewTable([]string{"extend_class", "extend_subclass"}).Row("配件", nil).Build()

	res := CheckExtendClasses(table, schemaOf(t, meta.ReportChartOthers))
	assert.False(t, res.UnitChecked)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "", res.Groups[0].UnitPercent)
}

func TestDecimalAnomalies(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		exceeds  bool
		trailing bool
	}{
		{"超过三位小数", "0.1234", true, false},
		{"以 0 结尾", "0.500", false, true},
		{"正常", "0.12", false, false},
		{"全为 0", "5.00", false, true},
		{"整数", "5", false, false},
		{"超过三位且以 0 结尾", "1.23450", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exceeds, trailing := DecimalAnomalies(tt.value)
			assert.Equal(t, tt.exceeds, exceeds)
			assert.Equal(t, tt.trailing, trailing)
		})
	}
}

func TestCheckDecimals(t *testing.T) {
	table := testutil.NewTable([]string{"id", "extend_stats"}).
		Row("1", `{"ratio": 0.1234, "avg_price": 100.5}`).
		Row("2", `{"ratio": "0.500", "avg_price": 99}`).
		Row("3", `{"ratio": 0.12}`).
		Row("4", `not json`).
		Row("5", nil).
		Row("6", `{"nested": {"ratio": 1.00000}, "ratio": null}`).
		Build()

	res := CheckDecimals(table)
	assert.False(t, res.NotApplicable)
	assert.Equal(t, []int{3}, res.MalformedRows)
	require.Len(t, res.Fields, 2)

	ratio := res.Fields[0]
	assert.Equal(t, "ratio", ratio.Field)
	assert.Equal(t, 3, ratio.Checked)
	assert.Equal(t, 1, ratio.ExceedsThree)
	assert.Equal(t, 1, ratio.TrailingZero)

	avg := res.Fields[1]
	assert.Equal(t, 2, avg.Checked)
	assert.Equal(t, 0, avg.ExceedsThree)
	assert.Equal(t, 0, avg.TrailingZero)

	findings := res.Findings()
	assert.Equal(t, LevelWarning, findings[0].Level)
	assert.Equal(t, "✅ 检查完成", findings[len(findings)-1].Message)
}

func TestCheckDecimals_NotApplicable(t *testing.T) {
	res := CheckDecimals(testutil.NewTable([]string{"id"}).Row("1").Build())
	assert.True(t, res.NotApplicable)
	assert.Equal(t, "✅ 没有 extend_stats 栏位", res.Findings()[0].Message)
}

func TestParseStatsPayload(t *testing.T) {
	payload, err := ParseStatsPayload(`{"a": {"b": 1.50}, "c": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, "1.50", payload["a.b"])
	assert.Equal(t, "x", payload["c"])

	_, err = ParseStatsPayload(`[1, 2]`)
	assert.ErrorIs(t, err, ErrMalformedStatsPayload)

	_, err = ParseStatsPayload(`null`)
	assert.ErrorIs(t, err, ErrMalformedStatsPayload)
}

func TestCheckSearchVolume(t *testing.T) {
	table := testutil.NewTable([]string{"keyword", "search_volume"}).
		Row("a", "0").
		Row("b", "0.0").
		Row("c", nil).
		Row("d", " ").
		Row("e", "120").
		Row("f", "0.00").
		Build()

	res := CheckSearchVolume(table)
	assert.Equal(t, 5, res.ZeroRows)
	assert.Equal(t, LevelNotice, res.Findings()[0].Level)

	res = CheckSearchVolume(testutil.NewTable([]string{"keyword"}).Build())
	assert.True(t, res.Skipped)
}
