/*
 * @module service/report/aggregator
 * @description 验证报告汇总：把检查结果整理为可序列化的验证报告，包含空值储存格、重复产品、分类覆盖、品牌交叉统计与摘要
 * @architecture 汇总器 - 只读取验证结果与报表，不修改任何输入
 * @documentReference SPEC_FULL.md
 * @stateFlow verification.Report + 报表 -> VerificationReport -> JSON
 * @rules
 *   - 缺少的检查结果以空值或空集合表示，不返回错误
 *   - 输出只包含原生类型（整数、浮点数、字串、map、slice）
 * @dependencies service/verification, service/tabular
 * @refs service/report/export.go, api/controllers/verify_controller.go, cmd/reportverify
 */

package report

import (
	"time"

	"reportverify-service/service/meta"
	"reportverify-service/service/tabular"
	"reportverify-service/service/verification"
)

// DuplicateSummary 重复产品摘要
type DuplicateSummary struct {
	Count   int      `json:"count"`
	Indices []string `json:"indices"`
}

// CoverageSection 分类覆盖区段
type CoverageSection struct {
	Result  []verification.CoverageRow  `json:"result"`
	Missing []string                    `json:"missing"`
	Stats   *verification.CoverageStats `json:"stats,omitempty"`
}

// BrandSection 品牌统计区段
type BrandSection struct {
	Counts map[string]int `json:"counts"`
	// Category 以分类值为键，值为各品牌的资料列数
	Category    map[string]map[string]int `json:"category"`
	Subcategory map[string]map[string]int `json:"subcategory"`
}

// Summary 报告摘要
type Summary struct {
	TotalEmptyCells int   `json:"total_empty_cells"`
	TotalDuplicates int   `json:"total_duplicates"`
	CoveragePassed  *bool `json:"coverage_passed"`
	Warnings        int   `json:"warnings"`
	Notices         int   `json:"notices"`
}

// VerificationReport 验证报告
type VerificationReport struct {
	RunID             string                                      `json:"run_id"`
	ReportType        meta.ReportType                             `json:"report_type"`
	FileName          string                                      `json:"file_name,omitempty"`
	GeneratedAt       time.Time                                   `json:"generated_at"`
	Rows              int                                         `json:"rows"`
	EmptyCells        map[string]int                              `json:"empty_cells"`
	DuplicateProducts DuplicateSummary                            `json:"duplicate_products"`
	CategoryCoverage  CoverageSection                             `json:"category_coverage"`
	Brands            BrandSection                                `json:"brands"`
	Checks            map[meta.CheckStep]verification.CheckResult `json:"checks"`
	Summary           Summary                                     `json:"summary"`
}

// Aggregator 验证报告汇总器
type Aggregator struct {
	now func() time.Time
}

// AggregatorOption 汇总器配置选项
type AggregatorOption func(*Aggregator)

// WithClock 设置时间来源
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAggregator 创建验证报告汇总器
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate 汇总验证结果，run 或 table 为空时对应区段为空
func (a *Aggregator) Aggregate(run *verification.Report, table *tabular.Table) *VerificationReport {
	vr := &VerificationReport{
		GeneratedAt: a.now(),
		EmptyCells:  map[string]int{},
		DuplicateProducts: DuplicateSummary{
			Indices: []string{},
		},
		CategoryCoverage: CoverageSection{
			Result:  []verification.CoverageRow{},
			Missing: []string{},
		},
		Brands: BrandSection{
			Counts:      map[string]int{},
			Category:    map[string]map[string]int{},
			Subcategory: map[string]map[string]int{},
		},
		Checks: map[meta.CheckStep]verification.CheckResult{},
	}

	if table != nil {
		vr.Rows = table.Len()
		vr.EmptyCells = EmptyCells(table)
		vr.Brands = Brands(table)
	}

	if run != nil {
		vr.RunID = run.RunID
		vr.ReportType = run.ReportType
		vr.FileName = run.FileName
		vr.Rows = run.Rows
		for _, res := range run.Results() {
			vr.Checks[res.Step()] = res
		}
		if dup, ok := verification.ResultOf[*verification.DuplicateResult](run); ok {
			vr.DuplicateProducts = DuplicateSummary{Count: dup.Count, Indices: append([]string{}, dup.IDs...)}
		}
		if cov, ok := verification.ResultOf[*verification.CoverageResult](run); ok && !cov.Skipped {
			vr.CategoryCoverage = CoverageSection{
				Result:  append([]verification.CoverageRow{}, cov.Rows...),
				Missing: append([]string{}, cov.Missing...),
				Stats:   cov.Stats,
			}
			if cov.Stats != nil {
				passed := cov.Stats.Passed
				vr.Summary.CoveragePassed = &passed
			}
		}
		vr.Summary.Warnings = run.CountFindings(verification.LevelWarning)
		vr.Summary.Notices = run.CountFindings(verification.LevelNotice)
	}

	for _, n := range vr.EmptyCells {
		vr.Summary.TotalEmptyCells += n
	}
	vr.Summary.TotalDuplicates = vr.DuplicateProducts.Count
	return vr
}

// EmptyCells 统计报表全部栏位的空值数量，只保留大于 0 的栏位
func EmptyCells(table *tabular.Table) map[string]int {
	out := make(map[string]int)
	for _, col := range table.Columns {
		if _, done := out[col]; done {
			continue
		}
		n := 0
		for r := 0; r < table.Len(); r++ {
			if table.IsNull(r, col) {
				n++
			}
		}
		if n > 0 {
			out[col] = n
		}
	}
	return out
}

// Brands 统计品牌数量与品牌对分类的交叉数量，报表没有 brand 栏位时返回空区段
func Brands(table *tabular.Table) BrandSection {
	section := BrandSection{
		Counts:      map[string]int{},
		Category:    map[string]map[string]int{},
		Subcategory: map[string]map[string]int{},
	}
	if !table.HasColumn(meta.ColumnBrand) {
		return section
	}

	for r := 0; r < table.Len(); r++ {
		if table.IsNull(r, meta.ColumnBrand) {
			continue
		}
		brand := table.String(r, meta.ColumnBrand)
		section.Counts[brand]++
		crossCount(section.Category, table, r, meta.ColumnCategory, brand)
		crossCount(section.Subcategory, table, r, meta.ColumnSubcategory, brand)
	}
	return section
}

func crossCount(dst map[string]map[string]int, table *tabular.Table, r int, column, brand string) {
	if table.IsNull(r, column) {
		return
	}
	v := table.String(r, column)
	if dst[v] == nil {
		dst[v] = map[string]int{}
	}
	dst[v][brand]++
}
