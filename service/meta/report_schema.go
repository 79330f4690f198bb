/*
 * @module service/meta/report_schema
 * @description 报表种类与报表规范元数据，包括必要栏位、检查步骤、名次栏位规范、扩充属性词汇
 * @architecture 元数据层
 * @documentReference SPEC_FULL.md
 * @stateFlow 静态元数据定义 -> Registry 校验 -> 只读查询
 * @rules 报表规范为配置数据，检查步骤由数据驱动而非按报表种类硬编码分支
 * @dependencies 无
 * @refs service/meta/check_steps.go, service/verification/engine.go
 */

package meta

import (
	"errors"
	"fmt"
	"strings"
)

// ReportType 报表种类标识
type ReportType string

const (
	ReportProducts                ReportType = "products"
	ReportProductsExtend          ReportType = "products_extend"
	ReportChartBrand              ReportType = "chart_brand"
	ReportChartBrandExtend        ReportType = "chart_brand_extend"
	ReportChartBrandExtendCross   ReportType = "chart_brand_extend_cross"
	ReportChartBrandExtendImage   ReportType = "chart_brand_extend_image"
	ReportChartBrandCommentCounts ReportType = "chart_brand_comment_counts"
	ReportChartBrandCommentScore  ReportType = "chart_brand_comment_score"
	ReportChartOthers             ReportType = "chart_others"
	ReportChartTrends             ReportType = "chart_trends"
	ReportReference               ReportType = "reference"
	ReportKeyword                 ReportType = "keyword"
)

// ClassificationMode 分类检查粒度
type ClassificationMode string

const (
	ModeFurtherSubcategory ClassificationMode = "further_subcategory"
	ModeSubcategory        ClassificationMode = "subcategory"
	ModeMixed              ClassificationMode = "mixed"
)

// 分类相关栏位
const (
	ColumnCategory           = "category"
	ColumnSubcategory        = "subcategory"
	ColumnFurtherSubcategory = "further_subcategory"
	ColumnDomain             = "domain"
	ColumnStatsType          = "stats_type"
	ColumnID                 = "id"
	ColumnReferencesID       = "references_id"
	ColumnExtendClass        = "extend_class"
	ColumnExtendSubclass     = "extend_subclass"
	ColumnExtendUnit         = "extend_unit"
	ColumnExtendStats        = "extend_stats"
	ColumnSourceProductID    = "source_product_id"
	ColumnBrand              = "brand"
	ColumnSearchVolume       = "search_volume"
	ColumnIsBrand            = "is_brand"
)

// RankSentinel 名次保留值，代表未排名或其他
const RankSentinel = 999

// ErrUnknownReportType 未知的报表种类
var ErrUnknownReportType = errors.New("未知的报表种类")

// RankRole 名次栏位规范
type RankRole struct {
	Role   string `json:"role"`
	Name   string `json:"name"`
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Schema 报表规范
type Schema struct {
	Type                    ReportType         `json:"type"`
	RequiredColumns         []string           `json:"required_columns"`
	Steps                   []CheckStep        `json:"steps"`
	ClassificationMode      ClassificationMode `json:"classification_mode"`
	PartitionColumn         string             `json:"partition_column,omitempty"`
	CoverageLevel           ClassificationMode `json:"coverage_level"`
	DuplicateKey            []string           `json:"duplicate_key,omitempty"`
	RankRoles               []RankRole         `json:"rank_roles,omitempty"`
	ExtendVocabulary        []string           `json:"extend_vocabulary,omitempty"`
	ExtendUnitNulls         bool               `json:"extend_unit_nulls,omitempty"`
	SkipExtendSubclassNulls bool               `json:"skip_extend_subclass_nulls,omitempty"`
}

// HasStep 判断规范是否包含指定步骤
func (s *Schema) HasStep(step CheckStep) bool {
	for _, st := range s.Steps {
		if st == step {
			return true
		}
	}
	return false
}

// 名次角色
var (
	rankBrand = func(n int) RankRole {
		return RankRole{Role: "brand", Name: "品牌排名", Column: "brand_rank", Count: n}
	}
	rankFactorStats = func(n int) RankRole {
		return RankRole{Role: "factor_stats", Name: "因素统计排名", Column: "extend_detail_rank", Count: n}
	}
	rankFactorAlphabet = func(n int) RankRole {
		return RankRole{Role: "factor_alphabet", Name: "因素名称排名", Column: "extend_detail_rank_ordinal", Count: n}
	}
)

// chartSteps 图表类报表的完整步骤
var chartSteps = []CheckStep{
	StepColumnAssertion,
	StepNullAnalysis,
	StepClassificationCheck,
	StepCategoryCoverage,
	StepRankVerification,
	StepExtendClassCheck,
	StepDecimalCheck,
}

// commentFactors 留言因素词汇
var commentFactors = []string{"正面留言因素", "負面留言因素"}

// DefaultSchemas 默认报表规范，顺序即报表种类的展示顺序（第一项为默认值）
var DefaultSchemas = []Schema{
	{
		Type: ReportProducts,
		RequiredColumns: []string{
			"domain", "category", "subcategory", "further_subcategory", "brand",
			"list_price", "sale_price", "sales_volume", "best_sellers_rank",
			"accessories", "url", "image_url_1", "source",
		},
		Steps: []CheckStep{
			StepColumnAssertion, StepNullAnalysis, StepDuplicateAnalysis,
			StepClassificationCheck, StepCategoryCoverage,
		},
		ClassificationMode: ModeFurtherSubcategory,
		DuplicateKey:       []string{ColumnSourceProductID},
	},
	{
		Type: ReportProductsExtend,
		RequiredColumns: []string{
			"source_product_id", "extend_class", "extend_subclass", "extend_detail_raw",
			"extend_detail", "extend_unit", "source", "domain", "category",
			"subcategory", "further_subcategory",
		},
		Steps: []CheckStep{
			StepColumnAssertion, StepNullAnalysis, StepDuplicateAnalysis,
			StepClassificationCheck, StepCategoryCoverage, StepExtendClassCheck,
		},
		ClassificationMode: ModeFurtherSubcategory,
		DuplicateKey:       []string{ColumnSourceProductID, ColumnExtendClass, ColumnExtendSubclass, "extend_detail"},
		ExtendVocabulary: []string{
			"適用環境", "使用情境", "功能", "功能_相機規格", "訴求", "保固", "風格", "色彩",
			"材質", "材質_部件材質", "尺寸", "尺寸_部件尺寸", "尺寸_收納尺寸", "重量", "效能",
			"容量", "族群",
		},
		ExtendUnitNulls: true,
	},
	{
		Type: ReportChartBrand,
		RequiredColumns: []string{
			"id", "category", "subcategory", "further_subcategory", "brand", "brand_rank",
			"amount", "product_sales", "sales_ratio", "sales_ranking", "ranking_ratio",
			"highest_price", "lowest_price", "average_price", "average_discounted_price",
			"amount_of_positive_comment", "amount_of_negative_comment",
			"score_of_positive_comment", "score_of_negative_comment", "stats_type", "source",
		},
		Steps: []CheckStep{
			StepColumnAssertion, StepNullAnalysis, StepClassificationCheck,
			StepCategoryCoverage, StepRankVerification,
		},
		ClassificationMode: ModeMixed,
		RankRoles:          []RankRole{rankBrand(10)},
	},
	{
		Type: ReportChartBrandExtend,
		RequiredColumns: []string{
			"id", "category", "subcategory", "further_subcategory", "brand", "brand_rank",
			"extend_class", "extend_subclass", "extend_detail", "extend_stats", "stats_type",
			"source", "extend_detail_rank", "extend_detail_rank_ordinal",
		},
		Steps:              chartSteps,
		ClassificationMode: ModeMixed,
		RankRoles:          []RankRole{rankBrand(5), rankFactorStats(10), rankFactorAlphabet(10)},
		ExtendVocabulary: []string{
			"使用情境", "適用環境", "功能", "效能", "色彩", "訴求", "材質", "尺寸", "風格",
			"重量", "容量", "族群",
		},
	},
	{
		Type: ReportChartBrandExtendCross,
		RequiredColumns: []string{
			"id", "category", "subcategory", "further_subcategory", "brand", "brand_rank",
			"extend_class", "extend_subclass", "extend_detail", "extend_stats", "stats_type",
			"source",
		},
		Steps:              chartSteps,
		ClassificationMode: ModeMixed,
		RankRoles:          []RankRole{rankBrand(5)},
		ExtendVocabulary: []string{
			"使用情境 x 售價", "功能 x 售價", "效能 x 售價", "尺寸 x 售價", "重量 x 售價",
			"容量 x 售價", "風格 x 售價", "色彩 x 售價", "材質 x 售價", "尺寸二維分析",
			"尺寸 x 色彩", "尺寸 x 材質", "訴求 x 尺寸", "訴求 x 重量", "訴求 x 容量",
			"訴求 x 功能", "訴求 x 效能", "訴求 x 材質", "使用情境 x 風格", "使用情境 x 尺寸",
			"使用情境 x 重量", "使用情境 x 容量", "功能 x 風格", "功能 x 尺寸", "功能 x 重量",
			"功能 x 容量", "色彩 x 材質",
		},
	},
	{
		Type: ReportChartBrandExtendImage,
		RequiredColumns: []string{
			"id", "category", "subcategory", "further_subcategory", "brand", "brand_rank",
			"extend_class", "extend_subclass", "extend_detail", "stats_type", "source",
		},
		Steps:              chartSteps,
		ClassificationMode: ModeMixed,
		RankRoles:          []RankRole{rankBrand(5)},
		ExtendVocabulary:   []string{"使用情境 x 風格", "風格", "使用情境"},
	},
	{
		Type: ReportChartBrandCommentCounts,
		RequiredColumns: []string{
			"id", "category", "subcategory", "further_subcategory", "brand", "brand_rank",
			"extend_class", "extend_detail", "extend_detail_snippet",
			"extend_detail_snippet_source", "extend_stats", "stats_type", "source",
		},
		Steps:                   chartSteps,
		ClassificationMode:      ModeMixed,
		RankRoles:               []RankRole{rankBrand(5)},
		ExtendVocabulary:        commentFactors,
		SkipExtendSubclassNulls: true,
	},
	{
		Type: ReportChartBrandCommentScore,
		RequiredColumns: []string{
			"id", "category", "subcategory", "further_subcategory", "brand", "extend_class",
			"extend_detail", "extend_stats", "stats_type", "source",
		},
		Steps: []CheckStep{
			StepColumnAssertion, StepNullAnalysis, StepClassificationCheck,
			StepCategoryCoverage, StepExtendClassCheck,
		},
		ClassificationMode:      ModeMixed,
		RankRoles:               []RankRole{rankBrand(5)},
		ExtendVocabulary:        commentFactors,
		SkipExtendSubclassNulls: true,
	},
	{
		Type: ReportChartOthers,
		RequiredColumns: []string{
			"id", "category", "subcategory", "further_subcategory", "extend_class",
			"extend_subclass", "extend_detail", "extend_detail_rank", "brand_rank_detail",
			"extend_stats", "stats_type", "source",
		},
		Steps:              chartSteps,
		ClassificationMode: ModeMixed,
		RankRoles:          []RankRole{rankFactorStats(10)},
		ExtendVocabulary:   []string{"配件", "產品族群分析"},
	},
	{
		Type: ReportChartTrends,
		RequiredColumns: []string{
			"id", "category", "subcategory", "further_subcategory", "chart_name", "labels",
			"labels_rank", "element_name", "element_name_rank", "element_name_rank_ordinal",
			"features", "stats_type", "source",
		},
		Steps: []CheckStep{
			StepColumnAssertion, StepNullAnalysis, StepClassificationCheck,
			StepCategoryCoverage, StepRankVerification,
		},
		ClassificationMode: ModeMixed,
		RankRoles: []RankRole{
			{Role: "element_stats", Name: "因素数量排名", Column: "element_name_rank", Count: 5},
			{Role: "element_alphabet", Name: "因素名称排名", Column: "element_name_rank_ordinal", Count: 5},
			{Role: "labels_rank", Name: "标签数量排名", Column: "labels_rank", Count: 10},
		},
	},
	{
		Type: ReportReference,
		RequiredColumns: []string{
			"references_id", "domain", "category", "subcategory", "further_subcategory",
			"label", "type", "title", "url", "process", "is_domestic", "content", "source",
		},
		Steps: []CheckStep{
			StepColumnAssertion, StepNullAnalysis, StepClassificationCheck, StepCategoryCoverage,
		},
		ClassificationMode: ModeFurtherSubcategory,
	},
	{
		Type: ReportKeyword,
		RequiredColumns: []string{
			"domain", "category", "subcategory", "further_subcategory", "keyword",
			"search_volume", "search_volume_max", "search_volume_min", "trends", "end_at",
			"is_brand", "predict_volume",
		},
		Steps: []CheckStep{
			StepColumnAssertion, StepNullAnalysis, StepSearchVolumeCheck,
			StepClassificationCheck, StepCategoryCoverage,
		},
		ClassificationMode: ModeFurtherSubcategory,
		PartitionColumn:    ColumnIsBrand,
	},
}

// Registry 报表规范注册表，加载后只读
type Registry struct {
	order   []ReportType
	schemas map[ReportType]*Schema
}

// NewRegistry 校验并创建报表规范注册表
func NewRegistry(schemas []Schema) (*Registry, error) {
	if len(schemas) == 0 {
		return nil, errors.New("报表规范不能为空")
	}

	r := &Registry{
		order:   make([]ReportType, 0, len(schemas)),
		schemas: make(map[ReportType]*Schema, len(schemas)),
	}
	for i := range schemas {
		s := schemas[i]
		if err := validateSchema(&s); err != nil {
			return nil, fmt.Errorf("报表规范 %s 无效: %w", s.Type, err)
		}
		if _, exists := r.schemas[s.Type]; exists {
			return nil, fmt.Errorf("报表种类重复: %s", s.Type)
		}
		if s.CoverageLevel == "" {
			s.CoverageLevel = ModeFurtherSubcategory
		}
		r.order = append(r.order, s.Type)
		r.schemas[s.Type] = &s
	}
	return r, nil
}

// DefaultRegistry 使用默认报表规范创建注册表
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSchemas)
	if err != nil {
		panic(fmt.Sprintf("默认报表规范无效: %v", err))
	}
	return r
}

// validateSchema 校验步骤顺序与步骤所需配置
func validateSchema(s *Schema) error {
	if s.Type == "" {
		return errors.New("报表种类不能为空")
	}
	if len(s.Steps) < 2 || s.Steps[0] != StepColumnAssertion || s.Steps[1] != StepNullAnalysis {
		return errors.New("检查步骤必须以栏位检测与空值分析开始")
	}

	last := -1
	for _, step := range s.Steps {
		order := StepOrder(step)
		if order < 0 {
			return fmt.Errorf("未知的检查步骤: %s", step)
		}
		if order <= last {
			return fmt.Errorf("检查步骤顺序错误: %s", step)
		}
		last = order
	}

	if s.HasStep(StepDuplicateAnalysis) && len(s.DuplicateKey) == 0 {
		return errors.New("重复值检测缺少判定栏位")
	}
	if s.HasStep(StepRankVerification) && len(s.RankRoles) == 0 {
		return errors.New("名次验证缺少名次栏位规范")
	}
	for _, role := range s.RankRoles {
		if role.Count <= 0 {
			return fmt.Errorf("名次栏位 %s 的名次数量必须大于 0", role.Column)
		}
	}
	switch s.ClassificationMode {
	case ModeFurtherSubcategory, ModeSubcategory, ModeMixed:
	default:
		return fmt.Errorf("未知的分类检查粒度: %q", s.ClassificationMode)
	}
	return nil
}

// Types 返回全部报表种类，顺序与配置一致
func (r *Registry) Types() []ReportType {
	out := make([]ReportType, len(r.order))
	copy(out, r.order)
	return out
}

// TypeNames 返回全部报表种类的字符串形式
func (r *Registry) TypeNames() []string {
	out := make([]string, len(r.order))
	for i, t := range r.order {
		out[i] = string(t)
	}
	return out
}

// Lookup 查询报表规范
func (r *Registry) Lookup(t ReportType) (*Schema, error) {
	s, ok := r.schemas[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReportType, t)
	}
	return s, nil
}

// Rules 返回报表种类各步骤规则说明的拼接文字
func (r *Registry) Rules(t ReportType) (string, error) {
	s, err := r.Lookup(t)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, step := range s.Steps {
		b.WriteString("🔆 ")
		b.WriteString(CheckSteps[StepOrder(step)].Name)
		b.WriteString("：")
		b.WriteString(RuleText(step))
		b.WriteString("\n")
	}
	return b.String(), nil
}
