/*
 * @module service/meta/check_steps
 * @description 检查步骤元数据定义，包括步骤标识、显示名称与规则说明文字
 * @architecture 元数据层
 * @documentReference SPEC_FULL.md
 * @stateFlow 静态元数据定义
 * @rules 步骤标识为稳定字符串，供调度表与报告序列化共用
 * @dependencies 无
 * @refs service/meta/report_schema.go, service/verification/engine.go
 */

package meta

// CheckStep 检查步骤标识
type CheckStep string

const (
	StepColumnAssertion     CheckStep = "column_assertion"
	StepNullAnalysis        CheckStep = "null_analysis"
	StepDuplicateAnalysis   CheckStep = "duplicate_analysis"
	StepSearchVolumeCheck   CheckStep = "search_volume_check"
	StepClassificationCheck CheckStep = "classification_check"
	StepCategoryCoverage    CheckStep = "category_coverage"
	StepRankVerification    CheckStep = "rank_verification"
	StepExtendClassCheck    CheckStep = "extend_class_check"
	StepDecimalCheck        CheckStep = "decimal_check"
)

// CheckStepInfo 检查步骤定义
type CheckStepInfo struct {
	Code        CheckStep `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// CheckSteps 检查步骤元数据，顺序即步骤的相对执行顺序
var CheckSteps = []CheckStepInfo{
	{
		Code: StepColumnAssertion,
		Name: "栏位检测",
		Description: `依照报表种类与对应栏位规范，判断是否缺少特定栏位。
    • 若没有缺失栏位，输出：✅ 没有缺失重要栏位
    • 若有缺失栏位，输出所有缺失的栏位：⚠️ missing column: [缺失的栏位名称]`,
	},
	{
		Code:        StepNullAnalysis,
		Name:        "空值分析",
		Description: `列出各必要栏位的空值分布状况，第一列为空值数量，第二列为空值比例。`,
	},
	{
		Code: StepDuplicateAnalysis,
		Name: "重复值检测",
		Description: `针对 products 与 products_extend 报表计算重复值出现的次数，并回传重复列的 id（并非 source_product_id）。
    - products 使用 source_product_id 判定重复
    - products_extend 使用 source_product_id, extend_class, extend_subclass, extend_detail 判定重复
    • 第一次出现的列不列入重复清单`,
	},
	{
		Code:        StepSearchVolumeCheck,
		Name:        "搜索量检测",
		Description: `检查 keyword 报表中 search_volume 为 0 或空值的列数。`,
	},
	{
		Code: StepClassificationCheck,
		Name: "子品类标签验证",
		Description: `验证分类组合（category, subcategory, further_subcategory）是否存在于分类表中。
    • 输出：🔔 共有[错误资料数]笔资料的分类组合不存在于分类资料表中，占总资料的[比例]%
    正常情况下错误笔数应为 0`,
	},
	{
		Code:        StepCategoryCoverage,
		Name:        "分类覆盖率",
		Description: `逐一检查分类表中的每个分类是否至少出现在报表中一次，数量为 0 的分类视为缺失。`,
	},
	{
		Code: StepRankVerification,
		Name: "名次验证",
		Description: `列出名次栏位（品牌名次、因素名次）的值域。
    • 输出：资料中的名次与该报表的名次规范（1..N 与 999）`,
	},
	{
		Code: StepExtendClassCheck,
		Name: "扩充属性检测",
		Description: `• 依报表的扩充属性规范，判断资料中是否缺少特定扩充属性，缺少者以 ❌ 标记。
    • 分析各 extend_class 下 extend_subclass 为空的比例；products_extend 额外检查 extend_unit。`,
	},
	{
		Code: StepDecimalCheck,
		Name: "小数点位数验证",
		Description: `对含 extend_stats 栏位的报表检验 ratio 与 avg_price：
    • 是否超过 3 位小数
    • 小数是否以 0 结尾
    • 若报表没有 extend_stats，输出：✅ 没有 extend_stats 栏位`,
	},
}

// stepIndex 步骤在 CheckSteps 中的位置
var stepIndex = func() map[CheckStep]int {
	m := make(map[CheckStep]int, len(CheckSteps))
	for i, s := range CheckSteps {
		m[s.Code] = i
	}
	return m
}()

// StepOrder 返回步骤的相对顺序，未知步骤返回 -1
func StepOrder(step CheckStep) int {
	if i, ok := stepIndex[step]; ok {
		return i
	}
	return -1
}

// RuleText 返回步骤的规则说明
func RuleText(step CheckStep) string {
	if i, ok := stepIndex[step]; ok {
		return CheckSteps[i].Description
	}
	return ""
}
