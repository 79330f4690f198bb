/*
 * @module api/controllers/meta_controller
 * @description 元数据控制器，提供报表种类规范、检查步骤说明与档名比对接口
 * @architecture RESTful API架构 - 控制器层
 * @documentReference SPEC_FULL.md
 * @stateFlow HTTP请求 -> 报表规范注册表 / 档名比对 -> 响应返回
 * @rules 只读接口，不修改注册表
 * @dependencies github.com/go-chi/render
 * @refs service/meta, service/matcher
 */

package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"reportverify-service/service"
	"reportverify-service/service/matcher"
	"reportverify-service/service/meta"
)

// MatchObserver 档名比对观察者
type MatchObserver interface {
	ObserveMatch(tier string)
}

// MetaController 元数据控制器
type MetaController struct {
	registry *meta.Registry
	observer MatchObserver
}

// NewMetaController 创建元数据控制器实例
func NewMetaController() *MetaController {
	c := &MetaController{registry: service.GlobalRegistry}
	if service.GlobalMetrics != nil {
		c.observer = service.GlobalMetrics
	}
	if c.registry == nil {
		c.registry = meta.DefaultRegistry()
	}
	return c
}

// ReportTypeInfo 报表种类说明
type ReportTypeInfo struct {
	Type               meta.ReportType         `json:"type" example:"products"`
	RequiredColumns    []string                `json:"required_columns"`
	Steps              []meta.CheckStepInfo    `json:"steps"`
	ClassificationMode meta.ClassificationMode `json:"classification_mode" example:"further_subcategory"`
	PartitionColumn    string                  `json:"partition_column,omitempty"`
	DuplicateKey       []string                `json:"duplicate_key,omitempty"`
	RankRoles          []meta.RankRole         `json:"rank_roles,omitempty"`
	ExtendVocabulary   []string                `json:"extend_vocabulary,omitempty"`
	Rules              string                  `json:"rules"`
}

// MatchRequest 档名比对请求
type MatchRequest struct {
	FileName string `json:"filename" example:"products_20240101.csv"`
}

// MatchResponse 档名比对结果
type MatchResponse struct {
	ReportType string  `json:"report_type" example:"products"`
	Matched    bool    `json:"matched" example:"true"`
	Tier       string  `json:"tier" example:"exact"`
	Score      float64 `json:"score,omitempty"`
}

// GetReportTypes 获取全部报表种类规范
// @Summary 获取报表种类
// @Description 获取全部报表种类的必要栏位、检查步骤与规则说明
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse{data=[]ReportTypeInfo}
// @Router /meta/report-types [get]
func (c *MetaController) GetReportTypes(w http.ResponseWriter, r *http.Request) {
	types := c.registry.Types()
	out := make([]ReportTypeInfo, 0, len(types))
	for _, t := range types {
		schema, err := c.registry.Lookup(t)
		if err != nil {
			render.Render(w, r, InternalErrorResponse("获取报表规范失败", err))
			return
		}
		rules, err := c.registry.Rules(t)
		if err != nil {
			render.Render(w, r, InternalErrorResponse("获取规则说明失败", err))
			return
		}
		out = append(out, reportTypeInfo(schema, rules))
	}
	render.JSON(w, r, SuccessResponse("获取报表种类成功", out))
}

func reportTypeInfo(s *meta.Schema, rules string) ReportTypeInfo {
	steps := make([]meta.CheckStepInfo, 0, len(s.Steps))
	for _, step := range s.Steps {
		steps = append(steps, meta.CheckSteps[meta.StepOrder(step)])
	}
	return ReportTypeInfo{
		Type:               s.Type,
		RequiredColumns:    s.RequiredColumns,
		Steps:              steps,
		ClassificationMode: s.ClassificationMode,
		PartitionColumn:    s.PartitionColumn,
		DuplicateKey:       s.DuplicateKey,
		RankRoles:          s.RankRoles,
		ExtendVocabulary:   s.ExtendVocabulary,
		Rules:              rules,
	}
}

// GetCheckSteps 获取全部检查步骤说明
// @Summary 获取检查步骤
// @Description 依执行顺序列出检查步骤与规则说明
// @Tags 元数据
// @Produce json
// @Success 200 {object} APIResponse{data=[]meta.CheckStepInfo}
// @Router /meta/check-steps [get]
func (c *MetaController) GetCheckSteps(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取检查步骤成功", meta.CheckSteps))
}

// MatchFileName 依档名推断报表种类
// @Summary 档名比对
// @Description 依上传档名推断报表种类，无法匹配时返回第一个报表种类且 matched 为 false
// @Tags 元数据
// @Accept json
// @Produce json
// @Param request body MatchRequest true "档名"
// @Success 200 {object} APIResponse{data=MatchResponse}
// @Failure 400 {object} APIResponse
// @Router /meta/match [post]
func (c *MetaController) MatchFileName(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		render.Render(w, r, BadRequestResponse("档名不能为空", nil))
		return
	}

	render.JSON(w, r, SuccessResponse("档名比对完成", c.match(req.FileName)))
}

// match 比对档名并记录比对层级
func (c *MetaController) match(fileName string) MatchResponse {
	res := matcher.MatchDetail(fileName, c.registry.TypeNames())
	if c.observer != nil {
		c.observer.ObserveMatch(res.Tier.String())
	}
	return MatchResponse{
		ReportType: res.Key,
		Matched:    res.Matched,
		Tier:       res.Tier.String(),
		Score:      res.Score,
	}
}
