/*
 * @module api/controllers/verify_controller
 * @description 报表验证控制器，接收分类表与报表上传，执行验证并返回报告、SSE 逐条推送或下载档案
 * @architecture RESTful API架构 - 控制器层
 * @documentReference SPEC_FULL.md
 * @stateFlow 上传 -> 解码 -> 推断报表种类 -> 建立分类索引 -> 验证引擎 -> 汇总报告 -> 发布事件 -> 响应
 * @rules
 *   - 每个请求建立独立的分类索引与验证引擎
 *   - 解码失败、缺少上传、未知报表种类返回 400，其余错误返回 500
 *   - 未指定报表种类且档名无法匹配时以第一个报表种类验证并在讯息中提示
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/verification, service/report, service/event
 */

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"reportverify-service/service"
	"reportverify-service/service/classification"
	"reportverify-service/service/config"
	"reportverify-service/service/event"
	"reportverify-service/service/matcher"
	"reportverify-service/service/meta"
	"reportverify-service/service/report"
	"reportverify-service/service/tabular"
	"reportverify-service/service/verification"
)

// 上传表单栏位
const (
	FieldClassification = "classification"
	FieldReport         = "report"
	FieldReportType     = "report_type"
)

// eventSource 验证事件来源
const eventSource = "http"

// multipartMemory 解析上传表单时保留在内存中的上限
const multipartMemory = 8 << 20

// RunObserver 验证批次观察者
type RunObserver interface {
	verification.StepObserver
	MatchObserver
	ObserveRun(reportType meta.ReportType, rows int, err error)
}

// VerifyController 报表验证控制器
type VerifyController struct {
	registry   *meta.Registry
	cfg        *config.Config
	observer   RunObserver
	publisher  event.Publisher
	aggregator *report.Aggregator
	logger     *slog.Logger
}

// NewVerifyController 创建报表验证控制器实例
func NewVerifyController() *VerifyController {
	var observer RunObserver
	if service.GlobalMetrics != nil {
		observer = service.GlobalMetrics
	}
	return newVerifyController(service.GlobalRegistry, service.GlobalConfig, observer, service.GlobalPublisher)
}

func newVerifyController(registry *meta.Registry, cfg *config.Config, observer RunObserver, publisher event.Publisher) *VerifyController {
	if registry == nil {
		registry = meta.DefaultRegistry()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &VerifyController{
		registry:   registry,
		cfg:        cfg,
		observer:   observer,
		publisher:  publisher,
		aggregator: report.NewAggregator(),
		logger:     slog.Default(),
	}
}

// verifyInput 已解码的验证输入
type verifyInput struct {
	classification *tabular.Table
	table          *tabular.Table
	fileName       string
	reportType     meta.ReportType
	match          *MatchResponse
}

// verifyOutput 验证结果
type verifyOutput struct {
	run    *verification.Report
	report *report.VerificationReport
}

// Verify 验证报表
// @Summary 验证报表
// @Description 上传分类表与报表，依报表种类执行全部检查并返回验证报告；未指定报表种类时依报表档名推断
// @Tags 报表验证
// @Accept multipart/form-data
// @Produce json
// @Param classification formData file true "分类表（csv 或 xlsx）"
// @Param report formData file true "报表（csv 或 xlsx）"
// @Param report_type formData string false "报表种类"
// @Success 200 {object} APIResponse{data=report.VerificationReport}
// @Failure 400 {object} APIResponse
// @Failure 429 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /verify [post]
func (c *VerifyController) Verify(w http.ResponseWriter, r *http.Request) {
	in, err := c.parseInput(w, r)
	if err != nil {
		render.Render(w, r, c.errorResponse("读取上传资料失败", err))
		return
	}

	out, err := c.run(r.Context(), in)
	if err != nil {
		render.Render(w, r, c.errorResponse("报表验证失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse(verifyMessage(in), out.report))
}

// VerifyStream 以 SSE 逐条推送检查发现
// @Summary 验证报表（SSE）
// @Description 与 /verify 相同的表单，依序推送 match、finding 事件，最后推送 report 事件；验证中断时推送 error 事件
// @Tags 报表验证
// @Accept multipart/form-data
// @Produce text/event-stream
// @Param classification formData file true "分类表（csv 或 xlsx）"
// @Param report formData file true "报表（csv 或 xlsx）"
// @Param report_type formData string false "报表种类"
// @Success 200 {string} string "SSE事件流"
// @Failure 400 {object} APIResponse
// @Router /verify/stream [post]
func (c *VerifyController) VerifyStream(w http.ResponseWriter, r *http.Request) {
	in, err := c.parseInput(w, r)
	if err != nil {
		render.Render(w, r, c.errorResponse("读取上传资料失败", err))
		return
	}

	// 设置SSE响应头
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(name string, data interface{}) error {
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, toJSON(data)); err != nil {
			return err
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		return nil
	}

	if in.match != nil {
		if err := send("match", in.match); err != nil {
			return
		}
	}

	sink := verification.SinkFunc(func(_ context.Context, f verification.Finding) error {
		return send("finding", f)
	})
	out, err := c.run(r.Context(), in,
		verification.WithSink(sink),
		verification.WithInteractive(c.cfg.Verification.Interactive),
		verification.WithStreamDelay(c.cfg.Verification.StreamDelay),
	)
	if err != nil {
		if r.Context().Err() == nil {
			send("error", c.errorResponse("报表验证失败", err))
		}
		return
	}
	send("report", out.report)
}

// Export 下载验证档案
// @Summary 下载验证档案
// @Description 验证报表并下载重复列 id 清单、缺失分类清单或验证报告 JSON
// @Tags 报表验证
// @Accept multipart/form-data
// @Produce plain
// @Produce json
// @Param artifact path string true "档案种类" Enums(duplicates, missing-categories, report)
// @Param classification formData file true "分类表（csv 或 xlsx）"
// @Param report formData file true "报表（csv 或 xlsx）"
// @Param report_type formData string false "报表种类"
// @Success 200 {file} file
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /verify/exports/{artifact} [post]
func (c *VerifyController) Export(w http.ResponseWriter, r *http.Request) {
	artifact, err := report.ParseArtifact(chi.URLParam(r, "artifact"))
	if err != nil {
		render.Render(w, r, BadRequestResponse("下载档案种类无效", err))
		return
	}

	in, err := c.parseInput(w, r)
	if err != nil {
		render.Render(w, r, c.errorResponse("读取上传资料失败", err))
		return
	}

	out, err := c.run(r.Context(), in)
	if err != nil {
		render.Render(w, r, c.errorResponse("报表验证失败", err))
		return
	}

	file, err := report.BuildArtifact(artifact, out.run, out.report)
	if err != nil {
		if errors.Is(err, report.ErrArtifactUnavailable) {
			render.Render(w, r, NotFoundResponse("下载档案不存在", err))
			return
		}
		render.Render(w, r, InternalErrorResponse("产生下载档案失败", err))
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Body); err != nil {
		c.logger.Warn("写入下载档案失败", "file", file.Name, "error", err)
	}
}

// parseInput 读取并解码上传档案，决定报表种类
func (c *VerifyController) parseInput(w http.ResponseWriter, r *http.Request) (*verifyInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, c.cfg.Server.MaxUploadBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, fmt.Errorf("%w: 解析上传表单失败: %w", verification.ErrMissingRequiredInput, err)
	}

	classTable, _, err := readUpload(r, FieldClassification)
	if err != nil {
		return nil, err
	}
	table, fileName, err := readUpload(r, FieldReport)
	if err != nil {
		return nil, err
	}

	in := &verifyInput{classification: classTable, table: table, fileName: fileName}
	if rt := strings.TrimSpace(r.FormValue(FieldReportType)); rt != "" {
		in.reportType = meta.ReportType(rt)
	} else {
		res := matcher.MatchDetail(fileName, c.registry.TypeNames())
		if c.observer != nil {
			c.observer.ObserveMatch(res.Tier.String())
		}
		in.reportType = meta.ReportType(res.Key)
		in.match = &MatchResponse{
			ReportType: res.Key,
			Matched:    res.Matched,
			Tier:       res.Tier.String(),
			Score:      res.Score,
		}
	}

	if _, err := c.registry.Lookup(in.reportType); err != nil {
		return nil, err
	}
	return in, nil
}

// readUpload 读取并解码单一上传档案
func readUpload(r *http.Request, field string) (*tabular.Table, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", fmt.Errorf("%w: %s", verification.ErrMissingRequiredInput, field)
		}
		return nil, "", fmt.Errorf("读取上传档案 %s 失败: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("读取上传档案 %s 失败: %w", field, err)
	}
	name := filepath.Base(header.Filename)
	table, err := tabular.Decode(name, data)
	if err != nil {
		return nil, "", err
	}
	return table, name, nil
}

// run 建立分类索引与验证引擎并执行验证
func (c *VerifyController) run(ctx context.Context, in *verifyInput, extra ...verification.Option) (*verifyOutput, error) {
	index, err := classification.NewIndex(in.classification)
	if err != nil {
		return nil, err
	}

	opts := []verification.Option{
		verification.WithRegistry(c.registry),
		verification.WithLogger(c.logger),
		verification.WithCoverageThreshold(c.cfg.Verification.CoverageThreshold),
		verification.WithFileName(in.fileName),
	}
	if c.observer != nil {
		opts = append(opts, verification.WithObserver(c.observer))
	}
	engine, err := verification.NewEngine(index, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}

	run, err := engine.Verify(ctx, in.table, in.reportType)
	if c.observer != nil {
		c.observer.ObserveRun(in.reportType, in.table.Len(), err)
	}
	vr := c.aggregator.Aggregate(run, in.table)
	if vr.RunID == "" {
		vr.RunID = engine.RunID()
		vr.ReportType = in.reportType
	}
	c.publish(ctx, vr, err)
	if err != nil {
		return nil, err
	}
	return &verifyOutput{run: run, report: vr}, nil
}

// publish 发布验证事件，发布失败只记录日志
func (c *VerifyController) publish(ctx context.Context, vr *report.VerificationReport, runErr error) {
	if err := c.publisher.Publish(context.WithoutCancel(ctx), vr.RunSummary(eventSource, runErr)); err != nil {
		c.logger.Warn("发布验证事件失败", "run_id", vr.RunID, "error", err)
	}
}

// errorResponse 依错误种类决定HTTP状态码
func (c *VerifyController) errorResponse(msg string, err error) *APIResponse {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return ErrorResponse(http.StatusRequestEntityTooLarge, msg, err)
	}
	switch {
	case errors.Is(err, tabular.ErrUnsupportedFileFormat),
		errors.Is(err, verification.ErrMissingRequiredInput),
		errors.Is(err, verification.ErrDivisionByZero),
		errors.Is(err, meta.ErrUnknownReportType),
		errors.Is(err, classification.ErrMissingColumns):
		return BadRequestResponse(msg, err)
	}
	c.logger.Error(msg, "error", err)
	return InternalErrorResponse(msg, err)
}

// verifyMessage 成功讯息，档名无法匹配报表种类时附加提示
func verifyMessage(in *verifyInput) string {
	if in.match != nil && !in.match.Matched {
		return fmt.Sprintf("报表验证完成；档名 %s 无法匹配报表种类，已使用默认种类 %s", in.fileName, in.reportType)
	}
	return "报表验证完成"
}

// toJSON 序列化 SSE 事件内容
func toJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"msg":"序列化失败"}`
	}
	return string(b)
}
