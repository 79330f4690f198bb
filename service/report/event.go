/*
 * @module service/report/event
 * @description 验证报告转换为批次摘要事件
 * @architecture 转换函数 - 连接 report 与 event 包
 * @documentReference SPEC_FULL.md
 * @stateFlow VerificationReport -> RunSummary -> Kafka / MQTT
 * @rules 验证中断时只带错误讯息，统计值保留已完成的部分
 * @dependencies reportverify-service/service/event
 * @refs service/event/event_service.go, api/controllers/verify_controller.go, cmd/reportverify/check.go
 */

package report

import (
	"reportverify-service/service/event"
)

// RunSummary 转换为验证事件，runErr 为验证中断时的错误
func (v *VerificationReport) RunSummary(source string, runErr error) *event.RunSummary {
	s := &event.RunSummary{
		RunID:             v.RunID,
		ReportType:        string(v.ReportType),
		FileName:          v.FileName,
		Source:            source,
		Rows:              v.Rows,
		Steps:             len(v.Checks),
		Warnings:          v.Summary.Warnings,
		Notices:           v.Summary.Notices,
		EmptyCells:        v.Summary.TotalEmptyCells,
		Duplicates:        v.Summary.TotalDuplicates,
		MissingCategories: len(v.CategoryCoverage.Missing),
		CoveragePassed:    v.Summary.CoveragePassed,
		GeneratedAt:       v.GeneratedAt,
	}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	return s
}
