/*
 * @module service/verification/errors
 * @description 验证引擎错误定义
 * @architecture 错误哨兵值，调用方以 errors.Is 判定
 * @documentReference SPEC_FULL.md
 * @stateFlow 无
 * @rules 资料品质问题属于检查结果而非错误；以下错误只代表输入或配置问题
 * @dependencies errors
 * @refs service/verification/engine.go
 */

package verification

import "errors"

var (
	// ErrMissingRequiredInput 缺少分类表或报表
	ErrMissingRequiredInput = errors.New("缺少必要的上传资料")
	// ErrInvalidArgument 检查步骤与报表种类不相容
	ErrInvalidArgument = errors.New("检查参数无效")
	// ErrDivisionByZero 资料表没有资料列，无法计算比例
	ErrDivisionByZero = errors.New("资料表没有资料列，无法计算比例")
	// ErrMalformedStatsPayload extend_stats 内容不是有效的 JSON 物件
	ErrMalformedStatsPayload = errors.New("extend_stats 不是有效的 JSON 物件")
)
