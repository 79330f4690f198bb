/*
 * @module service/verification/finding
 * @description 检查发现的数据结构与输出接收器，供 CLI 与 SSE 逐步显示
 * @architecture 观察者模式 - 引擎在每个步骤完成后把发现推送给接收器
 * @documentReference SPEC_FULL.md
 * @stateFlow 检查步骤 -> 发现列表 -> FindingSink
 * @rules 接收器只负责呈现，不得修改发现内容
 * @dependencies io
 * @refs service/verification/engine.go, cmd/reportverify, api/controllers/verify_controller.go
 */

package verification

import (
	"context"
	"fmt"
	"io"
	"strings"

	"reportverify-service/service/meta"
)

// Level 发现等级
type Level string

const (
	LevelInfo    Level = "info"
	LevelPass    Level = "pass"
	LevelNotice  Level = "notice"
	LevelWarning Level = "warning"
)

// FindingTable 发现附带的表格
type FindingTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	// Highlight 需要强调显示的列序号
	Highlight []int `json:"highlight,omitempty"`
}

// Finding 单条检查发现
type Finding struct {
	Step    meta.CheckStep `json:"step"`
	Level   Level          `json:"level"`
	Message string         `json:"message"`
	Table   *FindingTable  `json:"table,omitempty"`
}

// FindingSink 发现接收器
type FindingSink interface {
	Emit(ctx context.Context, f Finding) error
}

// SinkFunc 函数形式的发现接收器
type SinkFunc func(ctx context.Context, f Finding) error

// Emit 实现 FindingSink
func (fn SinkFunc) Emit(ctx context.Context, f Finding) error {
	return fn(ctx, f)
}

// nopSink 丢弃所有发现
type nopSink struct{}

func (nopSink) Emit(context.Context, Finding) error { return nil }

// WriterSink 以纯文字输出发现
type WriterSink struct {
	w io.Writer
}

// NewWriterSink 创建纯文字发现接收器
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit 实现 FindingSink
func (s *WriterSink) Emit(_ context.Context, f Finding) error {
	if _, err := fmt.Fprintln(s.w, f.Message); err != nil {
		return err
	}
	if f.Table == nil {
		return nil
	}
	_, err := io.WriteString(s.w, RenderTable(f.Table))
	return err
}

// RenderTable 将表格渲染为以 tab 分隔的文字
func RenderTable(t *FindingTable) string {
	var b strings.Builder
	highlight := make(map[int]bool, len(t.Highlight))
	for _, i := range t.Highlight {
		highlight[i] = true
	}
	b.WriteString(strings.Join(t.Headers, "\t"))
	b.WriteString("\n")
	for i, row := range t.Rows {
		b.WriteString(strings.Join(row, "\t"))
		if highlight[i] {
			b.WriteString("\t❗")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// finding 构造发现
func finding(step meta.CheckStep, level Level, format string, args ...any) Finding {
	return Finding{Step: step, Level: level, Message: fmt.Sprintf(format, args...)}
}

// formatPercent 以两位小数的百分比表示比例
func formatPercent(proportion float64) string {
	return fmt.Sprintf("%.2f %%", proportion*100)
}

// formatList 以方括号列出值
func formatList(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}
