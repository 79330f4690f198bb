/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供表格数据工厂、HTTP 请求构造与 Mock 对象
 * @documentReference SPEC_FULL.md
 * @stateFlow 测试数据创建 -> 测试执行 -> 断言
 * @rules 提供可重用的测试工具，确保测试数据的一致性
 * @dependencies testify, service/tabular, service/classification
 * @refs service/verification, service/report, api/controllers
 */

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reportverify-service/service/classification"
	"reportverify-service/service/event"
	"reportverify-service/service/tabular"
)

// TableOption 表格构造选项
type TableOption func(*TableBuilder)

// TableBuilder 表格构造器
type TableBuilder struct {
	name    string
	columns []string
	rows    [][]tabular.Cell
}

// WithName 设置表格名称
func WithName(name string) TableOption {
	return func(b *TableBuilder) {
		b.name = name
	}
}

// NewTable 创建表格构造器
func NewTable(columns []string, opts ...TableOption) *TableBuilder {
	b := &TableBuilder{name: "test.csv", columns: columns}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Row 追加一列资料，值个数须与栏位一致
func (b *TableBuilder) Row(values ...tabular.Cell) *TableBuilder {
	if len(values) != len(b.columns) {
		panic(fmt.Sprintf("row has %d values, want %d", len(values), len(b.columns)))
	}
	b.rows = append(b.rows, values)
	return b
}

// Build 生成表格
func (b *TableBuilder) Build() *tabular.Table {
	rows := make([][]tabular.Cell, len(b.rows))
	copy(rows, b.rows)
	return tabular.New(b.name, b.columns, rows)
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct{}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory() *TestDataFactory {
	return &TestDataFactory{}
}

// ClassificationTable 以 (category, subcategory, further_subcategory) 三元组创建分类表
func (f *TestDataFactory) ClassificationTable(entries ...[3]string) *tabular.Table {
	b := NewTable([]string{"domain", "category", "subcategory", "further_subcategory"}, WithName("classification.csv"))
	for _, e := range entries {
		b.Row("home", e[0], e[1], e[2])
	}
	return b.Build()
}

// Index 以三元组创建分类索引
func (f *TestDataFactory) Index(t *testing.T, entries ...[3]string) *classification.Index {
	t.Helper()
	idx, err := classification.NewIndex(f.ClassificationTable(entries...))
	if err != nil {
		t.Fatalf("build classification index: %v", err)
	}
	return idx
}

// DefaultEntries 四个三层分类组合
func (f *TestDataFactory) DefaultEntries() [][3]string {
	return [][3]string{
		{"家電", "廚房家電", "電鍋"},
		{"家電", "廚房家電", "氣炸鍋"},
		{"家電", "生活家電", "吸塵器"},
		{"美妝", "保養", "乳液"},
	}
}

// CSV 将栏位与资料列序列化为 CSV 文字
func (f *TestDataFactory) CSV(columns []string, rows ...[]string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(columns, ","))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(strings.Join(r, ","))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// MockPublisher Mock事件发布器
type MockPublisher struct {
	mock.Mock
}

var _ event.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, summary *event.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// UploadFile 上传档案
type UploadFile struct {
	Field    string
	FileName string
	Content  []byte
}

// CreateMultipartRequest 创建档案上传请求
func (h *HTTPTestHelper) CreateMultipartRequest(method, url string, files []UploadFile, fields map[string]string) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, f := range files {
		part, err := writer.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
