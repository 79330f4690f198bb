/*
 * @module service/tabular/decode_test
 * @description 表格模型与两阶段解码单元测试
 * @architecture 单元测试
 * @documentReference SPEC_FULL.md
 * @stateFlow 构造原始内容 -> 解码 -> 验证栏位与空值
 * @rules 覆盖 CSV、编码回退、Excel 与解码失败错误
 * @dependencies github.com/stretchr/testify, github.com/xuri/excelize/v2
 * @refs decode.go, table.go, encoding.go
 */

package tabular

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/traditionalchinese"
)

func TestDecodeCSV(t *testing.T) {
	data := []byte("\xef\xbb\xbfid, category ,brand\n1,家電,Acme\n2,NA,\n3,家電\n")

	table, err := Decode("products_0822.csv", data)
	require.NoError(t, err)

	assert.Equal(t, "products_0822.csv", table.Name)
	assert.Equal(t, []string{"id", "category", "brand"}, table.Columns)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "家電", table.String(0, "category"))
	assert.True(t, table.IsNull(1, "category"))
	assert.True(t, table.IsNull(1, "brand"))
	// 短行补齐为空值
	assert.True(t, table.IsNull(2, "brand"))
	assert.False(t, table.IsNull(2, "id"))
}

func TestDecodeCSV_NAValues(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		null bool
	}{
		{"空字符串", "", true},
		{"NA", "NA", true},
		{"N/A", "N/A", true},
		{"NaN", "NaN", true},
		{"nan", "nan", true},
		{"null", "null", true},
		{"None", "None", true},
		{"#N/A", "#N/A", true},
		{"<NA>", "<NA>", true},
		{"零", "0", false},
		{"空白字元", " ", false},
		{"普通文字", "none of them", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.null, IsNull(ParseCell(tt.raw)))
		})
	}
}

func TestDecodeCSV_Big5(t *testing.T) {
	encoded, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte("分類,名稱\n材質,尺寸\n"))
	require.NoError(t, err)

	table, err := DecodeCSV("big5.csv", encoded)
	require.NoError(t, err)
	assert.Equal(t, []string{"分類", "名稱"}, table.Columns)
	assert.Equal(t, "材質", table.String(0, "分類"))
}

func TestDecodeCSV_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"空内容", []byte("  \n")},
		{"zip 档头", []byte("PK\x03\x04rest")},
		{"NUL 字元", []byte("a,b\n1,\x00\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV("x.csv", tt.data)
			assert.ErrorIs(t, err, ErrNotCSV)
		})
	}
}

func TestDecodeSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"id", "ratio", "brand"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"p1", 0.5, "Acme"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"p2", nil, "Beta"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := Decode("report.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "ratio", "brand"}, table.Columns)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "p1", table.String(0, "id"))
	assert.Equal(t, "0.5", table.String(0, "ratio"))
	assert.True(t, table.IsNull(1, "ratio"))
	assert.Equal(t, "Beta", table.String(1, "brand"))
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode("broken.xlsx", []byte("PK\x03\x04not really a workbook"))
	require.Error(t, err)

	var ufe *UnsupportedFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "broken.xlsx", ufe.Name)
	assert.ErrorIs(t, err, ErrUnsupportedFileFormat)
	assert.ErrorIs(t, err, ErrNotCSV)
	assert.ErrorIs(t, err, ErrNotSpreadsheet)
}

func TestTable_Accessors(t *testing.T) {
	table := New("t", []string{"a", "b", "a"}, [][]Cell{
		{"1", nil, "dup"},
		{"2", math.NaN()},
	})

	idx, ok := table.ColumnIndex("a")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.True(t, table.HasColumns("a", "b"))
	assert.Equal(t, []string{"c"}, table.MissingColumns("a", "c"))
	assert.True(t, table.IsNull(1, "b"))
	assert.True(t, table.IsNull(0, "missing"))
	assert.True(t, table.AnyNull(0, "a", "b"))
	assert.False(t, table.AnyNull(0, "a"))
	assert.Equal(t, []Cell{"1", "2"}, table.Column("a"))
	assert.Nil(t, table.Column("missing"))

	filtered := table.Filter(func(row int) bool { return table.String(row, "a") == "2" })
	assert.Equal(t, 1, filtered.Len())
	assert.Equal(t, "2", filtered.String(0, "a"))
	assert.Equal(t, 2, table.Len())
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "", FormatCell(math.NaN()))
	assert.Equal(t, "5", FormatCell(5))
	assert.Equal(t, "0.25", FormatCell(0.25))
	assert.Equal(t, "x", FormatCell("x"))
}

func TestFromRecords_CleanHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"去除 BOM", "\ufeffid", "id"},
		{"BOM 后接空白", "\ufeff  category ", "category"},
		{"无 BOM", "brand", "brand"},
		{"中间的 BOM 保留", "a\ufeffb", "a\ufeffb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := FromRecords("t.csv", []string{tt.header}, [][]string{{"1"}})
			assert.Equal(t, []string{tt.want}, table.Columns)
		})
	}
}
