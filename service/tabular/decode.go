/*
 * @module service/tabular/decode
 * @description 上传档案两阶段解码：先尝试 CSV，再尝试 Excel 工作簿，两者皆失败时返回区分阶段的错误
 * @architecture 两阶段解码器
 * @documentReference SPEC_FULL.md
 * @stateFlow 原始字节 -> CSV 解码 ->（失败）Excel 解码 ->（失败）UnsupportedFormatError
 * @rules
 *   - 压缩档或含 NUL 字元的内容不视为 CSV
 *   - Excel 仅读取第一个工作表，第一列为栏位名称
 *   - 空值字符串统一解析为 nil
 * @dependencies encoding/csv, github.com/xuri/excelize/v2
 * @refs service/tabular/table.go, service/tabular/encoding.go
 */

package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFileFormat CSV 与 Excel 皆无法解码
	ErrUnsupportedFileFormat = errors.New("仅支持 csv 或 xlsx 档案")
	// ErrNotCSV CSV 阶段解码失败
	ErrNotCSV = errors.New("不是有效的 CSV 档案")
	// ErrNotSpreadsheet Excel 阶段解码失败
	ErrNotSpreadsheet = errors.New("不是有效的 Excel 档案")
)

// zip 与 OLE 复合文件的档头
var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// UnsupportedFormatError 两阶段解码皆失败
type UnsupportedFormatError struct {
	Name           string
	CSVErr         error
	SpreadsheetErr error
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("档案 %s 解码失败: %v; %v", e.Name, e.CSVErr, e.SpreadsheetErr)
}

// Unwrap 支持 errors.Is 匹配 ErrUnsupportedFileFormat 与各阶段错误
func (e *UnsupportedFormatError) Unwrap() []error {
	return []error{ErrUnsupportedFileFormat, e.CSVErr, e.SpreadsheetErr}
}

// Decode 解码上传档案
func Decode(name string, data []byte) (*Table, error) {
	t, csvErr := DecodeCSV(name, data)
	if csvErr == nil {
		return t, nil
	}
	t, xlsErr := DecodeSpreadsheet(name, data)
	if xlsErr == nil {
		return t, nil
	}
	return nil, &UnsupportedFormatError{Name: name, CSVErr: csvErr, SpreadsheetErr: xlsErr}
}

// DecodeFile 读取并解码本机档案
func DecodeFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取档案失败: %w", err)
	}
	return Decode(filepath.Base(path), data)
}

// DecodeCSV 以 CSV 格式解码
func DecodeCSV(name string, data []byte) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: 内容为空", ErrNotCSV)
	}
	if bytes.HasPrefix(data, zipMagic) || bytes.HasPrefix(data, oleMagic) {
		return nil, fmt.Errorf("%w: 二进位档案", ErrNotCSV)
	}

	text, _, err := toUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCSV, err)
	}
	if bytes.IndexByte(text, 0) >= 0 {
		return nil, fmt.Errorf("%w: 含有 NUL 字元", ErrNotCSV)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotCSV, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: 缺少栏位名称列", ErrNotCSV)
	}
	return FromRecords(name, records[0], records[1:]), nil
}

// DecodeSpreadsheet 以 Excel 工作簿格式解码第一个工作表
func DecodeSpreadsheet(name string, data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: 没有工作表", ErrNotSpreadsheet)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表 %s 失败: %v", ErrNotSpreadsheet, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: 工作表 %s 为空", ErrNotSpreadsheet, sheets[0])
	}
	return FromRecords(name, rows[0], rows[1:]), nil
}
