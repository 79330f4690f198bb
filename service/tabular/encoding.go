/*
 * @module service/tabular/encoding
 * @description 文本编码转换，将非 UTF-8 的 CSV 内容按 Big5、GB18030 依次尝试转换为 UTF-8
 * @architecture 工具函数模式
 * @documentReference SPEC_FULL.md
 * @stateFlow 原始字节 -> 编码识别 -> UTF-8 字节
 * @rules 转换结果不得包含替换字符，否则视为该编码不适用
 * @dependencies golang.org/x/text/encoding, golang.org/x/text/transform
 * @refs service/tabular/decode.go
 */

package tabular

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// errUnknownEncoding 无法识别的文本编码
var errUnknownEncoding = errors.New("无法识别的文本编码")

// fallbackEncodings 非 UTF-8 内容的候选编码，按顺序尝试
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"big5", traditionalchinese.Big5},
	{"gb18030", simplifiedchinese.GB18030},
}

// toUTF8 将内容转换为 UTF-8，并返回识别出的编码名称
func toUTF8(data []byte) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	for _, fb := range fallbackEncodings {
		out, _, err := transform.Bytes(fb.enc.NewDecoder(), data)
		if err != nil {
			continue
		}
		if !utf8.Valid(out) || bytes.ContainsRune(out, utf8.RuneError) {
			continue
		}
		return out, fb.name, nil
	}
	return nil, "", errUnknownEncoding
}
