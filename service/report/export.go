/*
 * @module service/report/export
 * @description 下载档案产生：重复列 id 清单、缺失分类清单与验证报告 JSON
 * @architecture 工具函数
 * @documentReference SPEC_FULL.md
 * @stateFlow 验证结果 -> 档名 + 内容类型 + 内容
 * @rules 文字清单每行一个值；JSON 以两个空格缩排且不转义非 ASCII 字元
 * @dependencies encoding/json
 * @refs api/controllers/verify_controller.go, cmd/reportverify
 */

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"reportverify-service/service/meta"
	"reportverify-service/service/verification"
)

// Artifact 下载档案种类
type Artifact string

const (
	ArtifactDuplicates        Artifact = "duplicates"
	ArtifactMissingCategories Artifact = "missing-categories"
	ArtifactReport            Artifact = "report"
)

// MissingCategoriesFileName 缺失分类清单档名
const MissingCategoriesFileName = "missing_categories.txt"

var (
	// ErrUnknownArtifact 未知的下载档案种类
	ErrUnknownArtifact = errors.New("未知的下载档案种类")
	// ErrArtifactUnavailable 验证结果不包含该下载档案
	ErrArtifactUnavailable = errors.New("验证结果不包含该下载档案")
)

// File 下载档案
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// ExportLines 将值以每行一个的方式输出
func ExportLines(values []string) []byte {
	return []byte(strings.Join(values, "\n"))
}

// DuplicateExportName 重复列 id 清单档名
func DuplicateExportName(reportType meta.ReportType) string {
	return fmt.Sprintf("%s_duplicated_id.txt", reportType)
}

// ReportFileName 验证报告档名，取上传档名第一个句点前的部分
func ReportFileName(fileName string) string {
	stem := filepath.Base(fileName)
	if i := strings.Index(stem, "."); i >= 0 {
		stem = stem[:i]
	}
	if stem == "" || stem == "/" {
		stem = "report"
	}
	return stem + "_verification_report.json"
}

// JSON 以缩排格式序列化验证报告
func (v *VerificationReport) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("序列化验证报告失败: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseArtifact 解析下载档案种类
func ParseArtifact(s string) (Artifact, error) {
	switch a := Artifact(s); a {
	case ArtifactDuplicates, ArtifactMissingCategories, ArtifactReport:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownArtifact, s)
}

// BuildArtifact 产生下载档案
func BuildArtifact(artifact Artifact, run *verification.Report, vr *VerificationReport) (*File, error) {
	switch artifact {
	case ArtifactDuplicates:
		dup, ok := verification.ResultOf[*verification.DuplicateResult](run)
		if !ok || dup.Skipped {
			return nil, fmt.Errorf("%w: %s", ErrArtifactUnavailable, artifact)
		}
		return &File{Name: DuplicateExportName(run.ReportType), ContentType: "text/plain; charset=utf-8", Body: ExportLines(dup.IDs)}, nil

	case ArtifactMissingCategories:
		cov, ok := verification.ResultOf[*verification.CoverageResult](run)
		if !ok || cov.Skipped {
			return nil, fmt.Errorf("%w: %s", ErrArtifactUnavailable, artifact)
		}
		return &File{Name: MissingCategoriesFileName, ContentType: "text/plain; charset=utf-8", Body: ExportLines(cov.Missing)}, nil

	case ArtifactReport:
		if vr == nil {
			return nil, fmt.Errorf("%w: %s", ErrArtifactUnavailable, artifact)
		}
		body, err := vr.JSON()
		if err != nil {
			return nil, err
		}
		return &File{Name: ReportFileName(vr.FileName), ContentType: "application/json", Body: body}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, artifact)
}
