package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportverify-service/testutil"
)

// execute 执行命令并返回标准输出
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MQTT_BROKER", "")

	c := New("test")
	var out, errOut bytes.Buffer
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetErr(&errOut)
	c.rootCmd.SetArgs(args)
	err := c.Run()
	return out.String(), err
}

// writeFixtures 写入分类表与 products 报表
func writeFixtures(t *testing.T, reportName string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	f := testutil.NewTestDataFactory()

	rows := make([][]string, 0, 4)
	for _, e := range f.DefaultEntries() {
		rows = append(rows, []string{e[0], e[1], e[2]})
	}
	classPath := filepath.Join(dir, "classification.csv")
	require.NoError(t, os.WriteFile(classPath, f.CSV([]string{"category", "subcategory", "further_subcategory"}, rows...), 0o644))

	reportPath := filepath.Join(dir, reportName)
	require.NoError(t, os.WriteFile(reportPath, f.CSV([]string{
		"id", "source_product_id", "domain", "category", "subcategory", "further_subcategory",
		"brand", "list_price", "sale_price", "sales_volume", "best_sellers_rank",
		"accessories", "url", "image_url_1", "source",
	},
		[]string{"1", "P1", "home", "家電", "廚房家電", "電鍋", "Acme", "10", "9", "3", "1", "", "u", "i", "amazon"},
		[]string{"2", "P1", "home", "家電", "廚房家電", "氣炸鍋", "Acme", "10", "9", "3", "1", "", "u", "i", "amazon"},
		[]string{"3", "P2", "home", "家電", "生活家電", "吸塵器", "Beta", "10", "", "3", "1", "", "u", "i", "amazon"},
	), 0o644))
	return classPath, reportPath
}

func TestCheckCommand(t *testing.T) {
	classPath, reportPath := writeFixtures(t, "products_amazon_0822.csv")
	exportDir := filepath.Join(t.TempDir(), "exports")
	jsonPath := filepath.Join(t.TempDir(), "report.json")

	out, err := execute(t, "check", "-c", classPath, "-r", reportPath, "--json", jsonPath, "--exports", exportDir)
	require.NoError(t, err)

	assert.Contains(t, out, "📄 报表种类: products (exact)")
	assert.Contains(t, out, "✅")
	assert.Contains(t, out, "重复 1 笔")

	body, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"report_type": "products"`)

	dup, err := os.ReadFile(filepath.Join(exportDir, "products_duplicated_id.txt"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(dup))

	missing, err := os.ReadFile(filepath.Join(exportDir, "missing_categories.txt"))
	require.NoError(t, err)
	assert.Equal(t, "美妝_保養_乳液", string(missing))

	assert.FileExists(t, filepath.Join(exportDir, "products_amazon_0822_verification_report.json"))
}

func TestCheckCommand_Errors(t *testing.T) {
	classPath, reportPath := writeFixtures(t, "products.csv")

	tests := []struct {
		name string
		args []string
	}{
		{"未知报表种类", []string{"check", "-c", classPath, "-r", reportPath, "-t", "unknown"}},
		{"报表档案不存在", []string{"check", "-c", classPath, "-r", filepath.Join(t.TempDir(), "missing.csv")}},
		{"缺少必要参数", []string{"check", "-c", classPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCheckCommand_UnmatchedFileName(t *testing.T) {
	classPath, reportPath := writeFixtures(t, "zzzz.csv")

	out, err := execute(t, "check", "-c", classPath, "-r", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "无法匹配报表种类，使用默认种类 products")
}

func TestMatchCommand(t *testing.T) {
	out, err := execute(t, "match", "chart_brand_extend_image_0822.csv", "chart_brands_amazon_1128.csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "chart_brand_extend_image")
	assert.Contains(t, lines[1], "exact")
	assert.Contains(t, lines[2], "normalized")
}

func TestTypesCommand(t *testing.T) {
	out, err := execute(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "products\tcolumn_assertion,null_analysis,duplicate_analysis,classification_check,category_coverage\n")

	out, err = execute(t, "types", "--rules")
	require.NoError(t, err)
	assert.Contains(t, out, "栏位检测")
}
