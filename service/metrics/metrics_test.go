package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportverify-service/service/meta"
	"reportverify-service/service/verification"
	"reportverify-service/testutil"
)

// counterValue 依名称与标签读取计数器值
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetrics_ObserveRunAndMatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.ObserveRun(meta.ReportProducts, 120, nil)
	m.ObserveRun(meta.ReportProducts, 0, errors.New("empty"))
	m.ObserveMatch("exact")
	m.ObserveMatch("exact")
	m.ObserveMatch("default")

	assert.Equal(t, 1.0, counterValue(t, reg, "reportverify_runs_total", map[string]string{"report_type": "products", "outcome": OutcomeSuccess}))
	assert.Equal(t, 1.0, counterValue(t, reg, "reportverify_runs_total", map[string]string{"report_type": "products", "outcome": OutcomeFailed}))
	assert.Equal(t, 2.0, counterValue(t, reg, "reportverify_filename_matches_total", map[string]string{"tier": "exact"}))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)

	require.NoError(t, RegisterBuildInfo(reg))
	require.NoError(t, RegisterBuildInfo(reg), "重复注册建置版本指标时忽略")
}

func TestMetrics_EngineObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	f := testutil.NewTestDataFactory()
	idx := f.Index(t, f.DefaultEntries()...)
	table := testutil.NewTable([]string{"references_id", "category", "subcategory", "further_subcategory"}).
		Row("r1", "家電", "廚房家電", "電鍋").
		Build()

	engine, err := verification.NewEngine(idx, verification.WithObserver(m))
	require.NoError(t, err)
	report, err := engine.Verify(context.Background(), table, meta.ReportReference)
	require.NoError(t, err)

	var total float64
	for _, level := range []verification.Level{verification.LevelInfo, verification.LevelPass, verification.LevelNotice, verification.LevelWarning} {
		for _, res := range report.Results() {
			total += counterValue(t, reg, "reportverify_findings_total", map[string]string{
				"report_type": "reference",
				"step":        string(res.Step()),
				"level":       string(level),
			})
		}
	}
	assert.Equal(t, float64(len(report.Findings())), total)

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() == "reportverify_step_duration_seconds" {
			found = true
			assert.Len(t, mf.GetMetric(), len(report.Results()))
		}
	}
	assert.True(t, found)
}

func TestRegisterBuildInfo(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterBuildInfo(reg))
	// 重复注册不报错
	require.NoError(t, RegisterBuildInfo(reg))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "reportverify_build_info")
}
