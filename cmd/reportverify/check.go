package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reportverify-service/service/classification"
	"reportverify-service/service/event"
	"reportverify-service/service/matcher"
	"reportverify-service/service/meta"
	"reportverify-service/service/report"
	"reportverify-service/service/tabular"
	"reportverify-service/service/verification"
)

// eventSource 验证事件来源
const eventSource = "cli"

type checkOptions struct {
	classificationPath string
	reportPath         string
	reportType         string
	jsonPath           string
	exportDir          string
	interactive        bool
	threshold          float64
}

func (c *CLI) newCheckCommand() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "验证报表档案",
		Example: `  # 依档名推断报表种类
  reportverify check -c classification.xlsx -r products_amazon_0822.csv

  # 指定报表种类并输出验证报告与下载档案
  reportverify check -c classification.xlsx -r report.csv -t products --json report.json --exports out/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("interactive") {
				opts.interactive = c.cfg.Verification.Interactive
			}
			if !cmd.Flags().Changed("threshold") {
				opts.threshold = c.cfg.Verification.CoverageThreshold
			}
			return c.runCheck(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.classificationPath, "classification", "c", "", "分类表档案（csv 或 xlsx）")
	cmd.Flags().StringVarP(&opts.reportPath, "report", "r", "", "报表档案（csv 或 xlsx）")
	cmd.Flags().StringVarP(&opts.reportType, "type", "t", "", "报表种类（默认依档名推断）")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "验证报告 JSON 输出路径")
	cmd.Flags().StringVar(&opts.exportDir, "exports", "", "下载档案输出目录")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "逐条延迟显示检查发现")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "分类覆盖率门槛（默认读取配置）")
	_ = cmd.MarkFlagRequired("classification")
	_ = cmd.MarkFlagRequired("report")
	return cmd
}

// runCheck 执行验证并输出结果
func (c *CLI) runCheck(ctx context.Context, out io.Writer, opts checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	classTable, err := tabular.DecodeFile(opts.classificationPath)
	if err != nil {
		return fmt.Errorf("分类表: %w", err)
	}
	table, err := tabular.DecodeFile(opts.reportPath)
	if err != nil {
		return fmt.Errorf("报表: %w", err)
	}
	fileName := filepath.Base(opts.reportPath)

	reportType, err := c.resolveReportType(out, fileName, opts.reportType)
	if err != nil {
		return err
	}

	index, err := classification.NewIndex(classTable)
	if err != nil {
		return err
	}
	engine, err := verification.NewEngine(index,
		verification.WithRegistry(c.registry),
		verification.WithSink(verification.NewWriterSink(out)),
		verification.WithInteractive(opts.interactive),
		verification.WithStreamDelay(c.cfg.Verification.StreamDelay),
		verification.WithCoverageThreshold(opts.threshold),
		verification.WithFileName(fileName),
	)
	if err != nil {
		return err
	}

	run, runErr := engine.Verify(ctx, table, reportType)
	vr := report.NewAggregator().Aggregate(run, table)
	c.publish(ctx, vr, runErr)
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(out, "\n📋 %d 列资料，空值 %d 个，重复 %d 笔，警告 %d 项\n",
		vr.Rows, vr.Summary.TotalEmptyCells, vr.Summary.TotalDuplicates, vr.Summary.Warnings)

	if opts.jsonPath != "" {
		body, err := vr.JSON()
		if err != nil {
			return err
		}
		if err := writeFile(opts.jsonPath, body); err != nil {
			return err
		}
		fmt.Fprintf(out, "💾 验证报告已写入 %s\n", opts.jsonPath)
	}
	if opts.exportDir != "" {
		if err := writeExports(out, opts.exportDir, run, vr); err != nil {
			return err
		}
	}
	return nil
}

// resolveReportType 决定报表种类，未指定时依档名推断
func (c *CLI) resolveReportType(out io.Writer, fileName, explicit string) (meta.ReportType, error) {
	if explicit != "" {
		rt := meta.ReportType(explicit)
		if _, err := c.registry.Lookup(rt); err != nil {
			return "", err
		}
		return rt, nil
	}

	res := matcher.MatchDetail(fileName, c.registry.TypeNames())
	if !res.Matched {
		fmt.Fprintf(out, "⚠️ 档名 %s 无法匹配报表种类，使用默认种类 %s\n", fileName, res.Key)
	} else {
		fmt.Fprintf(out, "📄 报表种类: %s (%s)\n", res.Key, res.Tier)
	}
	return meta.ReportType(res.Key), nil
}

// publish 依配置发布验证事件，未配置发布目标时不做任何事
func (c *CLI) publish(ctx context.Context, vr *report.VerificationReport, runErr error) {
	pub, err := event.New(event.Options{
		KafkaBrokers: c.cfg.Kafka.Brokers,
		KafkaTopic:   c.cfg.Kafka.Topic,
		MQTTBroker:   c.cfg.MQTT.Broker,
		MQTTTopic:    c.cfg.MQTT.Topic,
		MQTTClientID: c.cfg.MQTT.ClientID,
		MQTTQoS:      c.cfg.MQTT.QoS,
	}, slog.Default())
	if err != nil {
		slog.Warn("部分事件发布目标初始化失败", "error", err)
	}
	defer func() { _ = pub.Close() }()

	if err := pub.Publish(ctx, vr.RunSummary(eventSource, runErr)); err != nil {
		slog.Warn("发布验证事件失败", "run_id", vr.RunID, "error", err)
	}
}

// writeExports 输出验证结果包含的全部下载档案
func writeExports(out io.Writer, dir string, run *verification.Report, vr *report.VerificationReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("建立输出目录失败: %w", err)
	}
	for _, artifact := range []report.Artifact{report.ArtifactDuplicates, report.ArtifactMissingCategories, report.ArtifactReport} {
		file, err := report.BuildArtifact(artifact, run, vr)
		if errors.Is(err, report.ErrArtifactUnavailable) {
			continue
		}
		if err != nil {
			return err
		}
		path := filepath.Join(dir, file.Name)
		if err := writeFile(path, file.Body); err != nil {
			return err
		}
		fmt.Fprintf(out, "💾 %s\n", path)
	}
	return nil
}

func writeFile(path string, body []byte) error {
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("写入档案 %s 失败: %w", path, err)
	}
	return nil
}
