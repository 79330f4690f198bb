/*
 * @module cmd/reportverify/cli
 * @description 报表验证命令行工具：check 验证本机档案，match 推断档名的报表种类，types 列出报表规范
 * @architecture 命令模式 - cobra 子命令
 * @documentReference SPEC_FULL.md
 * @stateFlow 参数解析 -> 加载配置 -> 子命令执行 -> 标准输出
 * @rules 只有结构性错误（档案无法解码、缺少输入、未知报表种类）以非零状态结束，资料品质问题不影响结束状态
 * @dependencies github.com/spf13/cobra
 * @refs service/verification, service/report
 */

package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"reportverify-service/service/config"
	"reportverify-service/service/meta"
)

// CLI 命令行工具
type CLI struct {
	version     string
	verbose     bool
	configPath  string
	initialized bool
	cfg         *config.Config
	registry    *meta.Registry
	rootCmd     *cobra.Command
}

// New 创建命令行工具
func New(version string) *CLI {
	c := &CLI{version: version, registry: meta.DefaultRegistry()}
	c.setupCommands()
	return c
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:           "reportverify",
		Short:         "报表栏位、空值、重复值、分类与名次验证工具",
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initApp(cmd.ErrOrStderr())
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "输出除错日志")
	c.rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "配置档路径（默认读取 CONFIG_FILE）")

	c.rootCmd.AddCommand(c.newCheckCommand())
	c.rootCmd.AddCommand(c.newMatchCommand())
	c.rootCmd.AddCommand(c.newTypesCommand())
}

// Run 执行命令行工具
func (c *CLI) Run() error {
	return c.rootCmd.Execute()
}

// initApp 加载配置并初始化日志
func (c *CLI) initApp(stderr io.Writer) error {
	if c.initialized {
		return nil
	}
	c.initialized = true

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
