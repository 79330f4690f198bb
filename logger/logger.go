package logger

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger 初始化全局日志记录器
// 创建 JSON 格式的日志处理器,输出到 stdout
func InitLogger(level slog.Level) *slog.Logger {
	return InitLoggerWithWriter(os.Stdout, level)
}

// InitLoggerWithWriter 以指定输出初始化全局日志记录器
func InitLoggerWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler).With("service", "reportverify-service")
	slog.SetDefault(logger)
	return logger
}
