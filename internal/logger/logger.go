// Package logger 将 charmbracelet/log 安装为 slog 的默认 handler。
package logger

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/config"
)

// ParseLevel 将配置中的级别名称转换为 charmlog 级别，未知名称按 info 处理。
func ParseLevel(level string) charmlog.Level {
	switch level {
	case "debug":
		return charmlog.DebugLevel
	case "warn":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// New 创建写入 w 的 slog.Logger。
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           ParseLevel(cfg.Level),
	})
	if cfg.Format == "json" {
		handler.SetFormatter(charmlog.JSONFormatter)
	} else {
		handler.SetFormatter(charmlog.TextFormatter)
	}

	return slog.New(handler)
}

// Setup 创建 logger 并设为 slog 默认 logger。
func Setup(w io.Writer, cfg config.LogConfig) *slog.Logger {
	l := New(w, cfg)
	slog.SetDefault(l)

	return l
}
