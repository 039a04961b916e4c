// Package app 组装 llmconfig 命令行工具。
package app

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command/list"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command/options"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command/render"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command/settings"
	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/models"
)

// Version 由构建时 -ldflags "-X" 注入。
var Version = "dev"

// New 创建根命令。
//
// 模型 schema 在此加载一次用于生成 flags，加载失败 (例如 OPENLLM_* 取值无法解析) 时返回错误。
func New() (*cli.Command, error) {
	r, err := models.Load()
	if err != nil {
		return nil, err
	}

	return &cli.Command{
		Name:    "llmconfig",
		Usage:   "模型配置 schema 查看与构建工具",
		Version: Version,
		Flags:   command.GlobalFlags(),
		Before:  command.Before,
		Commands: []*cli.Command{
			list.NewCommand(),
			options.NewCommand(),
			render.NewCommand(r),
			settings.NewCommand(),
		},
	}, nil
}
