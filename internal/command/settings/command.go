// Package settings 提供查看工具自身配置的命令。
package settings

import "github.com/urfave/cli/v3"

// NewCommand 创建工具配置命令。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:   "settings",
		Usage:  "显示生效的工具配置，或输出带注释的配置示例",
		Action: action,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "example",
				Usage: "输出带注释的默认配置，可作为 .llmconfig.yaml 的起点",
			},
		},
	}
}
