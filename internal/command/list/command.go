// Package list 提供列出内置模型的命令。
package list

import "github.com/urfave/cli/v3"

// NewCommand 创建模型列表命令。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:   "models",
		Usage:  "列出内置模型",
		Action: action,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ids",
				Usage: "同时列出全部可用的 model id",
			},
		},
	}
}
